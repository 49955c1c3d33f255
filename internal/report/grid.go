package report

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
)

// =============================================================================
// Grid Description
// =============================================================================

// Errors recorded by GridBuilder.
var (
	ErrOutOfBounds  = errors.New("coordinate outside grid bounds")
	ErrMergeOverlap = errors.New("merge overlaps an existing merge")
	ErrInvalidRange = errors.New("invalid cell range")
)

// HAlign is the horizontal alignment of a cell.
type HAlign string

const (
	HAlignDefault HAlign = ""
	HAlignLeft    HAlign = "left"
	HAlignCenter  HAlign = "center"
	HAlignRight   HAlign = "right"
)

// Style describes how a cell is rendered. The zero value is an unstyled cell.
type Style struct {
	Bold      bool
	FontSize  float64 // points; 0 uses the workbook default
	FontColor string  // "#RRGGBB"
	Fill      string  // "#RRGGBB" background; empty for none
	Align     HAlign
	Middle    bool // vertically centred
	Wrap      bool
	Border    bool   // thin border on all sides
	NumFmt    string // custom number format, e.g. "0.0%"
}

// IsZero reports whether the style carries no formatting.
func (s Style) IsZero() bool {
	return s == Style{}
}

// Cell is a single addressed value. Rows and columns are 1-based.
type Cell struct {
	Row   int
	Col   int
	Value any // string, float64, int or nil
	Style Style
}

// Ref returns the A1-style reference of the cell.
func (c Cell) Ref() string {
	return CellRef(c.Row, c.Col)
}

// Range is an inclusive rectangular block of cells.
type Range struct {
	Top, Left, Bottom, Right int
}

// R builds a range from its corners.
func R(top, left, bottom, right int) Range {
	return Range{Top: top, Left: left, Bottom: bottom, Right: right}
}

// Single returns the one-cell range at (row, col).
func Single(row, col int) Range {
	return Range{Top: row, Left: col, Bottom: row, Right: col}
}

// Valid reports whether the corners are ordered and positive.
func (r Range) Valid() bool {
	return r.Top >= 1 && r.Left >= 1 && r.Bottom >= r.Top && r.Right >= r.Left
}

// Contains reports whether (row, col) lies within r.
func (r Range) Contains(row, col int) bool {
	return row >= r.Top && row <= r.Bottom && col >= r.Left && col <= r.Right
}

// Overlaps reports whether r and o share at least one cell.
func (r Range) Overlaps(o Range) bool {
	return r.Left <= o.Right && o.Left <= r.Right && r.Top <= o.Bottom && o.Top <= r.Bottom
}

// IsSingle reports whether r covers exactly one cell.
func (r Range) IsSingle() bool {
	return r.Top == r.Bottom && r.Left == r.Right
}

// String returns the range as "A1:B3".
func (r Range) String() string {
	return CellRef(r.Top, r.Left) + ":" + CellRef(r.Bottom, r.Right)
}

// Image is a PNG embedded over a cell range.
type Image struct {
	Name   string
	Anchor Range
	PNG    []byte
	Width  int // source pixel width
	Height int // source pixel height
}

// Grid is a complete, immutable description of one worksheet. It is produced
// by GridBuilder and consumed by a serializer.
type Grid struct {
	sheet      string
	rows, cols int
	colWidths  map[int]float64
	rowHeights map[int]float64
	cells      []Cell
	merges     []Range
	images     []Image
	showGrid   bool
}

// Sheet returns the worksheet name.
func (g *Grid) Sheet() string { return g.sheet }

// Bounds returns the declared row and column count.
func (g *Grid) Bounds() (rows, cols int) { return g.rows, g.cols }

// ShowGridLines reports whether the sheet view shows gridlines.
func (g *Grid) ShowGridLines() bool { return g.showGrid }

// ColWidth returns the width of col in character units, or 0 if unset.
func (g *Grid) ColWidth(col int) float64 { return g.colWidths[col] }

// RowHeight returns the height of row in points, or 0 if unset.
func (g *Grid) RowHeight(row int) float64 { return g.rowHeights[row] }

// Cells returns all cells in row-major order.
func (g *Grid) Cells() []Cell {
	return append([]Cell(nil), g.cells...)
}

// Cell returns the cell at (row, col).
func (g *Grid) Cell(row, col int) (Cell, bool) {
	i := sort.Search(len(g.cells), func(i int) bool {
		c := g.cells[i]
		return c.Row > row || (c.Row == row && c.Col >= col)
	})
	if i < len(g.cells) && g.cells[i].Row == row && g.cells[i].Col == col {
		return g.cells[i], true
	}
	return Cell{}, false
}

// Value returns the value at (row, col), or nil.
func (g *Grid) Value(row, col int) any {
	c, _ := g.Cell(row, col)
	return c.Value
}

// Merges returns the merged ranges in insertion order.
func (g *Grid) Merges() []Range {
	return append([]Range(nil), g.merges...)
}

// Images returns the embedded images in insertion order.
func (g *Grid) Images() []Image {
	return append([]Image(nil), g.images...)
}

// =============================================================================
// Grid Builder
// =============================================================================

// GridBuilder accumulates cells, merges and images. Methods never fail
// individually; the first violation is kept and returned by Build.
type GridBuilder struct {
	grid  Grid
	cells map[[2]int]Cell
	err   error
}

// NewGridBuilder starts a grid with the given bounds.
func NewGridBuilder(sheet string, rows, cols int) *GridBuilder {
	b := &GridBuilder{
		grid: Grid{
			sheet:      sheet,
			rows:       rows,
			cols:       cols,
			colWidths:  make(map[int]float64),
			rowHeights: make(map[int]float64),
			showGrid:   true,
		},
		cells: make(map[[2]int]Cell),
	}
	if rows < 1 || cols < 1 {
		b.fail(fmt.Errorf("grid %dx%d: %w", rows, cols, ErrInvalidRange))
	}
	return b
}

// Err returns the first recorded error.
func (b *GridBuilder) Err() error {
	return b.err
}

func (b *GridBuilder) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

func (b *GridBuilder) inBounds(row, col int) bool {
	return row >= 1 && col >= 1 && row <= b.grid.rows && col <= b.grid.cols
}

func (b *GridBuilder) checkRange(r Range) bool {
	if !r.Valid() {
		b.fail(fmt.Errorf("range %v: %w", r, ErrInvalidRange))
		return false
	}
	if !b.inBounds(r.Top, r.Left) || !b.inBounds(r.Bottom, r.Right) {
		b.fail(fmt.Errorf("range %s: %w", r, ErrOutOfBounds))
		return false
	}
	return true
}

// HideGridLines turns off gridlines in the sheet view.
func (b *GridBuilder) HideGridLines() {
	b.grid.showGrid = false
}

// ColWidth sets the width of col in character units.
func (b *GridBuilder) ColWidth(col int, width float64) {
	if !b.inBounds(1, col) {
		b.fail(fmt.Errorf("column %d: %w", col, ErrOutOfBounds))
		return
	}
	b.grid.colWidths[col] = width
}

// RowHeight sets the height of row in points.
func (b *GridBuilder) RowHeight(row int, height float64) {
	if !b.inBounds(row, 1) {
		b.fail(fmt.Errorf("row %d: %w", row, ErrOutOfBounds))
		return
	}
	b.grid.rowHeights[row] = height
}

// Set writes a value and style at (row, col).
func (b *GridBuilder) Set(row, col int, value any, style Style) {
	if !b.inBounds(row, col) {
		b.fail(fmt.Errorf("cell %s: %w", CellRef(row, col), ErrOutOfBounds))
		return
	}
	b.cells[[2]int{row, col}] = Cell{Row: row, Col: col, Value: value, Style: style}
}

// Style applies style to every cell in r, keeping existing values.
func (b *GridBuilder) Style(r Range, style Style) {
	if !b.checkRange(r) {
		return
	}
	for row := r.Top; row <= r.Bottom; row++ {
		for col := r.Left; col <= r.Right; col++ {
			k := [2]int{row, col}
			c := b.cells[k]
			c.Row, c.Col, c.Style = row, col, style
			b.cells[k] = c
		}
	}
}

// Merge merges r, writes value into its top-left cell and styles the whole
// range so borders and fills cover every merged cell.
func (b *GridBuilder) Merge(r Range, value any, style Style) {
	if !b.checkRange(r) {
		return
	}
	if r.IsSingle() {
		b.Set(r.Top, r.Left, value, style)
		return
	}
	for _, m := range b.grid.merges {
		if m.Overlaps(r) {
			b.fail(fmt.Errorf("merge %s with %s: %w", r, m, ErrMergeOverlap))
			return
		}
	}
	b.grid.merges = append(b.grid.merges, r)
	b.Style(r, style)
	b.Set(r.Top, r.Left, value, style)
}

// Image anchors img over r.
func (b *GridBuilder) Image(r Range, img Image) {
	if !b.checkRange(r) {
		return
	}
	img.Anchor = r
	b.grid.images = append(b.grid.images, img)
}

// Build returns the finished grid, or the first error recorded.
func (b *GridBuilder) Build() (*Grid, error) {
	if b.err != nil {
		return nil, b.err
	}
	g := b.grid
	g.cells = make([]Cell, 0, len(b.cells))
	for _, c := range b.cells {
		g.cells = append(g.cells, c)
	}
	sort.Slice(g.cells, func(i, j int) bool {
		if g.cells[i].Row != g.cells[j].Row {
			return g.cells[i].Row < g.cells[j].Row
		}
		return g.cells[i].Col < g.cells[j].Col
	})
	g.colWidths = copyFloatMap(b.grid.colWidths)
	g.rowHeights = copyFloatMap(b.grid.rowHeights)
	g.merges = append([]Range(nil), b.grid.merges...)
	g.images = append([]Image(nil), b.grid.images...)
	return &g, nil
}

func copyFloatMap(m map[int]float64) map[int]float64 {
	out := make(map[int]float64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// ColName converts a 1-based column number to letters (1 → A, 27 → AA).
func ColName(col int) string {
	name := ""
	for col > 0 {
		col--
		name = string(rune('A'+col%26)) + name
		col /= 26
	}
	return name
}

// CellRef returns the A1-style reference for (row, col).
func CellRef(row, col int) string {
	return ColName(col) + strconv.Itoa(row)
}
