package report

import (
	"fmt"
	"math"
	"time"

	"github.com/xuri/excelize/v2"
)

// Workbook defaults used when a column width or row height is unset.
const (
	defaultColWidth  = 9.140625
	defaultRowHeight = 15.0
	maxDigitWidthPx  = 7.0
)

// WorkbookProps are the document properties written into the file.
type WorkbookProps struct {
	Title   string
	Creator string
	Created time.Time
}

// WriteXLSX serializes g into an xlsx workbook and returns its bytes.
func WriteXLSX(g *Grid, props WorkbookProps) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := g.Sheet()
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	stamp := props.Created.UTC().Format(time.RFC3339)
	if err := f.SetDocProps(&excelize.DocProperties{
		Title:          props.Title,
		Creator:        props.Creator,
		LastModifiedBy: props.Creator,
		Created:        stamp,
		Modified:       stamp,
	}); err != nil {
		return nil, fmt.Errorf("set doc props: %w", err)
	}

	showGrid := g.ShowGridLines()
	if err := f.SetSheetView(sheet, 0, &excelize.ViewOptions{ShowGridLines: &showGrid}); err != nil {
		return nil, fmt.Errorf("set sheet view: %w", err)
	}

	_, cols := g.Bounds()
	for col := 1; col <= cols; col++ {
		if w := g.ColWidth(col); w > 0 {
			name := ColName(col)
			if err := f.SetColWidth(sheet, name, name, w); err != nil {
				return nil, fmt.Errorf("set width of %s: %w", name, err)
			}
		}
	}
	rows, _ := g.Bounds()
	for row := 1; row <= rows; row++ {
		if h := g.RowHeight(row); h > 0 {
			if err := f.SetRowHeight(sheet, row, h); err != nil {
				return nil, fmt.Errorf("set height of row %d: %w", row, err)
			}
		}
	}

	styles := make(map[Style]int)
	for _, c := range g.Cells() {
		ref := c.Ref()
		if c.Value != nil {
			if err := f.SetCellValue(sheet, ref, c.Value); err != nil {
				return nil, fmt.Errorf("set %s: %w", ref, err)
			}
		}
		if c.Style.IsZero() {
			continue
		}
		id, ok := styles[c.Style]
		if !ok {
			var err error
			id, err = f.NewStyle(excelStyle(c.Style))
			if err != nil {
				return nil, fmt.Errorf("style %s: %w", ref, err)
			}
			styles[c.Style] = id
		}
		if err := f.SetCellStyle(sheet, ref, ref, id); err != nil {
			return nil, fmt.Errorf("apply style %s: %w", ref, err)
		}
	}

	for _, m := range g.Merges() {
		if err := f.MergeCell(sheet, CellRef(m.Top, m.Left), CellRef(m.Bottom, m.Right)); err != nil {
			return nil, fmt.Errorf("merge %s: %w", m, err)
		}
	}

	for _, img := range g.Images() {
		scale := fitScale(g, img)
		pic := &excelize.Picture{
			Extension: ".png",
			File:      img.PNG,
			Format: &excelize.GraphicOptions{
				AltText:         img.Name,
				ScaleX:          scale,
				ScaleY:          scale,
				LockAspectRatio: true,
				Positioning:     "oneCell",
			},
		}
		ref := CellRef(img.Anchor.Top, img.Anchor.Left)
		if err := f.AddPictureFromBytes(sheet, ref, pic); err != nil {
			return nil, fmt.Errorf("add image %q at %s: %w", img.Name, ref, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return normalizePackage(buf.Bytes())
}

func excelStyle(s Style) *excelize.Style {
	st := &excelize.Style{
		Font: &excelize.Font{
			Bold:  s.Bold,
			Size:  s.FontSize,
			Color: s.FontColor,
		},
		Alignment: &excelize.Alignment{
			Horizontal: string(s.Align),
			WrapText:   s.Wrap,
		},
	}
	if s.Middle {
		st.Alignment.Vertical = "center"
	}
	if s.Fill != "" {
		st.Fill = excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{s.Fill}}
	}
	if s.Border {
		for _, side := range []string{"left", "top", "right", "bottom"} {
			st.Border = append(st.Border, excelize.Border{Type: side, Color: BrandColors.Border, Style: 1})
		}
	}
	if s.NumFmt != "" {
		numFmt := s.NumFmt
		st.CustomNumFmt = &numFmt
	}
	return st
}

// colPixels approximates the rendered width of a column.
func colPixels(width float64) float64 {
	if width <= 0 {
		width = defaultColWidth
	}
	return math.Ceil(width*maxDigitWidthPx + 0.5)
}

// rowPixels converts a row height in points to pixels.
func rowPixels(height float64) float64 {
	if height <= 0 {
		height = defaultRowHeight
	}
	return height * 4 / 3
}

// anchorPixels returns the pixel size of a range.
func anchorPixels(g *Grid, r Range) (w, h float64) {
	for col := r.Left; col <= r.Right; col++ {
		w += colPixels(g.ColWidth(col))
	}
	for row := r.Top; row <= r.Bottom; row++ {
		h += rowPixels(g.RowHeight(row))
	}
	return w, h
}

// fitScale returns the uniform scale that fits img inside its anchor.
func fitScale(g *Grid, img Image) float64 {
	if img.Width <= 0 || img.Height <= 0 {
		return 1
	}
	w, h := anchorPixels(g, img.Anchor)
	return math.Min(w/float64(img.Width), h/float64(img.Height))
}
