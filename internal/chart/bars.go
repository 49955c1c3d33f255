package chart

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/DukeRupert/sdview/internal/domain"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Status bar geometry.
const (
	BarsWidth  = 600
	BarsHeight = 360

	barsTitle        = "Device Status by Type"
	barsMarginLeft   = 140.0
	barsMarginRight  = 30.0
	barsMarginTop    = 45.0
	barsLegendHeight = 60.0
	barsMaxHeight    = 36.0
	labelMinShare    = 0.05
	typeLabelMaxLen  = 18
)

// StatusColors maps each device status to its bar colour.
var StatusColors = map[domain.DeviceStatus]color.RGBA{
	domain.DeviceStatusCompleted:  hexColor("#10B981"),
	domain.DeviceStatusInProgress: hexColor("#3B82F6"),
	domain.DeviceStatusPending:    hexColor("#F59E0B"),
	domain.DeviceStatusConstraint: hexColor("#EF4444"),
}

// TypeCounts holds per-status device counts for one device type.
type TypeCounts struct {
	Type       string
	Completed  int
	InProgress int
	Pending    int
	Constraint int
	Total      int // all devices of the type, whatever their status
}

// Count returns the count for status.
func (t TypeCounts) Count(status domain.DeviceStatus) int {
	switch status {
	case domain.DeviceStatusCompleted:
		return t.Completed
	case domain.DeviceStatusInProgress:
		return t.InProgress
	case domain.DeviceStatusPending:
		return t.Pending
	case domain.DeviceStatusConstraint:
		return t.Constraint
	}
	return 0
}

// GroupByType counts devices per type and status. Types appear in order of
// first occurrence; devices without a type are grouped under "Unspecified".
func GroupByType(devices []domain.Device) []TypeCounts {
	index := make(map[string]int)
	var groups []TypeCounts
	for _, d := range devices {
		t := strings.TrimSpace(d.Type)
		if t == "" {
			t = "Unspecified"
		}
		i, ok := index[t]
		if !ok {
			i = len(groups)
			index[t] = i
			groups = append(groups, TypeCounts{Type: t})
		}
		g := &groups[i]
		g.Total++
		switch d.Status {
		case domain.DeviceStatusCompleted:
			g.Completed++
		case domain.DeviceStatusInProgress:
			g.InProgress++
		case domain.DeviceStatusPending:
			g.Pending++
		case domain.DeviceStatusConstraint:
			g.Constraint++
		}
	}
	return groups
}

// Segment is one coloured part of a stacked bar.
type Segment struct {
	Status domain.DeviceStatus
	Share  float64 // fraction of the type total
	X      float64 // offset from the bar origin
	Width  float64
}

// Labeled reports whether the segment is wide enough to carry a percentage.
func (s Segment) Labeled() bool {
	return s.Share > labelMinShare
}

// Segments lays out the stacked bar for g over chartWidth pixels, in the
// fixed status order. Zero-count statuses produce no segment.
func Segments(g TypeCounts, chartWidth float64) []Segment {
	if g.Total <= 0 {
		return nil
	}
	var segs []Segment
	x := 0.0
	for _, status := range domain.DeviceStatuses {
		n := g.Count(status)
		if n == 0 {
			continue
		}
		share := float64(n) / float64(g.Total)
		w := share * chartWidth
		segs = append(segs, Segment{Status: status, Share: share, X: x, Width: w})
		x += w
	}
	return segs
}

// DrawStatusBars draws one 100% stacked bar per device type onto s.
func DrawStatusBars(s Surface, groups []TypeCounts) {
	w, h := s.Size()
	fw, fh := float64(w), float64(h)

	s.Text(fw/2, 22, barsTitle, AlignCenter, colorText)

	if len(groups) == 0 {
		s.FillRect(barsMarginLeft, barsMarginTop, fw-barsMarginLeft-barsMarginRight, fh-barsMarginTop-barsLegendHeight, colorPlaceholder)
		s.Text(fw/2, (barsMarginTop+fh-barsLegendHeight)/2, "No Data Available", AlignCenter, colorMuted)
		s.StrokeRect(0, 0, fw, fh, 1, colorBorder)
		return
	}

	chartWidth := fw - barsMarginLeft - barsMarginRight
	plotHeight := fh - barsMarginTop - barsLegendHeight
	slot := plotHeight / float64(len(groups))
	barHeight := slot * 0.7
	if barHeight > barsMaxHeight {
		barHeight = barsMaxHeight
	}

	for i, g := range groups {
		y := barsMarginTop + float64(i)*slot + (slot-barHeight)/2
		for _, seg := range Segments(g, chartWidth) {
			x := barsMarginLeft + seg.X
			s.FillRect(x, y, seg.Width, barHeight, StatusColors[seg.Status])
			if seg.Labeled() {
				s.Text(x+seg.Width/2, y+barHeight/2, fmt.Sprintf("%.0f%%", seg.Share*100), AlignCenter, colorWhite)
			}
		}
		s.Text(barsMarginLeft-8, y+barHeight/2, truncate(g.Type, typeLabelMaxLen), AlignRight, colorText)
	}

	// Legend
	legendY := fh - barsLegendHeight/2
	step := chartWidth / float64(len(domain.DeviceStatuses))
	for i, status := range domain.DeviceStatuses {
		x := barsMarginLeft + float64(i)*step
		s.FillRect(x, legendY-6, 12, 12, StatusColors[status])
		s.Text(x+18, legendY, StatusLabel(status), AlignLeft, colorText)
	}

	s.StrokeRect(0, 0, fw, fh, 1, colorBorder)
}

// RenderStatusBars rasterizes the status chart to PNG.
func RenderStatusBars(groups []TypeCounts) ([]byte, error) {
	s := NewRasterSurface(BarsWidth, BarsHeight)
	DrawStatusBars(s, groups)
	return s.PNG()
}

// StatusLabel returns a human-readable label such as "In Progress".
func StatusLabel(status domain.DeviceStatus) string {
	words := strings.ToLower(strings.ReplaceAll(string(status), "_", " "))
	return cases.Title(language.English).String(words)
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
