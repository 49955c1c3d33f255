package chart

import (
	"image/color"
	"math"
	"strconv"
)

// Shift pie geometry.
const (
	PieWidth  = 480
	PieHeight = 360

	pieTitle       = "Shift Distribution"
	pieRadius      = 115.0
	pieCenterY     = 180.0
	pieLabelRadius = 0.7
)

var (
	colorDayShift   = hexColor("#F59E0B") // amber
	colorNightShift = hexColor("#3B82F6") // blue
)

// Slice is one sector of the shift pie.
type Slice struct {
	Label string
	Value float64
	Start float64 // radians
	End   float64 // radians
	Color color.RGBA
}

// Mid returns the bisecting angle of the slice.
func (s Slice) Mid() float64 {
	return (s.Start + s.End) / 2
}

// ShiftSlices splits the circle between day and night shifts. The day slice
// starts at angle 0 and the night slice continues where it ends. Slices with
// a zero value are omitted; nil is returned when both are zero.
func ShiftSlices(day, night float64) []Slice {
	day = math.Max(day, 0)
	night = math.Max(night, 0)
	total := day + night
	if total == 0 {
		return nil
	}

	dayEnd := 2 * math.Pi * day / total
	var slices []Slice
	if day > 0 {
		slices = append(slices, Slice{Label: "Day Shift", Value: day, Start: 0, End: dayEnd, Color: colorDayShift})
	}
	if night > 0 {
		slices = append(slices, Slice{Label: "Night Shift", Value: night, Start: dayEnd, End: 2 * math.Pi, Color: colorNightShift})
	}
	return slices
}

// DrawShiftPie draws the day/night shift distribution onto s.
func DrawShiftPie(s Surface, day, night float64) {
	w, h := s.Size()
	fw, fh := float64(w), float64(h)
	cx, cy := fw/2, pieCenterY*fh/PieHeight
	radius := pieRadius * math.Min(fw/PieWidth, fh/PieHeight)

	s.Text(cx, 22, pieTitle, AlignCenter, colorText)

	slices := ShiftSlices(day, night)
	if len(slices) == 0 {
		s.FillWedge(cx, cy, radius, 0, 2*math.Pi, colorPlaceholder)
		s.Text(cx, cy, "No Data Available", AlignCenter, colorMuted)
	} else {
		for _, sl := range slices {
			s.FillWedge(cx, cy, radius, sl.Start, sl.End, sl.Color)
		}
		for _, sl := range slices {
			mid := sl.Mid()
			lx := cx + pieLabelRadius*radius*math.Cos(mid)
			ly := cy + pieLabelRadius*radius*math.Sin(mid)
			s.Text(lx, ly, formatCount(sl.Value), AlignCenter, colorWhite)
		}
	}

	// Legend
	legendY := fh - 30
	items := []struct {
		label string
		c     color.RGBA
	}{
		{"Day Shift", colorDayShift},
		{"Night Shift", colorNightShift},
	}
	x := cx - 110
	for _, it := range items {
		s.FillRect(x, legendY-6, 12, 12, it.c)
		s.Text(x+18, legendY, it.label, AlignLeft, colorText)
		x += 130
	}

	s.StrokeRect(0, 0, fw, fh, 1, colorBorder)
}

// RenderShiftPie rasterizes the shift pie to PNG.
func RenderShiftPie(day, night float64) ([]byte, error) {
	s := NewRasterSurface(PieWidth, PieHeight)
	DrawShiftPie(s, day, night)
	return s.PNG()
}

// formatCount prints a headcount without a trailing ".0".
func formatCount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
