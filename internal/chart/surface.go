// Package chart draws the fixed-size charts embedded in site reports.
//
// Chart logic (angles, widths, label placement) is written against the
// Surface interface so it can be tested with a recording implementation.
// RasterSurface is the production implementation that produces PNG bytes.
package chart

import (
	"image/color"
	"strconv"
)

// Align controls horizontal text placement relative to the anchor point.
type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

// Surface is the drawing capability required by the chart renderers.
// Coordinates are in pixels with the origin at the top-left corner and y
// growing downwards. Angles are in radians, measured clockwise from the
// positive x axis (3 o'clock).
type Surface interface {
	// Size returns the drawable width and height.
	Size() (width, height int)

	// FillRect fills an axis-aligned rectangle.
	FillRect(x, y, w, h float64, c color.Color)

	// StrokeRect draws the outline of a rectangle with the given line width.
	StrokeRect(x, y, w, h, lineWidth float64, c color.Color)

	// FillWedge fills the circular sector centred at (cx, cy) between the
	// start and end angles. A span of 2π fills the whole disc.
	FillWedge(cx, cy, r, start, end float64, c color.Color)

	// Text draws s vertically centred on y.
	Text(x, y float64, s string, align Align, c color.Color)
}

// Palette used by both charts.
var (
	colorText        = hexColor("#1F2937")
	colorMuted       = hexColor("#6B7280")
	colorBorder      = hexColor("#9CA3AF")
	colorPlaceholder = hexColor("#D1D5DB")
	colorWhite       = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

// hexColor converts "#RRGGBB" to an opaque colour. Malformed input yields black.
func hexColor(hex string) color.RGBA {
	if len(hex) > 0 && hex[0] == '#' {
		hex = hex[1:]
	}
	if len(hex) != 6 {
		return color.RGBA{A: 255}
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{A: 255}
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}
}
