package chart

import (
	"image/color"
	"strings"
)

// op is one recorded drawing call.
type op struct {
	kind          string // "rect", "stroke", "wedge", "text"
	x, y, w, h    float64
	r, start, end float64
	text          string
	align         Align
	c             color.Color
}

// recorder is a Surface that records calls instead of drawing.
type recorder struct {
	width, height int
	ops           []op
}

func newRecorder(w, h int) *recorder {
	return &recorder{width: w, height: h}
}

func (r *recorder) Size() (int, int) { return r.width, r.height }

func (r *recorder) FillRect(x, y, w, h float64, c color.Color) {
	r.ops = append(r.ops, op{kind: "rect", x: x, y: y, w: w, h: h, c: c})
}

func (r *recorder) StrokeRect(x, y, w, h, lineWidth float64, c color.Color) {
	r.ops = append(r.ops, op{kind: "stroke", x: x, y: y, w: w, h: h, r: lineWidth, c: c})
}

func (r *recorder) FillWedge(cx, cy, radius, start, end float64, c color.Color) {
	r.ops = append(r.ops, op{kind: "wedge", x: cx, y: cy, r: radius, start: start, end: end, c: c})
}

func (r *recorder) Text(x, y float64, s string, align Align, c color.Color) {
	r.ops = append(r.ops, op{kind: "text", x: x, y: y, text: s, align: align, c: c})
}

func (r *recorder) byKind(kind string) []op {
	var out []op
	for _, o := range r.ops {
		if o.kind == kind {
			out = append(out, o)
		}
	}
	return out
}

func (r *recorder) texts() []string {
	var out []string
	for _, o := range r.byKind("text") {
		out = append(out, o.text)
	}
	return out
}

func (r *recorder) hasText(substr string) bool {
	for _, s := range r.texts() {
		if strings.Contains(s, substr) {
			return true
		}
	}
	return false
}

func (r *recorder) rectsWithColor(c color.RGBA) []op {
	var out []op
	for _, o := range r.byKind("rect") {
		if o.c == c {
			out = append(out, o)
		}
	}
	return out
}
