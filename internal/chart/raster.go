package chart

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

// radiansPerStep bounds the chord length used to approximate arcs (2°).
const radiansPerStep = math.Pi / 90

// RasterSurface draws into an in-memory RGBA image with a white background.
type RasterSurface struct {
	img  *image.RGBA
	face font.Face
}

// NewRasterSurface creates a white canvas of the given size.
func NewRasterSurface(width, height int) *RasterSurface {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)
	return &RasterSurface{img: img, face: basicfont.Face7x13}
}

// Size returns the canvas dimensions.
func (s *RasterSurface) Size() (int, int) {
	b := s.img.Bounds()
	return b.Dx(), b.Dy()
}

// Image returns the underlying image.
func (s *RasterSurface) Image() image.Image {
	return s.img
}

// PNG encodes the canvas.
func (s *RasterSurface) PNG() ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, s.img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// FillRect fills an axis-aligned rectangle.
func (s *RasterSurface) FillRect(x, y, w, h float64, c color.Color) {
	if w <= 0 || h <= 0 {
		return
	}
	x0, y0 := s.clamp(x, y)
	x1, y1 := s.clamp(x+w, y+h)
	if x1 <= x0 || y1 <= y0 {
		return
	}
	s.fill(c, func(r *vector.Rasterizer) {
		r.MoveTo(x0, y0)
		r.LineTo(x1, y0)
		r.LineTo(x1, y1)
		r.LineTo(x0, y1)
		r.ClosePath()
	})
}

// StrokeRect draws a rectangle outline as four filled strips.
func (s *RasterSurface) StrokeRect(x, y, w, h, lineWidth float64, c color.Color) {
	s.FillRect(x, y, w, lineWidth, c)
	s.FillRect(x, y+h-lineWidth, w, lineWidth, c)
	s.FillRect(x, y, lineWidth, h, c)
	s.FillRect(x+w-lineWidth, y, lineWidth, h, c)
}

// FillWedge fills a circular sector by approximating the arc with chords.
func (s *RasterSurface) FillWedge(cx, cy, radius, start, end float64, c color.Color) {
	span := end - start
	if span <= 0 || radius <= 0 {
		return
	}
	if span > 2*math.Pi {
		span = 2 * math.Pi
	}
	steps := int(math.Ceil(span / radiansPerStep))
	if steps < 2 {
		steps = 2
	}
	s.fill(c, func(r *vector.Rasterizer) {
		r.MoveTo(float32(cx), float32(cy))
		for i := 0; i <= steps; i++ {
			a := start + span*float64(i)/float64(steps)
			px, py := s.clamp(cx+radius*math.Cos(a), cy+radius*math.Sin(a))
			r.LineTo(px, py)
		}
		r.ClosePath()
	})
}

// Text draws s with the built-in 7x13 bitmap face.
func (s *RasterSurface) Text(x, y float64, str string, align Align, c color.Color) {
	if str == "" {
		return
	}
	d := &font.Drawer{
		Dst:  s.img,
		Src:  image.NewUniform(c),
		Face: s.face,
	}
	dotX := fixed.Int26_6(math.Round(x * 64))
	switch align {
	case AlignCenter:
		dotX -= d.MeasureString(str) / 2
	case AlignRight:
		dotX -= d.MeasureString(str)
	}
	m := s.face.Metrics()
	baseline := y + float64((m.Ascent-m.Descent).Round())/2
	d.Dot = fixed.Point26_6{X: dotX, Y: fixed.Int26_6(math.Round(baseline * 64))}
	d.DrawString(str)
}

func (s *RasterSurface) fill(c color.Color, path func(r *vector.Rasterizer)) {
	b := s.img.Bounds()
	r := vector.NewRasterizer(b.Dx(), b.Dy())
	r.DrawOp = draw.Over
	path(r)
	r.Draw(s.img, b, image.NewUniform(c), image.Point{})
}

func (s *RasterSurface) clamp(x, y float64) (float32, float32) {
	b := s.img.Bounds()
	x = math.Max(0, math.Min(x, float64(b.Dx())))
	y = math.Max(0, math.Min(y, float64(b.Dy())))
	return float32(x), float32(y)
}
