package services

import (
	"image/color"
	"math"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
)

// Highlight colours for find results.
var (
	MatchColor    = color.NRGBA{R: 0xff, G: 0xd5, B: 0x4f, A: 0x66}
	SelectedColor = color.NRGBA{R: 0x4c, G: 0xaf, B: 0x50, A: 0x88}
)

// PaintHighlights draws find highlight rectangles onto a page surface
// rendered at scale.
func PaintHighlights(s driven.Surface, rects []domain.HighlightRect, scale float64) {
	for _, hr := range rects {
		c := MatchColor
		if hr.Kind == domain.HighlightSelected {
			c = SelectedColor
		}
		s.FillRect(scaleRect(hr.Rect, scale), c)
	}
}

// PaintAnnotations draws annotations onto a page surface rendered at scale.
// Invalid colours fall back to defaultColor.
func PaintAnnotations(s driven.Surface, list []domain.Annotation, scale float64, defaultColor string) {
	for i := range list {
		a := &list[i]
		c := annotationColor(a, defaultColor)
		switch a.Type {
		case domain.AnnotationHighlight:
			for _, q := range a.Quads {
				s.FillQuad(scaleQuad(q, scale), c)
			}
		case domain.AnnotationUnderline, domain.AnnotationSquiggly:
			for _, q := range a.Quads {
				b := q.Bounds()
				h := math.Max(b.Height/10, 0.5)
				s.FillRect(scaleRect(domain.Rect{X: b.X, Y: b.Bottom() - h, Width: b.Width, Height: h}, scale), c)
			}
		case domain.AnnotationStrikeOut:
			for _, q := range a.Quads {
				b := q.Bounds()
				h := math.Max(b.Height/10, 0.5)
				s.FillRect(scaleRect(domain.Rect{X: b.X, Y: b.Y + (b.Height-h)/2, Width: b.Width, Height: h}, scale), c)
			}
		case domain.AnnotationInk:
			thickness := a.Thickness
			if thickness <= 0 {
				thickness = 1
			}
			for _, st := range a.Strokes {
				for _, q := range PathQuads(st.Points, thickness) {
					s.FillQuad(scaleQuad(q, scale), c)
				}
			}
		case domain.AnnotationSquare:
			r := a.Rect
			w := 1 / scale
			for _, edge := range []domain.Rect{
				{X: r.X, Y: r.Y, Width: r.Width, Height: w},
				{X: r.X, Y: r.Bottom() - w, Width: r.Width, Height: w},
				{X: r.X, Y: r.Y, Width: w, Height: r.Height},
				{X: r.Right() - w, Y: r.Y, Width: w, Height: r.Height},
			} {
				s.FillRect(scaleRect(edge, scale), c)
			}
		}
	}
}

func annotationColor(a *domain.Annotation, fallback string) color.NRGBA {
	c, err := domain.ParseColor(a.Color)
	if err != nil {
		c, err = domain.ParseColor(fallback)
		if err != nil {
			c = color.NRGBA{A: 0xff}
		}
	}
	c.A = uint8(math.Round(a.EffectiveOpacity() * 255))
	return c
}

func scaleRect(r domain.Rect, scale float64) domain.Rect {
	return domain.Rect{X: r.X * scale, Y: r.Y * scale, Width: r.Width * scale, Height: r.Height * scale}
}

func scaleQuad(q domain.Quad, scale float64) domain.Quad {
	return domain.Quad{P1: q.P1.Mul(scale), P2: q.P2.Mul(scale), P3: q.P3.Mul(scale), P4: q.P4.Mul(scale)}
}
