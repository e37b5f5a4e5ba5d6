package raster

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
)

// Below this glyph height text is drawn as a grey bar.
const minTextSize = 4

// Ensure Surface implements the interface.
var _ driven.Surface = (*Surface)(nil)

// Surface is an RGBA page image.
type Surface struct {
	img *image.RGBA
}

// NewSurface allocates a surface of width x height pixels.
func NewSurface(width, height int) *Surface {
	return &Surface{img: image.NewRGBA(image.Rect(0, 0, width, height))}
}

// Image returns the underlying image.
func (s *Surface) Image() *image.RGBA {
	return s.img
}

// Size returns the surface size in pixels.
func (s *Surface) Size() domain.Size {
	b := s.img.Bounds()
	return domain.Size{Width: float64(b.Dx()), Height: float64(b.Dy())}
}

// Clear fills the whole surface, replacing its content.
func (s *Surface) Clear(c color.Color) {
	draw.Draw(s.img, s.img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
}

// FillRect composites c over the pixels covered by r.
func (s *Surface) FillRect(r domain.Rect, c color.Color) {
	px := pixelRect(r).Intersect(s.img.Bounds())
	if px.Empty() {
		return
	}
	draw.Draw(s.img, px, image.NewUniform(c), image.Point{}, draw.Over)
}

// FillQuad composites c over the quad's area with anti-aliased edges.
func (s *Surface) FillQuad(q domain.Quad, c color.Color) {
	b := s.img.Bounds()
	if b.Empty() || !q.Bounds().Overlaps(domain.Rect{Width: float64(b.Dx()), Height: float64(b.Dy())}) {
		return
	}
	r := vector.NewRasterizer(b.Dx(), b.Dy())
	r.DrawOp = draw.Over
	// Quad corners are top-left, top-right, bottom-left, bottom-right.
	r.MoveTo(float32(q.P1.X), float32(q.P1.Y))
	r.LineTo(float32(q.P2.X), float32(q.P2.Y))
	r.LineTo(float32(q.P4.X), float32(q.P4.Y))
	r.LineTo(float32(q.P3.X), float32(q.P3.Y))
	r.ClosePath()
	r.Draw(s.img, b, image.NewUniform(c), image.Point{})
}

// DrawText draws one line of text scaled to size pixels high.
func (s *Surface) DrawText(p domain.Point, size float64, text string, c color.Color) {
	if size <= 0 || text == "" {
		return
	}
	if size < minTextSize {
		width := float64(len([]rune(text))) * size * 0.5
		s.FillRect(domain.Rect{X: p.X, Y: p.Y + size*0.2, Width: width, Height: size * 0.6}, color.Gray{Y: 0x99})
		return
	}

	face := basicfont.Face7x13
	metrics := face.Metrics()
	w := font.MeasureString(face, text).Ceil()
	h := metrics.Height.Ceil()
	if w <= 0 || h <= 0 {
		return
	}
	glyphs := image.NewRGBA(image.Rect(0, 0, w, h))
	d := font.Drawer{
		Dst:  glyphs,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(0, metrics.Ascent.Ceil()),
	}
	d.DrawString(text)

	f := size / float64(h)
	dst := pixelRect(domain.Rect{X: p.X, Y: p.Y, Width: float64(w) * f, Height: size})
	draw.ApproxBiLinear.Scale(s.img, dst, glyphs, glyphs.Bounds(), draw.Over, nil)
}

// pixelRect returns the pixels touched by r.
func pixelRect(r domain.Rect) image.Rectangle {
	return image.Rect(
		int(math.Floor(r.X)),
		int(math.Floor(r.Y)),
		int(math.Ceil(r.Right())),
		int(math.Ceil(r.Bottom())),
	)
}
