package driven

import (
	"image/color"

	"github.com/custodia-labs/folio/internal/core/domain"
)

// Surface is a drawable area in pixel space with a top-left origin.
type Surface interface {
	// Size returns the drawable size in pixels.
	Size() domain.Size

	// Clear fills the whole surface.
	Clear(c color.Color)

	// FillRect fills an axis-aligned rectangle.
	FillRect(r domain.Rect, c color.Color)

	// FillQuad fills a quadrilateral given in quad winding order.
	FillQuad(q domain.Quad, c color.Color)

	// DrawText draws a single line of text with its top-left corner at p.
	// size is the nominal glyph height in pixels.
	DrawText(p domain.Point, size float64, text string, c color.Color)
}

// RenderTarget hands out one surface per page.
type RenderTarget interface {
	// Surface returns a surface of the given size for a page.
	// A previous surface for the page is replaced.
	Surface(page int, size domain.Size) (Surface, error)
}
