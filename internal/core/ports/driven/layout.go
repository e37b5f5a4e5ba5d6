package driven

import "github.com/custodia-labs/folio/internal/core/domain"

// ViewportGeometryProvider answers screen geometry queries.
// Screen space is relative to the top-left of the visible area.
type ViewportGeometryProvider interface {
	// ContainerBounds returns the page's on-screen rectangle.
	// The rectangle may lie partly or wholly outside the visible area.
	ContainerBounds(page int) (domain.Rect, bool)

	// ScrollOffset returns the content offset at the top-left of the visible area.
	ScrollOffset() domain.Point

	// ViewportSize returns the visible area size.
	ViewportSize() domain.Size
}

// PageLayout positions pages on a scrollable surface.
type PageLayout interface {
	ViewportGeometryProvider

	// Layout places pages given their unit sizes at the display scale.
	// The scroll offset is kept.
	Layout(sizes []domain.Size, scale float64)

	// PageTop returns the content-space y of the page's top edge.
	PageTop(page int) float64

	// ContentSize returns the size of the laid out content.
	ContentSize() domain.Size

	// ScrollTo moves the visible area, clamped to the content.
	ScrollTo(p domain.Point)

	// Resize changes the visible area size.
	Resize(size domain.Size)
}
