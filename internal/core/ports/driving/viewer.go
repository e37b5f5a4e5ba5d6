package driving

import (
	"context"

	"github.com/custodia-labs/folio/internal/core/domain"
)

// ViewerService is the host API of a single document viewer.
type ViewerService interface {
	// Load opens a document, replacing any open one.
	// Returns an error wrapping domain.ErrDocumentLoad on failure, in which
	// case no document is left open.
	Load(ctx context.Context, source string) error

	// Close tears down the open document, if any.
	Close() error

	// PageCount returns the number of pages, 0 when nothing is loaded.
	PageCount() int

	// Info describes the open document.
	// Returns domain.ErrNoDocument when nothing is loaded.
	Info() (domain.DocumentInfo, error)

	// RenderPage renders one page at the current scale.
	RenderPage(ctx context.Context, page int) error

	// VisiblePages returns the currently visible range.
	VisiblePages() domain.VisibleRange

	// SetScale accepts a number ("1.5", "150%") or a preset name.
	SetScale(value string) error

	// SetScaleValue sets an explicit scale, clamped to the allowed range.
	SetScaleValue(scale float64)

	// Scale returns the current display scale.
	Scale() float64

	// GoToPage scrolls so the page's top is at the top of the visible area.
	GoToPage(page int) error

	// CurrentPage returns the most visible page.
	CurrentPage() int

	// ScrollBy scrolls the visible area.
	ScrollBy(dx, dy float64)

	// Resize changes the visible area size.
	Resize(width, height float64)

	// ScreenToDocument converts a screen point to page document units.
	ScreenToDocument(p domain.Point, page int) (domain.Point, error)

	// DocumentToScreen converts a page document point to screen pixels.
	DocumentToScreen(p domain.Point, page int) (domain.Point, error)

	// Update re-evaluates visibility and requests a scheduling pass.
	Update()

	// Run drives rendering in the background until ctx is done.
	Run(ctx context.Context) error
}
