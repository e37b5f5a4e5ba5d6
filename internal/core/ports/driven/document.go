package driven

import (
	"context"

	"github.com/custodia-labs/folio/internal/core/domain"
)

// DocumentLoader opens documents. This is the page-parsing engine's entry point.
type DocumentLoader interface {
	// Load opens the document at source (a file path).
	// Failures are reported wrapped in domain.ErrDocumentLoad.
	Load(ctx context.Context, source string) (Document, error)
}

// Document is a loaded source owned by the viewer until Close.
type Document interface {
	// PageCount returns the number of pages.
	PageCount() int

	// Page fetches page n (1-based).
	// Implementations may cache pages; repeated calls are cheap.
	Page(ctx context.Context, n int) (Page, error)

	// Fingerprint identifies the document content.
	// Annotations are stored against it.
	Fingerprint() string

	// Close releases resources held by the document.
	Close() error
}

// Page is one page's intrinsic content.
type Page interface {
	// Number returns the 1-based page number.
	Number() int

	// UnitViewport returns the page size at scale 1.0.
	UnitViewport() domain.PageViewport

	// RenderInto draws the page onto s using viewport vp.
	RenderInto(ctx context.Context, s Surface, vp domain.PageViewport) error

	// TextRuns returns the page's text fragments in reading order,
	// positioned in document units.
	TextRuns(ctx context.Context) ([]domain.TextRun, error)
}
