package driven

import (
	"context"

	"github.com/custodia-labs/folio/internal/core/domain"
)

// AnnotationStore persists annotations per document fingerprint.
type AnnotationStore interface {
	// Save stores or updates an annotation.
	Save(ctx context.Context, doc string, a *domain.Annotation) error

	// Get retrieves an annotation by ID.
	// Returns domain.ErrNotFound if it does not exist.
	Get(ctx context.Context, doc, id string) (*domain.Annotation, error)

	// List returns the annotations of one page, or of all pages when page is 0,
	// ordered by page then creation time.
	List(ctx context.Context, doc string, page int) ([]domain.Annotation, error)

	// Delete removes an annotation.
	// Returns domain.ErrNotFound if it does not exist.
	Delete(ctx context.Context, doc, id string) error
}
