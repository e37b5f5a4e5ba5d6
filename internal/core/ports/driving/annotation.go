package driving

import (
	"context"

	"github.com/custodia-labs/folio/internal/core/domain"
)

// AnnotationService creates and manages annotations on the open document.
// Screen geometry is converted with the viewer's current scale and layout.
type AnnotationService interface {
	// CreateFromSelection builds a text markup annotation from selection rectangles.
	CreateFromSelection(ctx context.Context, page int, typ domain.AnnotationType,
		screenRects []domain.Rect, color string) (*domain.Annotation, error)

	// CreateInk builds an ink annotation from pointer strokes.
	CreateInk(ctx context.Context, page int, screenStrokes []domain.Stroke,
		thickness float64, color string) (*domain.Annotation, error)

	// CreateFreehandHighlight turns one pointer path into a highlight made of quads.
	CreateFreehandHighlight(ctx context.Context, page int, screenPoints []domain.Point,
		thickness float64, color string) (*domain.Annotation, error)

	// List returns the annotations on a page.
	List(ctx context.Context, page int) ([]domain.Annotation, error)

	// ListAll returns every annotation on the document.
	ListAll(ctx context.Context) ([]domain.Annotation, error)

	// Delete removes an annotation by ID.
	Delete(ctx context.Context, id string) error

	// Import stores annotations from their JSON form and returns how many were added.
	Import(ctx context.Context, data []byte) (int, error)

	// Export returns every annotation in JSON form.
	Export(ctx context.Context) ([]byte, error)
}
