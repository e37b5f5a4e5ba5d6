package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
	"github.com/custodia-labs/folio/internal/core/ports/driving"
)

// Ensure AnnotationService implements the interface.
var _ driving.AnnotationService = (*AnnotationService)(nil)

// AnnotationService turns pointer input on the open document into
// annotations and persists them.
type AnnotationService struct {
	viewer   *Viewer
	store    driven.AnnotationStore
	defaults domain.AnnotationSettings
	now      func() time.Time
}

// NewAnnotationService creates an annotation service. store may be nil.
func NewAnnotationService(viewer *Viewer, store driven.AnnotationStore, defaults domain.AnnotationSettings) *AnnotationService {
	return &AnnotationService{
		viewer:   viewer,
		store:    store,
		defaults: defaults,
		now:      time.Now,
	}
}

// CreateFromSelection builds a text markup or square annotation from screen
// selection rectangles on one page.
func (s *AnnotationService) CreateFromSelection(
	ctx context.Context,
	page int,
	typ domain.AnnotationType,
	screenRects []domain.Rect,
	color string,
) (*domain.Annotation, error) {
	if !typ.UsesQuads() && typ != domain.AnnotationSquare {
		return nil, fmt.Errorf("%w: %s cannot be created from a selection", domain.ErrInvalidInput, typ)
	}
	quads, err := s.viewer.Geometry().SelectionRectsToQuads(screenRects, page)
	if err != nil {
		return nil, err
	}
	if len(quads) == 0 {
		return nil, fmt.Errorf("%w: selection is empty", domain.ErrInvalidInput)
	}

	a := s.newAnnotation(typ, page, color)
	a.Rect = QuadsBoundingRect(quads)
	if typ.UsesQuads() {
		a.Quads = quads
		a.Opacity = s.defaults.Opacity
	}
	return s.save(ctx, a)
}

// CreateInk builds an ink annotation from screen strokes.
func (s *AnnotationService) CreateInk(
	ctx context.Context,
	page int,
	screenStrokes []domain.Stroke,
	thickness float64,
	color string,
) (*domain.Annotation, error) {
	geometry := s.viewer.Geometry()
	strokes, err := geometry.StrokesToDocument(screenStrokes, page)
	if err != nil {
		return nil, err
	}
	kept := strokes[:0]
	for _, st := range strokes {
		if len(st.Points) > 0 {
			kept = append(kept, st)
		}
	}
	if len(kept) == 0 {
		return nil, fmt.Errorf("%w: no stroke points", domain.ErrInvalidInput)
	}
	if thickness <= 0 {
		return nil, fmt.Errorf("%w: thickness %v", domain.ErrInvalidInput, thickness)
	}

	width := geometry.ThicknessToDocument(thickness)
	a := s.newAnnotation(domain.AnnotationInk, page, color)
	a.Strokes = kept
	a.Thickness = width
	a.Rect = StrokesBoundingRect(kept, width)
	return s.save(ctx, a)
}

// CreateFreehandHighlight builds a highlight whose quads follow a pointer path.
func (s *AnnotationService) CreateFreehandHighlight(
	ctx context.Context,
	page int,
	screenPoints []domain.Point,
	thickness float64,
	color string,
) (*domain.Annotation, error) {
	if thickness <= 0 {
		return nil, fmt.Errorf("%w: thickness %v", domain.ErrInvalidInput, thickness)
	}
	quads, err := s.viewer.Geometry().StrokePathToQuads(screenPoints, thickness, page)
	if err != nil {
		return nil, err
	}
	if len(quads) == 0 {
		return nil, fmt.Errorf("%w: path needs two distinct points", domain.ErrInvalidInput)
	}

	a := s.newAnnotation(domain.AnnotationHighlight, page, color)
	a.Quads = quads
	a.Rect = QuadsBoundingRect(quads)
	a.Opacity = s.defaults.Opacity
	return s.save(ctx, a)
}

// List returns the annotations on one page.
func (s *AnnotationService) List(ctx context.Context, page int) ([]domain.Annotation, error) {
	if page < 1 {
		return nil, fmt.Errorf("%w: page %d", domain.ErrInvalidInput, page)
	}
	return s.list(ctx, page)
}

// ListAll returns every annotation on the document.
func (s *AnnotationService) ListAll(ctx context.Context) ([]domain.Annotation, error) {
	return s.list(ctx, 0)
}

func (s *AnnotationService) list(ctx context.Context, page int) ([]domain.Annotation, error) {
	key, err := s.documentKey()
	if err != nil {
		return nil, err
	}
	list, err := s.store.List(ctx, key, page)
	if err != nil {
		return nil, fmt.Errorf("list annotations: %w", err)
	}
	return list, nil
}

// Delete removes an annotation.
func (s *AnnotationService) Delete(ctx context.Context, id string) error {
	key, err := s.documentKey()
	if err != nil {
		return err
	}
	a, err := s.store.Get(ctx, key, id)
	if err != nil {
		return fmt.Errorf("get annotation %s: %w", id, err)
	}
	if err := s.store.Delete(ctx, key, id); err != nil {
		return fmt.Errorf("delete annotation %s: %w", id, err)
	}
	s.viewer.Bus().Publish(domain.Event{Type: domain.EventAnnotationRemoved, Page: a.Page, Payload: a})
	return nil
}

// Import stores annotations given as a JSON array.
// Every entry is validated before any is stored.
func (s *AnnotationService) Import(ctx context.Context, data []byte) (int, error) {
	var list []domain.Annotation
	if err := json.Unmarshal(data, &list); err != nil {
		return 0, fmt.Errorf("%w: parse annotations: %v", domain.ErrInvalidInput, err)
	}
	return s.ImportAnnotations(ctx, list)
}

// ImportAnnotations stores already decoded annotations.
func (s *AnnotationService) ImportAnnotations(ctx context.Context, list []domain.Annotation) (int, error) {
	if _, err := s.documentKey(); err != nil {
		return 0, err
	}
	count := s.viewer.PageCount()
	for i := range list {
		if err := list[i].Validate(); err != nil {
			return 0, fmt.Errorf("annotation %d: %w", i, err)
		}
		if list[i].Page > count {
			return 0, fmt.Errorf("annotation %d: page %d of %d: %w", i, list[i].Page, count, domain.ErrPageOutOfRange)
		}
	}

	for i := range list {
		a := list[i]
		if a.ID == "" {
			a.ID = uuid.NewString()
		}
		if a.CreatedAt.IsZero() {
			a.CreatedAt = s.now().UTC()
		}
		if _, err := s.save(ctx, &a); err != nil {
			return i, err
		}
	}
	return len(list), nil
}

// Export returns every annotation as an indented JSON array.
func (s *AnnotationService) Export(ctx context.Context) ([]byte, error) {
	list, err := s.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []domain.Annotation{}
	}
	data, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode annotations: %w", err)
	}
	return data, nil
}

func (s *AnnotationService) newAnnotation(typ domain.AnnotationType, page int, color string) *domain.Annotation {
	if color == "" {
		color = s.defaults.Color
	}
	return &domain.Annotation{
		ID:        uuid.NewString(),
		Type:      typ,
		Page:      page,
		Color:     color,
		CreatedAt: s.now().UTC(),
	}
}

func (s *AnnotationService) save(ctx context.Context, a *domain.Annotation) (*domain.Annotation, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}
	key, err := s.documentKey()
	if err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, key, a); err != nil {
		return nil, fmt.Errorf("save annotation: %w", err)
	}
	s.viewer.Bus().Publish(domain.Event{Type: domain.EventAnnotationAdded, Page: a.Page, Payload: a})
	return a, nil
}

func (s *AnnotationService) documentKey() (string, error) {
	if s.store == nil {
		return "", fmt.Errorf("annotation store not configured: %w", domain.ErrNotFound)
	}
	doc := s.viewer.Document()
	if doc == nil {
		return "", domain.ErrNoDocument
	}
	return doc.Fingerprint(), nil
}
