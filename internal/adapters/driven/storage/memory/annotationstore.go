package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
)

// Ensure AnnotationStore implements the interface.
var _ driven.AnnotationStore = (*AnnotationStore)(nil)

// AnnotationStore is an in-memory implementation of driven.AnnotationStore.
type AnnotationStore struct {
	mu   sync.RWMutex
	docs map[string]map[string]domain.Annotation
}

// NewAnnotationStore creates a new in-memory annotation store.
func NewAnnotationStore() *AnnotationStore {
	return &AnnotationStore{
		docs: make(map[string]map[string]domain.Annotation),
	}
}

// Save stores or replaces an annotation.
func (s *AnnotationStore) Save(_ context.Context, doc string, a *domain.Annotation) error {
	if a.ID == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	byID, ok := s.docs[doc]
	if !ok {
		byID = make(map[string]domain.Annotation)
		s.docs[doc] = byID
	}
	byID[a.ID] = clone(a)
	return nil
}

// Get retrieves an annotation by ID.
func (s *AnnotationStore) Get(_ context.Context, doc, id string) (*domain.Annotation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.docs[doc][id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := clone(&a)
	return &out, nil
}

// List returns a document's annotations on page, or on every page when page
// is 0, ordered by page then creation time.
func (s *AnnotationStore) List(_ context.Context, doc string, page int) ([]domain.Annotation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Annotation
	for _, a := range s.docs[doc] {
		if page == 0 || a.Page == page {
			out = append(out, clone(&a))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Page != out[j].Page {
			return out[i].Page < out[j].Page
		}
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// Delete removes an annotation.
func (s *AnnotationStore) Delete(_ context.Context, doc, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[doc][id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.docs[doc], id)
	if len(s.docs[doc]) == 0 {
		delete(s.docs, doc)
	}
	return nil
}

// clone copies an annotation so callers cannot alias stored geometry.
func clone(a *domain.Annotation) domain.Annotation {
	out := *a
	out.Quads = append([]domain.Quad(nil), a.Quads...)
	if a.Strokes != nil {
		out.Strokes = make([]domain.Stroke, len(a.Strokes))
		for i, st := range a.Strokes {
			out.Strokes[i] = domain.Stroke{Points: append([]domain.Point(nil), st.Points...)}
		}
	}
	return out
}
