package mcp

import (
	"context"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driving"
)

// mockViewerService is a mock implementation of driving.ViewerService.
// Methods the server does not call panic through the nil embedded interface.
type mockViewerService struct {
	driving.ViewerService
	info domain.DocumentInfo
	err  error
}

func (m *mockViewerService) Info() (domain.DocumentInfo, error) {
	return m.info, m.err
}

// mockFindService is a mock implementation of driving.FindService.
type mockFindService struct {
	driving.FindService
	matches   []*domain.Match
	pages     map[int]*domain.PageTextContent
	err       error
	lastQuery string
	lastOpts  domain.FindOptions
}

func (m *mockFindService) FindAll(_ context.Context, query string, opts domain.FindOptions) ([]*domain.Match, error) {
	m.lastQuery = query
	m.lastOpts = opts
	return m.matches, m.err
}

func (m *mockFindService) PageText(_ context.Context, page int) (*domain.PageTextContent, error) {
	if m.err != nil {
		return nil, m.err
	}
	content, ok := m.pages[page]
	if !ok {
		return nil, domain.ErrPageOutOfRange
	}
	return content, nil
}

// mockAnnotationService is a mock implementation of driving.AnnotationService.
type mockAnnotationService struct {
	driving.AnnotationService
	annotations []domain.Annotation
	err         error
	listedPage  int
}

func (m *mockAnnotationService) List(_ context.Context, page int) ([]domain.Annotation, error) {
	m.listedPage = page
	var out []domain.Annotation
	for _, a := range m.annotations {
		if a.Page == page {
			out = append(out, a)
		}
	}
	return out, m.err
}

func (m *mockAnnotationService) ListAll(_ context.Context) ([]domain.Annotation, error) {
	return m.annotations, m.err
}
