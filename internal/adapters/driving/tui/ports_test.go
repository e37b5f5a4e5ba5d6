package tui

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/folio/internal/adapters/driven/textgrid"
	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driving"
)

// MockViewer implements driving.ViewerService for testing.
// It keeps a scroll offset and scale and records calls.
type MockViewer struct {
	driving.ViewerService

	Pages     int
	scale     float64
	scrollY   float64
	page      int
	updates   int
	resized   domain.Size
	scaleSpec string
	GoToErr   error
}

func newMockViewer(pages int) *MockViewer {
	return &MockViewer{Pages: pages, scale: 1, page: 1}
}

func (m *MockViewer) Info() (domain.DocumentInfo, error) {
	return domain.DocumentInfo{Source: "/docs/report.pdf", PageCount: m.Pages}, nil
}

func (m *MockViewer) PageCount() int { return m.Pages }
func (m *MockViewer) Scale() float64 { return m.scale }
func (m *MockViewer) SetScaleValue(s float64) { m.scale = s }
func (m *MockViewer) CurrentPage() int { return m.page }
func (m *MockViewer) Update() { m.updates++ }

func (m *MockViewer) SetScale(v string) error {
	m.scaleSpec = v
	return nil
}

func (m *MockViewer) ScrollBy(_, dy float64) {
	m.scrollY += dy
}

func (m *MockViewer) GoToPage(n int) error {
	if m.GoToErr != nil {
		return m.GoToErr
	}
	m.page = n
	return nil
}

func (m *MockViewer) Resize(w, h float64) {
	m.resized = domain.Size{Width: w, Height: h}
}

func (m *MockViewer) VisiblePages() domain.VisibleRange {
	return domain.VisibleRange{First: 1, Last: 1}
}

// MockFind implements driving.FindService for testing.
type MockFind struct {
	driving.FindService

	Queries  []string
	Next     int
	Previous int
}

func (m *MockFind) Find(query string, _ domain.FindOptions) { m.Queries = append(m.Queries, query) }
func (m *MockFind) FindNext() { m.Next++ }
func (m *MockFind) FindPrevious() { m.Previous++ }

func (m *MockFind) PageHighlightRects(int) []domain.HighlightRect { return nil }

// mockLayout places page 1 at the screen origin.
type mockLayout struct{}

func (mockLayout) ContainerBounds(page int) (domain.Rect, bool) {
	if page != 1 {
		return domain.Rect{}, false
	}
	return domain.Rect{Width: 60, Height: 36}, true
}

func newTestPorts() *Ports {
	return &Ports{
		Viewer: newMockViewer(3),
		Find:   &MockFind{},
		Pages:  textgrid.NewTarget(textgrid.CellWidth, textgrid.CellHeight),
		Layout: mockLayout{},
	}
}

func TestPorts_Validate(t *testing.T) {
	full := newTestPorts()

	tests := []struct {
		name    string
		ports   *Ports
		wantErr error
	}{
		{name: "all set", ports: full},
		{name: "missing viewer", ports: &Ports{Find: full.Find, Pages: full.Pages, Layout: full.Layout}, wantErr: ErrMissingViewer},
		{name: "missing find", ports: &Ports{Viewer: full.Viewer, Pages: full.Pages, Layout: full.Layout}, wantErr: ErrMissingFind},
		{name: "missing pages", ports: &Ports{Viewer: full.Viewer, Find: full.Find, Layout: full.Layout}, wantErr: ErrMissingPages},
		{name: "missing layout", ports: &Ports{Viewer: full.Viewer, Find: full.Find, Pages: full.Pages}, wantErr: ErrMissingPages},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ports.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestPorts_ReloadIsOptional(t *testing.T) {
	ports := newTestPorts()
	ports.Reload = func(context.Context) error { return nil }

	assert.NoError(t, ports.Validate())
}
