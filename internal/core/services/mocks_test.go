package services

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"sync"

	"github.com/custodia-labs/folio/internal/adapters/driven/layout"
	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockPage implements driven.Page for testing.
type mockPage struct {
	doc    *mockDocument
	number int
	unit   domain.PageViewport
	runs   []domain.TextRun

	renderErr error
	textErr   error

	// onRender runs inside RenderInto, before it returns.
	onRender func()

	// gate, when set, blocks TextRuns until closed.
	gate chan struct{}
}

func (p *mockPage) Number() int { return p.number }

func (p *mockPage) UnitViewport() domain.PageViewport { return p.unit }

func (p *mockPage) RenderInto(_ context.Context, s driven.Surface, vp domain.PageViewport) error {
	p.doc.record(&p.doc.rendered, p.number)
	if p.onRender != nil {
		p.onRender()
	}
	if p.renderErr != nil {
		return p.renderErr
	}
	s.FillRect(domain.Rect{Width: vp.Width, Height: vp.Height}, color.White)
	return nil
}

func (p *mockPage) TextRuns(ctx context.Context) ([]domain.TextRun, error) {
	if p.gate != nil {
		select {
		case <-p.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	p.doc.record(&p.doc.extracted, p.number)
	if p.textErr != nil {
		return nil, p.textErr
	}
	return p.runs, nil
}

// mockDocument implements driven.Document for testing.
type mockDocument struct {
	pages       []*mockPage
	fingerprint string

	mu        sync.Mutex
	fetches   map[int]int
	rendered  []int
	extracted []int
	closed    bool
}

// newMockDocument creates a document of n pages of the given unit size.
func newMockDocument(n int, w, h float64) *mockDocument {
	d := &mockDocument{fingerprint: fmt.Sprintf("doc-%d", n), fetches: make(map[int]int)}
	for i := 1; i <= n; i++ {
		d.pages = append(d.pages, &mockPage{
			doc:    d,
			number: i,
			unit:   domain.PageViewport{Width: w, Height: h, Scale: 1},
		})
	}
	return d
}

// withText sets one run of text per page.
func (d *mockDocument) withText(texts ...string) *mockDocument {
	for i, t := range texts {
		d.pages[i].runs = []domain.TextRun{{Text: t, Rect: domain.Rect{X: 10, Y: 10, Width: float64(len(t)) * 5, Height: 10}}}
	}
	return d
}

func (d *mockDocument) PageCount() int { return len(d.pages) }

func (d *mockDocument) Page(_ context.Context, n int) (driven.Page, error) {
	if n < 1 || n > len(d.pages) {
		return nil, domain.ErrPageOutOfRange
	}
	d.mu.Lock()
	d.fetches[n]++
	d.mu.Unlock()
	return d.pages[n-1], nil
}

func (d *mockDocument) Fingerprint() string { return d.fingerprint }

func (d *mockDocument) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	return nil
}

func (d *mockDocument) record(list *[]int, n int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	*list = append(*list, n)
}

func (d *mockDocument) renderOrder() []int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]int(nil), d.rendered...)
}

func (d *mockDocument) extractOrder() []int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]int(nil), d.extracted...)
}

func (d *mockDocument) fetchCount(n int) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.fetches[n]
}

// mockLoader implements driven.DocumentLoader for testing.
type mockLoader struct {
	docs map[string]*mockDocument
}

func (l *mockLoader) Load(_ context.Context, source string) (driven.Document, error) {
	doc, ok := l.docs[source]
	if !ok {
		return nil, fmt.Errorf("%w: %s: no such file", domain.ErrDocumentLoad, source)
	}
	return doc, nil
}

// mockSurface implements driven.Surface for testing.
type mockSurface struct {
	size  domain.Size
	fills int
}

func (s *mockSurface) Size() domain.Size                                { return s.size }
func (s *mockSurface) Clear(color.Color)                                {}
func (s *mockSurface) FillRect(domain.Rect, color.Color)                { s.fills++ }
func (s *mockSurface) FillQuad(domain.Quad, color.Color)                { s.fills++ }
func (s *mockSurface) DrawText(domain.Point, float64, string, color.Color) {}

// mockTarget implements driven.RenderTarget for testing.
type mockTarget struct {
	mu       sync.Mutex
	surfaces map[int]*mockSurface
	err      error
}

func newMockTarget() *mockTarget {
	return &mockTarget{surfaces: make(map[int]*mockSurface)}
}

func (t *mockTarget) Surface(page int, size domain.Size) (driven.Surface, error) {
	if t.err != nil {
		return nil, t.err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	s := &mockSurface{size: size}
	t.surfaces[page] = s
	return s, nil
}

// mockAnnotationStore implements driven.AnnotationStore for testing.
type mockAnnotationStore struct {
	mu    sync.Mutex
	items map[string]map[string]domain.Annotation
	order []string
	err   error
}

func newMockAnnotationStore() *mockAnnotationStore {
	return &mockAnnotationStore{items: make(map[string]map[string]domain.Annotation)}
}

func (s *mockAnnotationStore) Save(_ context.Context, doc string, a *domain.Annotation) error {
	if s.err != nil {
		return s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.items[doc] == nil {
		s.items[doc] = make(map[string]domain.Annotation)
	}
	if _, ok := s.items[doc][a.ID]; !ok {
		s.order = append(s.order, a.ID)
	}
	s.items[doc][a.ID] = *a
	return nil
}

func (s *mockAnnotationStore) Get(_ context.Context, doc, id string) (*domain.Annotation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.items[doc][id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &a, nil
}

func (s *mockAnnotationStore) List(_ context.Context, doc string, page int) ([]domain.Annotation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Annotation
	for _, id := range s.order {
		a, ok := s.items[doc][id]
		if ok && (page == 0 || a.Page == page) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *mockAnnotationStore) Delete(_ context.Context, doc, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[doc][id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.items[doc], id)
	return nil
}

// mockVisibility implements VisibilitySource for testing.
type mockVisibility struct {
	mu      sync.Mutex
	visible domain.VisibleRange
	current int
}

func (v *mockVisibility) VisibleRange() domain.VisibleRange {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.visible
}

func (v *mockVisibility) CurrentPage() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.current
}

// mockMetrics implements PageMetrics for testing.
type mockMetrics struct {
	scale float64
	size  domain.Size
	pages int
}

func (m *mockMetrics) Scale() float64 { return m.scale }

func (m *mockMetrics) UnitSize(page int) (domain.Size, bool) {
	if page < 1 || page > m.pages {
		return domain.Size{}, false
	}
	return m.size, true
}

// mockProvider implements driven.ViewportGeometryProvider for testing.
type mockProvider struct {
	origins map[int]domain.Point
	size    domain.Size
}

func (p *mockProvider) ContainerBounds(page int) (domain.Rect, bool) {
	o, ok := p.origins[page]
	if !ok {
		return domain.Rect{}, false
	}
	return domain.Rect{X: o.X, Y: o.Y, Width: p.size.Width, Height: p.size.Height}, true
}

func (p *mockProvider) ScrollOffset() domain.Point { return domain.Point{} }

func (p *mockProvider) ViewportSize() domain.Size { return domain.Size{Width: 800, Height: 600} }

// eventRecorder collects events from a bus.
type eventRecorder struct {
	mu     sync.Mutex
	events []domain.Event
}

func recordEvents(bus *EventBus) *eventRecorder {
	r := &eventRecorder{}
	bus.SubscribeAll(func(e domain.Event) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.events = append(r.events, e)
	})
	return r
}

func (r *eventRecorder) ofType(t domain.EventType) []domain.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Event
	for _, e := range r.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

// messageSink records announcements.
type messageSink struct {
	mu       sync.Mutex
	messages []string
}

func (s *messageSink) Announce(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, msg)
}

func (s *messageSink) all() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.messages...)
}

// newTestModel loads doc into a model on a gapless vertical layout with the
// given visible area.
func newTestModel(doc *mockDocument, width, height float64) (*ViewportModel, *layout.Vertical) {
	l := layout.NewVertical(0)
	l.Resize(domain.Size{Width: width, Height: height})
	m := NewViewportModel(l)
	if err := m.SetDocument(context.Background(), doc); err != nil {
		panic(err)
	}
	return m, l
}

var errBoom = errors.New("boom")
