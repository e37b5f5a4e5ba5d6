package services

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
	"github.com/custodia-labs/folio/internal/logger"
)

// pageView is the viewer's record of one page.
type pageView struct {
	number int
	state  domain.RenderState

	// unit is the page size at scale 1. Until the page is fetched it holds
	// the first page's size as a placeholder and fetched is false.
	unit    domain.PageViewport
	fetched bool

	// renderedScale is the scale of the current visual output, 0 if none.
	renderedScale float64

	page driven.Page
}

// ViewportModel owns per-page render state, the display scale and the page layout.
// The rendering scheduler mutates render state; nothing else does.
type ViewportModel struct {
	layout driven.PageLayout

	mu        sync.Mutex
	doc       driven.Document
	pages     []*pageView
	gen       uint64
	scale     float64
	preset    domain.ScalePreset
	lastY     float64
	direction domain.ScrollDirection
}

// NewViewportModel creates a model laying pages out with layout.
func NewViewportModel(layout driven.PageLayout) *ViewportModel {
	return &ViewportModel{
		layout: layout,
		scale:  domain.DefaultScale,
	}
}

// SetDocument builds page records for doc. Page 1 is fetched so every page
// starts with a plausible size; other pages are fetched lazily.
func (m *ViewportModel) SetDocument(ctx context.Context, doc driven.Document) error {
	first, err := doc.Page(ctx, 1)
	if err != nil {
		return fmt.Errorf("fetch first page: %w", err)
	}
	placeholder := first.UnitViewport()

	m.mu.Lock()
	defer m.mu.Unlock()

	m.doc = doc
	m.gen++
	m.pages = make([]*pageView, doc.PageCount())
	for i := range m.pages {
		m.pages[i] = &pageView{number: i + 1, unit: placeholder}
	}
	m.pages[0].page = first
	m.pages[0].fetched = true
	m.lastY = 0
	m.direction = domain.ScrollDown
	m.relayoutLocked()

	logger.Debug("viewport: %d pages, placeholder %.0fx%.0f", len(m.pages), placeholder.Width, placeholder.Height)
	return nil
}

// Reset drops the document and all page records.
func (m *ViewportModel) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.doc = nil
	m.pages = nil
	m.gen++
	m.relayoutLocked()
}

// Generation identifies the current document. It changes on every
// SetDocument and Reset, so work started against one document can tell
// that its result no longer applies.
func (m *ViewportModel) Generation() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gen
}

// PageCount returns the number of pages.
func (m *ViewportModel) PageCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pages)
}

// Scale returns the current display scale.
func (m *ViewportModel) Scale() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.scale
}

// Preset returns the active scale preset, ScaleNone for explicit scales.
func (m *ViewportModel) Preset() domain.ScalePreset {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.preset
}

// SetScale sets the display scale and lays pages out again.
// Page records keep their fetched viewports; they simply stop being
// satisfied until rendered at the new scale. Returns false if unchanged.
func (m *ViewportModel) SetScale(scale float64, preset domain.ScalePreset) bool {
	scale = domain.ClampScale(scale)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.preset = preset
	if scale == m.scale {
		return false
	}
	m.scale = scale
	m.relayoutLocked()
	return true
}

// PresetScale computes the scale a preset resolves to for the given page
// and the current visible area size.
func (m *ViewportModel) PresetScale(preset domain.ScalePreset, page int) (float64, error) {
	m.mu.Lock()
	pv := m.pageLocked(page)
	m.mu.Unlock()
	if pv == nil {
		return 0, fmt.Errorf("preset %s: %w", preset, domain.ErrNoDocument)
	}

	area := m.layout.ViewportSize()
	unit := pv.unit
	if unit.Width <= 0 || unit.Height <= 0 {
		return domain.DefaultScale, nil
	}
	widthScale := (area.Width - domain.ScrollbarPadding) / unit.Width
	heightScale := (area.Height - domain.VerticalPadding) / unit.Height

	var scale float64
	switch preset {
	case domain.ScalePageActual:
		scale = 1
	case domain.ScalePageWidth:
		scale = widthScale
	case domain.ScalePageFit:
		scale = math.Min(widthScale, heightScale)
	case domain.ScaleAuto:
		horizontal := widthScale
		if unit.Width > unit.Height {
			horizontal = math.Min(heightScale, widthScale)
		}
		scale = math.Min(domain.MaxAutoScale, horizontal)
	default:
		return 0, fmt.Errorf("%w: preset %q", domain.ErrInvalidScale, preset)
	}
	if scale <= 0 || math.IsNaN(scale) || math.IsInf(scale, 0) {
		scale = domain.DefaultScale
	}
	return domain.ClampScale(scale), nil
}

// Page returns page n and its unit viewport, fetching it on first use.
// When the fetched size differs from the placeholder the layout is updated.
func (m *ViewportModel) Page(ctx context.Context, n int) (driven.Page, domain.PageViewport, error) {
	m.mu.Lock()
	pv := m.pageLocked(n)
	if pv == nil {
		m.mu.Unlock()
		return nil, domain.PageViewport{}, fmt.Errorf("page %d: %w", n, domain.ErrPageOutOfRange)
	}
	if pv.fetched {
		page, unit := pv.page, pv.unit
		m.mu.Unlock()
		return page, unit, nil
	}
	doc := m.doc
	m.mu.Unlock()

	page, err := doc.Page(ctx, n)
	if err != nil {
		return nil, domain.PageViewport{}, err
	}
	unit := page.UnitViewport()

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.doc != doc || m.pageLocked(n) != pv {
		return nil, domain.PageViewport{}, fmt.Errorf("page %d: %w", n, domain.ErrNoDocument)
	}
	resized := pv.unit.Width != unit.Width || pv.unit.Height != unit.Height
	pv.page, pv.unit, pv.fetched = page, unit, true
	if resized {
		m.relayoutLocked()
	}
	return page, unit, nil
}

// UnitSize returns the page size at scale 1.
func (m *ViewportModel) UnitSize(n int) (domain.Size, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	pv := m.pageLocked(n)
	if pv == nil {
		return domain.Size{}, false
	}
	return pv.unit.Size(), true
}

// State returns a page's render state.
func (m *ViewportModel) State(n int) domain.RenderState {
	m.mu.Lock()
	defer m.mu.Unlock()
	if pv := m.pageLocked(n); pv != nil {
		return pv.state
	}
	return domain.RenderInitial
}

// RenderedScale returns the scale of the page's current output, 0 if none.
func (m *ViewportModel) RenderedScale(n int) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if pv := m.pageLocked(n); pv != nil {
		return pv.renderedScale
	}
	return 0
}

// Satisfied reports whether the page is rendered at the current scale.
func (m *ViewportModel) Satisfied(n int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	pv := m.pageLocked(n)
	return pv != nil && pv.state == domain.RenderFinished && pv.renderedScale == m.scale
}

// NeedsRender reports whether the page is neither satisfied nor running.
func (m *ViewportModel) NeedsRender(n int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	pv := m.pageLocked(n)
	if pv == nil || pv.state == domain.RenderRunning {
		return false
	}
	return pv.state != domain.RenderFinished || pv.renderedScale != m.scale
}

// markRunning moves a page to Running. It reports false, changing
// nothing, when gen is not the current generation.
func (m *ViewportModel) markRunning(n int, gen uint64) bool {
	return m.update(n, gen, func(pv *pageView) {
		pv.state = domain.RenderRunning
	})
}

// markFinished records a completed render at scale.
func (m *ViewportModel) markFinished(n int, gen uint64, scale float64) bool {
	return m.update(n, gen, func(pv *pageView) {
		pv.state = domain.RenderFinished
		pv.renderedScale = scale
	})
}

// markFailed returns a page to Initial. The previous output is gone.
func (m *ViewportModel) markFailed(n int, gen uint64) bool {
	return m.update(n, gen, func(pv *pageView) {
		pv.state = domain.RenderInitial
		pv.renderedScale = 0
	})
}

func (m *ViewportModel) update(n int, gen uint64, fn func(*pageView)) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if gen != m.gen {
		return false
	}
	pv := m.pageLocked(n)
	if pv == nil {
		return false
	}
	fn(pv)
	return true
}

// VisibleRange computes the pages intersecting the visible area and updates
// the scroll direction from the change in vertical scroll offset.
func (m *ViewportModel) VisibleRange() domain.VisibleRange {
	m.mu.Lock()
	defer m.mu.Unlock()

	y := m.layout.ScrollOffset().Y
	switch {
	case y > m.lastY:
		m.direction = domain.ScrollDown
	case y < m.lastY:
		m.direction = domain.ScrollUp
	}
	m.lastY = y

	vr := domain.VisibleRange{Direction: m.direction}
	area := m.layout.ViewportSize()
	view := domain.Rect{Width: area.Width, Height: area.Height}
	for _, pv := range m.pages {
		bounds, ok := m.layout.ContainerBounds(pv.number)
		if !ok || bounds.Empty() {
			continue
		}
		if bounds.Y >= view.Bottom() {
			break
		}
		visible := bounds.Intersect(view)
		if visible.Empty() {
			continue
		}
		percent := int(math.Round(visible.Width * visible.Height * 100 / (bounds.Width * bounds.Height)))
		vr.Pages = append(vr.Pages, domain.VisiblePage{Page: pv.number, Percent: percent})
		if vr.First == 0 {
			vr.First = pv.number
		}
		vr.Last = pv.number
	}
	return vr
}

// Direction returns the last scroll direction.
func (m *ViewportModel) Direction() domain.ScrollDirection {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.direction
}

// CurrentPage returns the most visible page, the earliest on ties.
// Returns 1 when pages exist but none is visible, 0 without a document.
func (m *ViewportModel) CurrentPage() int {
	vr := m.VisibleRange()
	if vr.Empty() {
		if m.PageCount() > 0 {
			return 1
		}
		return 0
	}
	best := vr.Pages[0]
	for _, p := range vr.Pages[1:] {
		if p.Percent > best.Percent {
			best = p
		}
	}
	return best.Page
}

func (m *ViewportModel) pageLocked(n int) *pageView {
	if n < 1 || n > len(m.pages) {
		return nil
	}
	return m.pages[n-1]
}

func (m *ViewportModel) relayoutLocked() {
	sizes := make([]domain.Size, len(m.pages))
	for i, pv := range m.pages {
		sizes[i] = pv.unit.Size()
	}
	m.layout.Layout(sizes, m.scale)
}
