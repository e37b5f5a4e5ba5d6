package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
	"github.com/custodia-labs/folio/internal/core/ports/driving"
	"github.com/custodia-labs/folio/internal/logger"
)

// Ensure Viewer implements the interface.
var _ driving.ViewerService = (*Viewer)(nil)

// ViewerDeps holds the driven ports a viewer needs.
type ViewerDeps struct {
	Loader    driven.DocumentLoader
	Layout    driven.PageLayout
	Target    driven.RenderTarget
	Announcer driven.Announcer

	// Normalize is applied to extracted text and queries. May be nil.
	Normalize func(string) string
}

// Viewer is one document viewer. It owns the event bus, notifier, viewport
// model, rendering scheduler, geometry engine and find controller.
type Viewer struct {
	loader   driven.DocumentLoader
	layout   driven.PageLayout
	settings domain.ViewerSettings

	bus       *EventBus
	notifier  *Notifier
	model     *ViewportModel
	scheduler *RenderingScheduler
	geometry  *GeometryEngine
	find      *FindController

	mu       sync.Mutex
	doc      driven.Document
	source   string
	lastPage int
}

// NewViewer wires a viewer from its driven ports and settings.
func NewViewer(deps ViewerDeps, settings domain.ViewerSettings) *Viewer {
	bus := NewEventBus()
	notifier := NewNotifier(deps.Announcer)
	model := NewViewportModel(deps.Layout)
	throttle := time.Duration(settings.ScaleThrottleMS) * time.Millisecond

	v := &Viewer{
		loader:    deps.Loader,
		layout:    deps.Layout,
		settings:  settings,
		bus:       bus,
		notifier:  notifier,
		model:     model,
		scheduler: NewRenderingScheduler(model, deps.Target, bus, settings.PreRenderPages, throttle),
		geometry:  NewGeometryEngine(deps.Layout, model),
		find:      NewFindController(model, bus, notifier, deps.Normalize),
	}
	v.find.OnSelect(v.revealMatch)
	return v
}

// Bus returns the viewer's event bus.
func (v *Viewer) Bus() *EventBus { return v.bus }

// Notifier returns the viewer's notifier.
func (v *Viewer) Notifier() *Notifier { return v.notifier }

// Find returns the find controller.
func (v *Viewer) Find() *FindController { return v.find }

// Geometry returns the geometry engine.
func (v *Viewer) Geometry() *GeometryEngine { return v.geometry }

// Scheduler returns the rendering scheduler.
func (v *Viewer) Scheduler() *RenderingScheduler { return v.scheduler }

// Model returns the viewport model.
func (v *Viewer) Model() *ViewportModel { return v.model }

// Document returns the open document, or nil.
func (v *Viewer) Document() driven.Document {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.doc
}

// Source returns the path of the open document.
func (v *Viewer) Source() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.source
}

// Load opens source, closing any open document first.
func (v *Viewer) Load(ctx context.Context, source string) error {
	logger.Section("Load")
	if err := v.Close(); err != nil {
		logger.Warn("close previous document: %v", err)
	}

	doc, err := v.loader.Load(ctx, source)
	if err != nil {
		if errors.Is(err, domain.ErrDocumentLoad) {
			return err
		}
		return fmt.Errorf("%w: %s: %v", domain.ErrDocumentLoad, source, err)
	}
	if doc.PageCount() < 1 {
		_ = doc.Close()
		return fmt.Errorf("%w: %s: document has no pages", domain.ErrDocumentLoad, source)
	}
	if err := v.model.SetDocument(ctx, doc); err != nil {
		_ = doc.Close()
		v.model.Reset()
		return fmt.Errorf("%w: %s: %v", domain.ErrDocumentLoad, source, err)
	}

	v.mu.Lock()
	v.doc = doc
	v.source = source
	v.lastPage = 0
	v.mu.Unlock()

	if err := v.SetScale(v.settings.DefaultScale); err != nil {
		logger.Warn("default scale %q: %v", v.settings.DefaultScale, err)
		v.SetScaleValue(domain.DefaultScale)
	}
	v.find.SetDocument(doc)
	logger.Info("loaded %s: %d pages", source, doc.PageCount())

	v.bus.Publish(domain.Event{Type: domain.EventDocumentLoaded, Page: doc.PageCount(), Payload: source})
	v.Update()
	return nil
}

// Close tears down the open document.
func (v *Viewer) Close() error {
	v.mu.Lock()
	doc := v.doc
	v.doc = nil
	v.source = ""
	v.mu.Unlock()
	if doc == nil {
		return nil
	}

	v.find.SetDocument(nil)
	v.model.Reset()
	v.notifier.Close()
	v.bus.Publish(domain.Event{Type: domain.EventDocumentClosed})
	if err := doc.Close(); err != nil {
		return fmt.Errorf("close document: %w", err)
	}
	return nil
}

// PageCount returns the number of pages.
func (v *Viewer) PageCount() int {
	return v.model.PageCount()
}

// Info describes the open document.
func (v *Viewer) Info() (domain.DocumentInfo, error) {
	v.mu.Lock()
	doc, source := v.doc, v.source
	v.mu.Unlock()
	if doc == nil {
		return domain.DocumentInfo{}, domain.ErrNoDocument
	}

	info := domain.DocumentInfo{
		Source:      source,
		Fingerprint: doc.Fingerprint(),
		PageCount:   doc.PageCount(),
		Pages:       make([]domain.PageInfo, 0, doc.PageCount()),
	}
	for n := 1; n <= info.PageCount; n++ {
		size, _ := v.model.UnitSize(n)
		info.Pages = append(info.Pages, domain.PageInfo{Page: n, Width: size.Width, Height: size.Height})
	}
	return info, nil
}

// RenderPage renders one page at the current scale.
func (v *Viewer) RenderPage(ctx context.Context, page int) error {
	if err := v.checkPage(page); err != nil {
		return err
	}
	return v.scheduler.RenderPage(ctx, page)
}

// VisiblePages returns the visible range.
func (v *Viewer) VisiblePages() domain.VisibleRange {
	return v.model.VisibleRange()
}

// SetScale applies a numeric scale or a preset.
func (v *Viewer) SetScale(value string) error {
	preset, scale, err := domain.ParseScale(value)
	if err != nil {
		return err
	}
	if preset != domain.ScaleNone {
		page := max(v.model.CurrentPage(), 1)
		if scale, err = v.model.PresetScale(preset, page); err != nil {
			return err
		}
	}
	v.applyScale(scale, preset)
	return nil
}

// SetScaleValue sets an explicit scale.
func (v *Viewer) SetScaleValue(scale float64) {
	v.applyScale(scale, domain.ScaleNone)
}

// applyScale changes the scale keeping the current page anchored at the
// same relative position in the visible area.
func (v *Viewer) applyScale(scale float64, preset domain.ScalePreset) {
	page := v.model.CurrentPage()
	var within float64
	if page > 0 {
		within = v.layout.ScrollOffset().Y - v.layout.PageTop(page)
	}
	old := v.model.Scale()

	if !v.model.SetScale(scale, preset) {
		return
	}
	scale = v.model.Scale()
	if page > 0 {
		offset := v.layout.ScrollOffset()
		v.layout.ScrollTo(domain.Point{X: offset.X * scale / old, Y: v.layout.PageTop(page) + within*scale/old})
	}
	logger.Debug("viewer: scale %.3f -> %.3f (%s)", old, scale, preset)

	v.bus.Publish(domain.Event{Type: domain.EventScaleChanged, Scale: scale})
	v.Update()
}

// Scale returns the current display scale.
func (v *Viewer) Scale() float64 {
	return v.model.Scale()
}

// GoToPage scrolls the page's top to the top of the visible area.
func (v *Viewer) GoToPage(page int) error {
	if err := v.checkPage(page); err != nil {
		return err
	}
	v.layout.ScrollTo(domain.Point{X: v.layout.ScrollOffset().X, Y: v.layout.PageTop(page)})
	v.Update()
	return nil
}

// CurrentPage returns the most visible page.
func (v *Viewer) CurrentPage() int {
	return v.model.CurrentPage()
}

// ScrollBy scrolls the visible area.
func (v *Viewer) ScrollBy(dx, dy float64) {
	offset := v.layout.ScrollOffset()
	v.layout.ScrollTo(domain.Point{X: offset.X + dx, Y: offset.Y + dy})
	v.bus.Publish(domain.Event{Type: domain.EventScroll, Payload: v.layout.ScrollOffset()})
	v.Update()
}

// Resize changes the visible area. An active preset is recomputed.
func (v *Viewer) Resize(width, height float64) {
	v.layout.Resize(domain.Size{Width: width, Height: height})
	if preset := v.model.Preset(); preset != domain.ScaleNone && v.PageCount() > 0 {
		if scale, err := v.model.PresetScale(preset, max(v.model.CurrentPage(), 1)); err == nil {
			v.applyScale(scale, preset)
			return
		}
	}
	v.Update()
}

// ScreenToDocument converts a screen point to page document units.
func (v *Viewer) ScreenToDocument(p domain.Point, page int) (domain.Point, error) {
	return v.geometry.ScreenToDocument(p, page)
}

// DocumentToScreen converts a page document point to screen pixels.
func (v *Viewer) DocumentToScreen(p domain.Point, page int) (domain.Point, error) {
	return v.geometry.DocumentToScreen(p, page)
}

// Update re-evaluates the current page and requests a scheduling pass.
func (v *Viewer) Update() {
	if v.PageCount() == 0 {
		return
	}
	page := v.model.CurrentPage()

	v.mu.Lock()
	changed := page != v.lastPage
	v.lastPage = page
	v.mu.Unlock()

	if changed {
		v.bus.Publish(domain.Event{Type: domain.EventPageChanged, Page: page})
	}
	v.scheduler.Trigger()
}

// Run drives background rendering until ctx is done.
func (v *Viewer) Run(ctx context.Context) error {
	return v.scheduler.Run(ctx)
}

// revealMatch scrolls a selected match into view when its page is not visible.
func (v *Viewer) revealMatch(m *domain.Match) {
	if v.model.VisibleRange().Contains(m.Page) {
		return
	}
	if err := v.GoToPage(m.Page); err != nil {
		logger.Debug("viewer: reveal match on page %d: %v", m.Page, err)
	}
}

func (v *Viewer) checkPage(page int) error {
	count := v.PageCount()
	if count == 0 {
		return domain.ErrNoDocument
	}
	if page < 1 || page > count {
		return fmt.Errorf("page %d of %d: %w", page, count, domain.ErrPageOutOfRange)
	}
	return nil
}
