package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
	"github.com/custodia-labs/folio/internal/logger"
)

var schedLog = logger.Named("scheduler")

// errDocumentChanged reports a render whose document was replaced or
// closed before it completed. Its result is discarded.
var errDocumentChanged = errors.New("document changed during render")

// RenderingScheduler renders one page at a time, always choosing the most
// important unsatisfied page given the current visible range.
type RenderingScheduler struct {
	model     *ViewportModel
	target    driven.RenderTarget
	bus       *EventBus
	prerender int
	limiter   *rate.Limiter
	trigger   chan struct{}

	// renderMu serialises renders: one page is Running at a time.
	renderMu sync.Mutex

	mu     sync.Mutex
	active bool
	dirty  bool
	onIdle func()
}

// NewRenderingScheduler creates a scheduler.
// prerender is the number of pages rendered ahead beyond each end of the
// visible range; throttle is the minimum interval between passes started by Run.
func NewRenderingScheduler(
	model *ViewportModel,
	target driven.RenderTarget,
	bus *EventBus,
	prerender int,
	throttle time.Duration,
) *RenderingScheduler {
	limit := rate.Inf
	if throttle > 0 {
		limit = rate.Every(throttle)
	}
	return &RenderingScheduler{
		model:     model,
		target:    target,
		bus:       bus,
		prerender: prerender,
		limiter:   rate.NewLimiter(limit, 1),
		trigger:   make(chan struct{}, 1),
	}
}

// OnIdle registers a callback fired when a pass finds nothing left to render.
func (s *RenderingScheduler) OnIdle(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onIdle = fn
}

// NextPage returns the highest priority page needing a render, or 0.
// Pages in skip are ignored.
//
// Visible pages come first, in scroll direction. Then up to prerender pages
// after the last visible page, then up to prerender pages before the first.
func (s *RenderingScheduler) NextPage(visible domain.VisibleRange, skip map[int]bool) int {
	if visible.Empty() {
		return 0
	}
	count := s.model.PageCount()
	needs := func(n int) bool {
		return n >= 1 && n <= count && !skip[n] && s.model.NeedsRender(n)
	}

	if visible.Direction == domain.ScrollUp {
		for n := visible.Last; n >= visible.First; n-- {
			if needs(n) {
				return n
			}
		}
	} else {
		for n := visible.First; n <= visible.Last; n++ {
			if needs(n) {
				return n
			}
		}
	}

	for i := 1; i <= s.prerender; i++ {
		if needs(visible.Last + i) {
			return visible.Last + i
		}
	}
	for i := 1; i <= s.prerender; i++ {
		if needs(visible.First - i) {
			return visible.First - i
		}
	}
	return 0
}

// RunScheduling renders pages until every page in and around the visible
// range is satisfied, then fires idle.
//
// The first selection uses visible; after each render the visible range is
// recomputed from the model. A page that fails is reset to Initial and not
// retried until the next pass. A call made while a pass is running does not
// start another pipeline: it makes the running pass look again before idling.
func (s *RenderingScheduler) RunScheduling(ctx context.Context, visible domain.VisibleRange) error {
	s.mu.Lock()
	if s.active {
		s.dirty = true
		s.mu.Unlock()
		return nil
	}
	s.active = true
	s.dirty = false
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.active = false
		s.mu.Unlock()
	}()

	failed := make(map[int]bool)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		n := s.NextPage(visible, failed)
		if n == 0 {
			s.mu.Lock()
			if s.dirty {
				s.dirty = false
				s.mu.Unlock()
				failed = make(map[int]bool)
				visible = s.model.VisibleRange()
				continue
			}
			s.active = false
			idle := s.onIdle
			s.mu.Unlock()

			schedLog.Debug("idle")
			if idle != nil {
				idle()
			}
			s.bus.Publish(domain.Event{Type: domain.EventRenderingIdle, Scale: s.model.Scale()})
			return nil
		}

		if err := s.RenderPage(ctx, n); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			if errors.Is(err, errDocumentChanged) {
				// Failures belonged to the old document.
				failed = make(map[int]bool)
			} else {
				failed[n] = true
			}
		}
		visible = s.model.VisibleRange()
	}
}

// RenderPage renders one page at the current scale and waits for it.
// Failures are isolated to the page: it goes back to Initial, the error is
// logged and published, and returned as a *domain.PageError.
//
// If the document is replaced or closed while the page renders, the result
// is dropped: no state changes, no events, and errDocumentChanged is returned.
func (s *RenderingScheduler) RenderPage(ctx context.Context, n int) error {
	s.renderMu.Lock()
	defer s.renderMu.Unlock()

	gen := s.model.Generation()
	page, unit, err := s.model.Page(ctx, n)
	if err != nil {
		return s.fail(n, gen, err)
	}

	scale := s.model.Scale()
	vp := unit.WithScale(scale)
	if !s.model.markRunning(n, gen) {
		return fmt.Errorf("page %d: %w", n, errDocumentChanged)
	}
	schedLog.Debug("render page %d at %.3f (%.0fx%.0f)", n, scale, vp.Width, vp.Height)

	surface, err := s.target.Surface(n, vp.Size())
	if err != nil {
		return s.fail(n, gen, fmt.Errorf("allocate surface: %w", err))
	}
	if err := page.RenderInto(ctx, surface, vp); err != nil {
		return s.fail(n, gen, err)
	}

	runs, err := page.TextRuns(ctx)
	if err != nil {
		schedLog.Warn("text layer for page %d: %v", n, err)
	}

	if !s.model.markFinished(n, gen, scale) {
		schedLog.Debug("drop render of page %d: document changed", n)
		return fmt.Errorf("page %d: %w", n, errDocumentChanged)
	}
	s.bus.Publish(domain.Event{Type: domain.EventPageRendered, Page: n, Scale: scale})
	if err == nil {
		s.bus.Publish(domain.Event{Type: domain.EventTextLayerReady, Page: n, Scale: scale, Payload: runs})
	}
	return nil
}

func (s *RenderingScheduler) fail(n int, gen uint64, err error) error {
	if !s.model.markFailed(n, gen) && gen != s.model.Generation() {
		return fmt.Errorf("page %d: %w", n, errDocumentChanged)
	}
	pageErr := domain.NewPageError(domain.ErrRenderFailure, n, err)
	if !errors.Is(err, context.Canceled) {
		log.Printf("scheduler: %v", pageErr)
	}
	s.bus.Publish(domain.Event{Type: domain.EventPageRenderFailed, Page: n, Err: pageErr})
	return pageErr
}

// Trigger requests a scheduling pass from Run. Triggers made before the
// pass starts are coalesced into it.
func (s *RenderingScheduler) Trigger() {
	select {
	case s.trigger <- struct{}{}:
	default:
	}
}

// Run executes scheduling passes on Trigger until ctx is done.
// Passes start at most once per throttle interval, so a burst of scale
// changes costs one re-render pass instead of one per change.
func (s *RenderingScheduler) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.trigger:
		}

		if err := s.limiter.Wait(ctx); err != nil {
			return ctx.Err()
		}
		// Pick up triggers that arrived while throttled.
		select {
		case <-s.trigger:
		default:
		}

		if err := s.RunScheduling(ctx, s.model.VisibleRange()); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Printf("scheduler: pass failed: %v", err)
		}
	}
}
