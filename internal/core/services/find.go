package services

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
	"github.com/custodia-labs/folio/internal/core/ports/driving"
	"github.com/custodia-labs/folio/internal/logger"
)

var findLog = logger.Named("find")

// Ensure FindController implements the interface.
var _ driving.FindService = (*FindController)(nil)

// Status messages announced through the notifier.
const (
	msgNotFound      = "Phrase not found"
	msgWrappedBottom = "Reached end of document, continued from beginning"
	msgWrappedTop    = "Reached top of document, continued from bottom"
)

// VisibilitySource reports which pages the user is looking at.
type VisibilitySource interface {
	VisibleRange() domain.VisibleRange
	CurrentPage() int
}

// FindController searches document text incrementally.
//
// Text is extracted lazily by one goroutine per document, started by the
// first non-empty query: visible pages first, then pages before the visible
// range, then pages after, each group ascending. Every extracted page is
// searched at once and its matches merged, so results grow while extraction
// runs. The selected match is held by pointer and survives re-sorting.
type FindController struct {
	view      VisibilitySource
	bus       *EventBus
	notifier  *Notifier
	normalize func(string) string

	mu         sync.Mutex
	doc        driven.Document
	generation uint64
	cancel     context.CancelFunc
	texts      map[int]*domain.PageTextContent
	failed     map[int]bool
	extracting bool
	extracted  bool
	done       chan struct{}

	query   string
	opts    domain.FindOptions
	pattern *regexp.Regexp

	matches     []*domain.Match
	pageMatches map[int][]*domain.Match
	selected    *domain.Match
	wrapped     bool

	// pendingSelect is set while a new query waits for a match to select.
	pendingSelect bool
	anchorPage    int

	// snapSeq numbers snapshots; emitted is the newest one delivered.
	// Older snapshots reaching emit late are dropped.
	snapSeq      uint64
	emitted      uint64
	lastState    domain.FindState
	lastCounts   domain.FindCounts
	lastSelected *domain.Match

	onUpdate func(domain.FindState, domain.FindCounts)
	onSelect func(*domain.Match)
}

// NewFindController creates a find controller.
// normalize is applied to run text and queries before matching; it may be nil.
func NewFindController(view VisibilitySource, bus *EventBus, notifier *Notifier, normalize func(string) string) *FindController {
	c := &FindController{
		view:      view,
		bus:       bus,
		notifier:  notifier,
		normalize: normalize,
	}
	c.resetLocked()
	return c
}

// SetDocument switches to doc (nil to close). Caches and match state are
// dropped, and results still arriving for the previous document are ignored.
func (c *FindController) SetDocument(doc driven.Document) {
	c.mu.Lock()
	c.doc = doc
	c.resetLocked()
	c.query = ""
	c.pattern = nil
	update := c.snapshotLocked()
	c.mu.Unlock()

	c.emit(update, false)
}

// resetLocked clears per-document state and bumps the generation.
func (c *FindController) resetLocked() {
	c.generation++
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.texts = make(map[int]*domain.PageTextContent)
	c.failed = make(map[int]bool)
	if c.done != nil && !c.extracted {
		close(c.done)
	}
	c.extracting = false
	c.extracted = false
	c.done = make(chan struct{})
	c.clearMatchesLocked()
}

func (c *FindController) clearMatchesLocked() {
	c.matches = nil
	c.pageMatches = make(map[int][]*domain.Match)
	c.selected = nil
	c.wrapped = false
	c.pendingSelect = false
}

// OnUpdate registers the state observer.
func (c *FindController) OnUpdate(fn func(domain.FindState, domain.FindCounts)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onUpdate = fn
}

// OnSelect registers a callback fired when a different match is selected.
func (c *FindController) OnSelect(fn func(*domain.Match)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onSelect = fn
}

// Find runs a query. Repeating the active query and options moves to the
// next match, or the previous one when opts.FindPrevious is set.
func (c *FindController) Find(query string, opts domain.FindOptions) {
	if c.normalize != nil {
		query = c.normalize(query)
	}
	query = strings.TrimSpace(query)

	c.mu.Lock()
	if query == "" {
		c.query = ""
		c.pattern = nil
		c.clearMatchesLocked()
		update := c.snapshotLocked()
		c.mu.Unlock()
		c.emit(update, false)
		return
	}

	if query == c.query && sameSearch(opts, c.opts) {
		c.opts.FindPrevious = opts.FindPrevious
		c.mu.Unlock()
		c.step(!opts.FindPrevious)
		return
	}

	logger.Section("Find")
	logger.Debug("query=%q case_sensitive=%v entire_word=%v", query, opts.CaseSensitive, opts.EntireWord)

	c.query = query
	c.opts = opts
	c.clearMatchesLocked()
	pattern, err := buildPattern(query, opts)
	if err != nil {
		log.Printf("find: %v", err)
	}
	c.pattern = pattern

	pages := make([]int, 0, len(c.texts))
	for n := range c.texts {
		pages = append(pages, n)
	}
	sort.Ints(pages)
	for _, n := range pages {
		c.searchPageLocked(n)
	}
	c.sortMatchesLocked()

	c.pendingSelect = true
	c.anchorPage = c.view.CurrentPage()
	c.trySelectLocked()
	c.startExtractionLocked()
	findLog.Debug("%d matches in %d extracted pages", len(c.matches), len(c.texts))

	update := c.snapshotLocked()
	c.mu.Unlock()
	c.emit(update, true)
}

// FindNext selects the next match, wrapping to the first.
func (c *FindController) FindNext() {
	c.step(true)
}

// FindPrevious selects the previous match, wrapping to the last.
func (c *FindController) FindPrevious() {
	c.step(false)
}

func (c *FindController) step(forward bool) {
	c.mu.Lock()
	if c.query == "" {
		c.mu.Unlock()
		return
	}

	c.pendingSelect = false
	c.wrapped = false
	c.opts.FindPrevious = !forward
	if n := len(c.matches); n > 0 {
		idx := c.indexLocked(c.selected)
		switch {
		case idx < 0 && forward:
			idx = 0
		case idx < 0:
			idx = n - 1
		case forward:
			idx++
		default:
			idx--
		}
		if idx >= n {
			idx, c.wrapped = 0, true
		} else if idx < 0 {
			idx, c.wrapped = n-1, true
		}
		c.selected = c.matches[idx]
	}

	update := c.snapshotLocked()
	c.mu.Unlock()
	c.emit(update, true)
}

// State returns the current state and counts.
func (c *FindController) State() (domain.FindState, domain.FindCounts) {
	c.mu.Lock()
	defer c.mu.Unlock()
	u := c.snapshotLocked()
	return u.state, u.counts
}

// Query returns the active query and options.
func (c *FindController) Query() (string, domain.FindOptions) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.query, c.opts
}

// Matches returns a copy of the known matches in (page, start) order.
// The pointers are shared with the controller.
func (c *FindController) Matches() []*domain.Match {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*domain.Match(nil), c.matches...)
}

// Selected returns the selected match, or nil.
func (c *FindController) Selected() *domain.Match {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selected
}

// PageHighlights returns highlight markup for a page's runs.
func (c *FindController) PageHighlights(page int) []domain.RunMarkup {
	c.mu.Lock()
	defer c.mu.Unlock()
	return PlaceHighlights(c.texts[page], c.pageMatches[page], c.selected, c.opts.HighlightAll)
}

// PageHighlightRects returns the highlighted areas of a page in document units.
func (c *FindController) PageHighlightRects(page int) []domain.HighlightRect {
	c.mu.Lock()
	defer c.mu.Unlock()
	content := c.texts[page]
	if content == nil {
		return nil
	}
	return HighlightRects(content, PlaceHighlights(content, c.pageMatches[page], c.selected, c.opts.HighlightAll))
}

// PageText returns a page's text, extracting and caching it if needed.
func (c *FindController) PageText(ctx context.Context, page int) (*domain.PageTextContent, error) {
	c.mu.Lock()
	if content, ok := c.texts[page]; ok {
		c.mu.Unlock()
		return content, nil
	}
	doc, gen := c.doc, c.generation
	c.mu.Unlock()

	if doc == nil {
		return nil, domain.ErrNoDocument
	}
	if page < 1 || page > doc.PageCount() {
		return nil, fmt.Errorf("page %d: %w", page, domain.ErrPageOutOfRange)
	}

	runs, err := fetchRuns(ctx, doc, page)
	if err != nil {
		return nil, domain.NewPageError(domain.ErrExtractionFailure, page, err)
	}
	content := domain.NewPageTextContent(page, runs, c.normalize)

	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		return content, nil
	}
	if cached, ok := c.texts[page]; ok {
		c.mu.Unlock()
		return cached, nil
	}
	c.storePageLocked(page, content)
	update := c.snapshotLocked()
	c.mu.Unlock()

	c.emit(update, false)
	return content, nil
}

// FindAll extracts every page, runs query and returns all of its matches.
// An identical active query is kept rather than advanced. The result always
// belongs to query, even when other callers change the active query
// concurrently; it then holds fresh matches not shared with the controller.
func (c *FindController) FindAll(ctx context.Context, query string, opts domain.FindOptions) ([]*domain.Match, error) {
	normalized := query
	if c.normalize != nil {
		normalized = c.normalize(query)
	}
	normalized = strings.TrimSpace(normalized)
	pattern, err := buildPattern(normalized, opts)
	if err != nil {
		return nil, err
	}
	if err := c.WaitExtracted(ctx); err != nil {
		return nil, err
	}

	active, activeOpts := c.Query()
	if normalized != active || !sameSearch(opts, activeOpts) {
		c.Find(query, opts)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.query == normalized && sameSearch(opts, c.opts) {
		return append([]*domain.Match(nil), c.matches...), nil
	}
	findLog.Debug("active query changed under FindAll(%q), scanning cache", normalized)
	pages := make([]int, 0, len(c.texts))
	for n := range c.texts {
		pages = append(pages, n)
	}
	sort.Ints(pages)
	var matches []*domain.Match
	for _, n := range pages {
		matches = append(matches, matchPage(pattern, n, c.texts[n].FullString)...)
	}
	return matches, nil
}

// WaitExtracted starts extraction if needed and blocks until every page has
// been extracted or ctx is done.
func (c *FindController) WaitExtracted(ctx context.Context) error {
	c.mu.Lock()
	if c.doc == nil {
		c.mu.Unlock()
		return domain.ErrNoDocument
	}
	c.startExtractionLocked()
	done, gen := c.done, c.generation
	c.mu.Unlock()

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		return fmt.Errorf("document changed: %w", domain.ErrNoDocument)
	}
	return nil
}

// Close stops extraction.
func (c *FindController) Close() {
	c.SetDocument(nil)
}

// startExtractionLocked launches the extraction goroutine once per document.
func (c *FindController) startExtractionLocked() {
	if c.doc == nil || c.extracting || c.extracted {
		return
	}
	c.extracting = true

	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	order := extractionOrder(c.view.VisibleRange(), c.doc.PageCount())
	go c.extract(ctx, c.doc, c.generation, order, c.done)
}

// extractionOrder lists visible pages, then pages before them, then pages
// after them, each ascending.
func extractionOrder(visible domain.VisibleRange, count int) []int {
	order := make([]int, 0, count)
	if visible.Empty() || visible.First > count {
		for n := 1; n <= count; n++ {
			order = append(order, n)
		}
		return order
	}
	last := min(visible.Last, count)
	for n := visible.First; n <= last; n++ {
		order = append(order, n)
	}
	for n := 1; n < visible.First; n++ {
		order = append(order, n)
	}
	for n := last + 1; n <= count; n++ {
		order = append(order, n)
	}
	return order
}

func (c *FindController) extract(ctx context.Context, doc driven.Document, gen uint64, order []int, done chan struct{}) {
	findLog.Debug("extracting %d pages", len(order))

	for _, n := range order {
		c.mu.Lock()
		_, cached := c.texts[n]
		stale := gen != c.generation
		c.mu.Unlock()
		if stale {
			return
		}
		if cached {
			continue
		}

		runs, err := fetchRuns(ctx, doc, n)

		c.mu.Lock()
		if gen != c.generation {
			c.mu.Unlock()
			return
		}
		if err != nil {
			c.failed[n] = true
			c.mu.Unlock()

			pageErr := domain.NewPageError(domain.ErrExtractionFailure, n, err)
			log.Printf("find: %v", pageErr)
			c.bus.Publish(domain.Event{Type: domain.EventExtractionFailed, Page: n, Err: pageErr})
			continue
		}
		if _, ok := c.texts[n]; !ok {
			c.storePageLocked(n, domain.NewPageTextContent(n, runs, c.normalize))
		}
		update := c.snapshotLocked()
		c.mu.Unlock()

		c.emit(update, false)
	}

	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		return
	}
	c.extracting = false
	c.extracted = true
	close(done)
	c.trySelectLocked()
	update := c.snapshotLocked()
	failed := len(c.failed)
	c.mu.Unlock()

	findLog.Debug("extraction complete, %d failed", failed)
	c.emit(update, false)
}

func fetchRuns(ctx context.Context, doc driven.Document, n int) ([]domain.TextRun, error) {
	page, err := doc.Page(ctx, n)
	if err != nil {
		return nil, err
	}
	return page.TextRuns(ctx)
}

// storePageLocked caches content and, with an active query, merges the
// page's matches.
func (c *FindController) storePageLocked(n int, content *domain.PageTextContent) {
	c.texts[n] = content
	if c.query == "" {
		return
	}
	c.searchPageLocked(n)
	c.sortMatchesLocked()
	c.trySelectLocked()
}

// searchPageLocked appends the matches of one page. A page is never
// searched twice for the same query.
func (c *FindController) searchPageLocked(n int) {
	if c.pattern == nil {
		return
	}
	if _, done := c.pageMatches[n]; done {
		return
	}
	ms := matchPage(c.pattern, n, c.texts[n].FullString)
	c.pageMatches[n] = ms
	c.matches = append(c.matches, ms...)
}

// matchPage returns the non-empty matches of pattern in a page's text.
func matchPage(pattern *regexp.Regexp, n int, text string) []*domain.Match {
	locs := pattern.FindAllStringIndex(text, -1)
	ms := make([]*domain.Match, 0, len(locs))
	for _, loc := range locs {
		if loc[1] == loc[0] {
			continue
		}
		ms = append(ms, &domain.Match{Page: n, Start: loc[0], End: loc[1], Text: text[loc[0]:loc[1]]})
	}
	return ms
}

func (c *FindController) sortMatchesLocked() {
	sort.SliceStable(c.matches, func(i, j int) bool {
		return c.matches[i].Less(c.matches[j])
	})
}

// indexLocked finds m by identity.
func (c *FindController) indexLocked(m *domain.Match) int {
	if m == nil {
		return -1
	}
	i := sort.Search(len(c.matches), func(i int) bool { return !c.matches[i].Less(m) })
	for ; i < len(c.matches); i++ {
		if c.matches[i] == m {
			return i
		}
	}
	return -1
}

// trySelectLocked resolves the selection of a new query: the first match on
// or after the anchor page, or the last on or before it when searching
// backwards. A candidate is taken only once every page between the anchor
// and it has been extracted; otherwise a closer match could still appear.
// When extraction is complete and nothing lies in the search direction, the
// selection wraps.
func (c *FindController) trySelectLocked() {
	if !c.pendingSelect || len(c.matches) == 0 {
		return
	}
	backward := c.opts.FindPrevious

	var candidate *domain.Match
	if !backward {
		for _, m := range c.matches {
			if m.Page >= c.anchorPage {
				candidate = m
				break
			}
		}
	} else {
		for i := len(c.matches) - 1; i >= 0; i-- {
			if c.matches[i].Page <= c.anchorPage {
				candidate = c.matches[i]
				break
			}
		}
	}

	if candidate != nil {
		lo, hi := c.anchorPage, candidate.Page
		if backward {
			lo, hi = candidate.Page, c.anchorPage
		}
		if !c.extractedRangeLocked(lo, hi) {
			return
		}
		c.selected = candidate
		c.pendingSelect = false
		return
	}

	if c.extracted {
		if backward {
			c.selected = c.matches[len(c.matches)-1]
		} else {
			c.selected = c.matches[0]
		}
		c.wrapped = true
		c.pendingSelect = false
	}
}

// extractedRangeLocked reports whether pages lo..hi have all been processed.
func (c *FindController) extractedRangeLocked(lo, hi int) bool {
	if c.extracted {
		return true
	}
	for n := lo; n <= hi; n++ {
		if _, ok := c.texts[n]; !ok && !c.failed[n] {
			return false
		}
	}
	return true
}

type findUpdate struct {
	seq      uint64
	state    domain.FindState
	counts   domain.FindCounts
	selected *domain.Match
}

func (c *FindController) snapshotLocked() findUpdate {
	c.snapSeq++
	u := findUpdate{
		seq: c.snapSeq,
		counts: domain.FindCounts{
			Total:      len(c.matches),
			Extracting: c.extracting,
		},
		selected: c.selected,
	}
	switch {
	case c.query == "":
		u.state = domain.FindPending
	case c.selected != nil:
		u.counts.Current = c.indexLocked(c.selected) + 1
		u.state = domain.FindFound
		if c.wrapped {
			u.state = domain.FindWrapped
		}
	case len(c.matches) == 0 && c.extracted:
		u.state = domain.FindNotFound
	default:
		u.state = domain.FindPending
	}
	return u
}

// emit delivers an update outside the lock. User actions always announce;
// background progress announces only when the visible result changed.
func (c *FindController) emit(u findUpdate, userAction bool) {
	c.mu.Lock()
	if u.seq <= c.emitted {
		c.mu.Unlock()
		return
	}
	c.emitted = u.seq
	onUpdate, onSelect := c.onUpdate, c.onSelect
	changed := u.state != c.lastState || u.counts.Current != c.lastCounts.Current ||
		(u.counts.Total != c.lastCounts.Total && u.selected != nil)
	prevSelected := c.lastSelected
	c.lastState, c.lastCounts, c.lastSelected = u.state, u.counts, u.selected
	backward := c.opts.FindPrevious
	c.mu.Unlock()

	if onUpdate != nil {
		onUpdate(u.state, u.counts)
	}
	c.bus.Publish(domain.Event{
		Type:    domain.EventFindUpdated,
		Payload: domain.FindUpdate{State: u.state, Counts: u.counts},
	})
	if onSelect != nil && u.selected != nil && (u.selected != prevSelected || userAction) {
		onSelect(u.selected)
	}
	if c.notifier != nil && (userAction || changed) {
		if msg := statusMessage(u, backward); msg != "" || userAction {
			c.notifier.Announce(msg)
		}
	}
}

func statusMessage(u findUpdate, backward bool) string {
	switch u.state {
	case domain.FindFound:
		return fmt.Sprintf("Match %d of %d", u.counts.Current, u.counts.Total)
	case domain.FindWrapped:
		if backward {
			return msgWrappedTop
		}
		return msgWrappedBottom
	case domain.FindNotFound:
		return msgNotFound
	default:
		return ""
	}
}

// sameSearch reports whether two option sets match text identically.
func sameSearch(a, b domain.FindOptions) bool {
	return a.CaseSensitive == b.CaseSensitive && a.EntireWord == b.EntireWord && a.HighlightAll == b.HighlightAll
}

// buildPattern compiles a query. Whitespace runs in the query match any
// whitespace; everything else is literal.
func buildPattern(query string, opts domain.FindOptions) (*regexp.Regexp, error) {
	fields := strings.Fields(query)
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: empty query", domain.ErrSearchPattern)
	}
	for i, f := range fields {
		fields[i] = regexp.QuoteMeta(f)
	}
	expr := strings.Join(fields, `\s+`)
	if opts.EntireWord {
		expr = `\b` + expr + `\b`
	}
	if !opts.CaseSensitive {
		expr = `(?i)` + expr
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSearchPattern, err)
	}
	return re, nil
}
