package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/folio/internal/core/domain"
)

type findFixture struct {
	ctrl   *FindController
	vis    *mockVisibility
	bus    *EventBus
	events *eventRecorder
	sink   *messageSink
	notify *Notifier
}

func newFindFixture(doc *mockDocument, first, last int) *findFixture {
	vis := &mockVisibility{
		visible: domain.VisibleRange{First: first, Last: last},
		current: first,
	}
	bus := NewEventBus()
	sink := &messageSink{}
	notify := NewNotifier(sink)
	notify.SetDelay(time.Millisecond)

	f := &findFixture{
		ctrl:   NewFindController(vis, bus, notify, nil),
		vis:    vis,
		bus:    bus,
		events: recordEvents(bus),
		sink:   sink,
		notify: notify,
	}
	f.ctrl.SetDocument(doc)
	return f
}

func (f *findFixture) wait(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, f.ctrl.WaitExtracted(ctx))
}

func matchKeys(ms []*domain.Match) [][2]int {
	out := make([][2]int, len(ms))
	for i, m := range ms {
		out[i] = [2]int{m.Page, m.Start}
	}
	return out
}

func TestFindController_MatchOrder(t *testing.T) {
	doc := newMockDocument(3, 100, 100).withText(
		"xxxxxcatxxxxxxxxxxxxcatxx",
		"xxxxxxxxxxcat",
		"nothing here",
	)
	f := newFindFixture(doc, 2, 2)

	f.ctrl.Find("cat", domain.FindOptions{HighlightAll: true})
	f.wait(t)

	assert.Equal(t, [][2]int{{1, 5}, {1, 20}, {2, 10}}, matchKeys(f.ctrl.Matches()))
	assert.Equal(t, []int{2, 1, 3}, doc.extractOrder())

	state, counts := f.ctrl.State()
	assert.Equal(t, domain.FindFound, state)
	assert.Equal(t, 3, counts.Current)
	assert.Equal(t, 3, counts.Total)
	assert.False(t, counts.Extracting)
}

func TestFindController_SelectionSurvivesResort(t *testing.T) {
	doc := newMockDocument(3, 100, 100).withText("cat", "cat", "cat")
	doc.pages[0].gate = make(chan struct{})
	f := newFindFixture(doc, 2, 2)

	f.ctrl.Find("cat", domain.FindOptions{})

	require.Eventually(t, func() bool { return f.ctrl.Selected() != nil }, 2*time.Second, 5*time.Millisecond)
	selected := f.ctrl.Selected()
	assert.Equal(t, 2, selected.Page)

	close(doc.pages[0].gate)
	f.wait(t)

	matches := f.ctrl.Matches()
	require.Len(t, matches, 3)
	assert.Same(t, selected, f.ctrl.Selected())
	assert.Same(t, selected, matches[1])

	_, counts := f.ctrl.State()
	assert.Equal(t, 2, counts.Current)
}

func TestFindController_WaitsForInterveningPages(t *testing.T) {
	doc := newMockDocument(4, 100, 100).withText("cat", "", "", "cat")
	doc.pages[2].gate = make(chan struct{})
	f := newFindFixture(doc, 2, 2)

	f.ctrl.Find("cat", domain.FindOptions{})

	// Page 1 has a match but lies behind the anchor page.
	require.Eventually(t, func() bool { return len(doc.extractOrder()) >= 2 }, 2*time.Second, 5*time.Millisecond)
	assert.Nil(t, f.ctrl.Selected())

	close(doc.pages[2].gate)
	f.wait(t)

	require.NotNil(t, f.ctrl.Selected())
	assert.Equal(t, 4, f.ctrl.Selected().Page)
}

func TestFindController_WrapsWhenNothingAhead(t *testing.T) {
	doc := newMockDocument(3, 100, 100).withText("cat", "", "")
	f := newFindFixture(doc, 3, 3)

	f.ctrl.Find("cat", domain.FindOptions{})
	f.wait(t)

	state, counts := f.ctrl.State()
	assert.Equal(t, domain.FindWrapped, state)
	assert.Equal(t, 1, counts.Current)
}

func TestFindController_NextPreviousWrap(t *testing.T) {
	doc := newMockDocument(3, 100, 100).withText("cat cat", "cat", "")
	f := newFindFixture(doc, 1, 1)

	f.ctrl.Find("cat", domain.FindOptions{})
	f.wait(t)

	_, counts := f.ctrl.State()
	require.Equal(t, 1, counts.Current)

	f.ctrl.FindPrevious()
	state, counts := f.ctrl.State()
	assert.Equal(t, domain.FindWrapped, state)
	assert.Equal(t, 3, counts.Current)
	assert.Equal(t, msgWrappedTop, f.notify.Last())

	f.ctrl.FindNext()
	state, counts = f.ctrl.State()
	assert.Equal(t, domain.FindWrapped, state)
	assert.Equal(t, 1, counts.Current)
	assert.Equal(t, msgWrappedBottom, f.notify.Last())

	f.ctrl.FindNext()
	state, counts = f.ctrl.State()
	assert.Equal(t, domain.FindFound, state)
	assert.Equal(t, 2, counts.Current)
	assert.Equal(t, "Match 2 of 3", f.notify.Last())
}

func TestFindController_FindAgain(t *testing.T) {
	doc := newMockDocument(2, 100, 100).withText("cat cat cat", "")
	f := newFindFixture(doc, 1, 1)

	opts := domain.FindOptions{HighlightAll: true}
	f.ctrl.Find("cat", opts)
	f.wait(t)

	f.ctrl.Find("cat", opts)
	_, counts := f.ctrl.State()
	assert.Equal(t, 2, counts.Current)

	opts.FindPrevious = true
	f.ctrl.Find("cat", opts)
	_, counts = f.ctrl.State()
	assert.Equal(t, 1, counts.Current)

	// Changing an option is a new search.
	f.ctrl.Find("cat", domain.FindOptions{HighlightAll: true, EntireWord: true})
	_, counts = f.ctrl.State()
	assert.Equal(t, 1, counts.Current)
	assert.Equal(t, 3, counts.Total)
}

func TestFindController_Options(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		query string
		opts  domain.FindOptions
		want  [][2]int
	}{
		{"case insensitive", "Cat cat CAT", "cat", domain.FindOptions{}, [][2]int{{1, 0}, {1, 4}, {1, 8}}},
		{"case sensitive", "Cat cat CAT", "cat", domain.FindOptions{CaseSensitive: true}, [][2]int{{1, 4}}},
		{"entire word", "cat concat cats cat", "cat", domain.FindOptions{EntireWord: true}, [][2]int{{1, 0}, {1, 16}}},
		{"substring", "cat concat", "cat", domain.FindOptions{}, [][2]int{{1, 0}, {1, 7}}},
		{"whitespace runs", "big    red\tdog", "big red dog", domain.FindOptions{}, [][2]int{{1, 0}}},
		{"metacharacters literal", "a.b axb", "a.b", domain.FindOptions{}, [][2]int{{1, 0}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := newMockDocument(1, 100, 100).withText(tt.text)
			f := newFindFixture(doc, 1, 1)

			f.ctrl.Find(tt.query, tt.opts)
			f.wait(t)

			assert.Equal(t, tt.want, matchKeys(f.ctrl.Matches()))
		})
	}
}

func TestFindController_PhraseAcrossLines(t *testing.T) {
	doc := newMockDocument(1, 100, 100)
	doc.pages[0].runs = []domain.TextRun{
		{Text: "hello", Rect: domain.Rect{X: 0, Y: 0, Width: 50, Height: 10}, EOL: true},
		{Text: "world", Rect: domain.Rect{X: 0, Y: 12, Width: 50, Height: 10}},
	}
	f := newFindFixture(doc, 1, 1)

	f.ctrl.Find("hello world", domain.FindOptions{HighlightAll: true})
	f.wait(t)

	matches := f.ctrl.Matches()
	require.Len(t, matches, 1)
	assert.Equal(t, 0, matches[0].Start)
	assert.Equal(t, 11, matches[0].End)

	highlights := f.ctrl.PageHighlights(1)
	require.Len(t, highlights, 2)
	assert.Equal(t, 0, highlights[0].Run)
	assert.Equal(t, 1, highlights[1].Run)
	for _, mk := range highlights {
		require.Len(t, mk.Segments, 1)
		assert.Equal(t, domain.HighlightSelected, mk.Segments[0].Kind)
	}

	rects := f.ctrl.PageHighlightRects(1)
	require.Len(t, rects, 2)
	assert.Equal(t, domain.Rect{X: 0, Y: 12, Width: 50, Height: 10}, rects[1].Rect)
}

func TestFindController_HighlightAllOff(t *testing.T) {
	doc := newMockDocument(1, 100, 100).withText("cat cat")
	f := newFindFixture(doc, 1, 1)

	f.ctrl.Find("cat", domain.FindOptions{})
	f.wait(t)

	highlights := f.ctrl.PageHighlights(1)
	require.Len(t, highlights, 1)
	assert.Equal(t, []domain.Segment{
		{Text: "cat", Kind: domain.HighlightSelected},
		{Text: " cat", Kind: domain.HighlightNone},
	}, highlights[0].Segments)
}

func TestFindController_NotFound(t *testing.T) {
	doc := newMockDocument(2, 100, 100).withText("cat", "dog")
	f := newFindFixture(doc, 1, 1)

	f.ctrl.Find("zebra", domain.FindOptions{})
	f.wait(t)

	state, counts := f.ctrl.State()
	assert.Equal(t, domain.FindNotFound, state)
	assert.Zero(t, counts.Total)
	require.Eventually(t, func() bool { return f.notify.Last() == msgNotFound }, 2*time.Second, 5*time.Millisecond)
}

func TestFindController_ExtractionFailure(t *testing.T) {
	doc := newMockDocument(3, 100, 100).withText("cat", "cat", "cat")
	doc.pages[1].textErr = errBoom
	f := newFindFixture(doc, 1, 1)

	f.ctrl.Find("cat", domain.FindOptions{})
	f.wait(t)

	assert.Equal(t, [][2]int{{1, 0}, {3, 0}}, matchKeys(f.ctrl.Matches()))

	failed := f.events.ofType(domain.EventExtractionFailed)
	require.Len(t, failed, 1)
	assert.Equal(t, 2, failed[0].Page)
	assert.ErrorIs(t, failed[0].Err, domain.ErrExtractionFailure)
	assert.ErrorIs(t, failed[0].Err, errBoom)
}

func TestExtractionOrder(t *testing.T) {
	tests := []struct {
		name    string
		visible domain.VisibleRange
		count   int
		want    []int
	}{
		{"visible then before then after", domain.VisibleRange{First: 3, Last: 4}, 6, []int{3, 4, 1, 2, 5, 6}},
		{"nothing visible", domain.VisibleRange{}, 3, []int{1, 2, 3}},
		{"last clamped", domain.VisibleRange{First: 2, Last: 9}, 3, []int{2, 3, 1}},
		{"beyond the end", domain.VisibleRange{First: 7, Last: 9}, 3, []int{1, 2, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractionOrder(tt.visible, tt.count))
		})
	}
}

func TestFindController_ExtractionOrderFollowsVisibility(t *testing.T) {
	doc := newMockDocument(6, 100, 100)
	f := newFindFixture(doc, 3, 4)

	f.ctrl.Find("anything", domain.FindOptions{})
	f.wait(t)

	assert.Equal(t, []int{3, 4, 1, 2, 5, 6}, doc.extractOrder())
}

func TestFindController_SetDocumentDiscardsResults(t *testing.T) {
	old := newMockDocument(2, 100, 100).withText("cat", "cat")
	old.pages[0].gate = make(chan struct{})
	f := newFindFixture(old, 1, 1)

	f.ctrl.Find("cat", domain.FindOptions{})

	errCh := make(chan error, 1)
	go func() { errCh <- f.ctrl.WaitExtracted(context.Background()) }()
	time.Sleep(20 * time.Millisecond)

	next := newMockDocument(1, 100, 100).withText("dog")
	f.ctrl.SetDocument(next)

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, domain.ErrNoDocument)
	case <-time.After(2 * time.Second):
		t.Fatal("WaitExtracted did not return after the document changed")
	}

	query, _ := f.ctrl.Query()
	assert.Empty(t, query)
	assert.Empty(t, f.ctrl.Matches())

	f.ctrl.Find("dog", domain.FindOptions{})
	f.wait(t)
	assert.Equal(t, [][2]int{{1, 0}}, matchKeys(f.ctrl.Matches()))
	assert.NotContains(t, old.extractOrder(), 1, "cancelled page never completed")
}

func TestFindController_EmptyQueryResets(t *testing.T) {
	doc := newMockDocument(1, 100, 100).withText("cat")
	f := newFindFixture(doc, 1, 1)

	f.ctrl.Find("cat", domain.FindOptions{})
	f.wait(t)
	require.NotEmpty(t, f.ctrl.Matches())

	f.ctrl.Find("   ", domain.FindOptions{})
	state, counts := f.ctrl.State()
	assert.Equal(t, domain.FindPending, state)
	assert.Zero(t, counts.Total)
	assert.Nil(t, f.ctrl.Selected())

	// Navigation without a query is a no-op.
	f.ctrl.FindNext()
	assert.Nil(t, f.ctrl.Selected())
}

func TestFindController_PageTextCaches(t *testing.T) {
	doc := newMockDocument(2, 100, 100).withText("first", "second")
	f := newFindFixture(doc, 1, 1)

	content, err := f.ctrl.PageText(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, "second", content.FullString)

	again, err := f.ctrl.PageText(context.Background(), 2)
	require.NoError(t, err)
	assert.Same(t, content, again)
	assert.Equal(t, []int{2}, doc.extractOrder())

	_, err = f.ctrl.PageText(context.Background(), 3)
	assert.ErrorIs(t, err, domain.ErrPageOutOfRange)

	f.ctrl.SetDocument(nil)
	_, err = f.ctrl.PageText(context.Background(), 1)
	assert.ErrorIs(t, err, domain.ErrNoDocument)
}

func TestFindController_CallbacksOutsideLock(t *testing.T) {
	doc := newMockDocument(2, 100, 100).withText("cat", "cat")
	f := newFindFixture(doc, 1, 1)

	var mu sync.Mutex
	var states []domain.FindState
	f.ctrl.OnUpdate(func(domain.FindState, domain.FindCounts) {
		// Re-entering the controller from the observer must not deadlock.
		state, _ := f.ctrl.State()
		_ = f.ctrl.Matches()
		mu.Lock()
		states = append(states, state)
		mu.Unlock()
	})

	var selected []*domain.Match
	f.ctrl.OnSelect(func(m *domain.Match) {
		mu.Lock()
		selected = append(selected, m)
		mu.Unlock()
	})

	f.ctrl.Find("cat", domain.FindOptions{})
	f.wait(t)
	f.ctrl.FindNext()

	mu.Lock()
	defer mu.Unlock()
	assert.NotEmpty(t, states)
	require.NotEmpty(t, selected)
	assert.Equal(t, 2, selected[len(selected)-1].Page)
	assert.NotEmpty(t, f.events.ofType(domain.EventFindUpdated))
}

func TestFindController_Normalize(t *testing.T) {
	doc := newMockDocument(1, 100, 100).withText("ﬁnd")
	vis := &mockVisibility{visible: domain.VisibleRange{First: 1, Last: 1}, current: 1}
	ligatures := func(s string) string {
		out := []rune{}
		for _, r := range s {
			if r == 'ﬁ' {
				out = append(out, 'f', 'i')
				continue
			}
			out = append(out, r)
		}
		return string(out)
	}
	ctrl := NewFindController(vis, NewEventBus(), nil, ligatures)
	ctrl.SetDocument(doc)

	ctrl.Find("find", domain.FindOptions{})
	require.NoError(t, ctrl.WaitExtracted(context.Background()))

	matches := ctrl.Matches()
	require.Len(t, matches, 1)
	assert.Equal(t, "find", matches[0].Text)
}

func TestFindController_FindAll(t *testing.T) {
	doc := newMockDocument(3, 100, 100).withText("cat", "dog", "cat cat")
	f := newFindFixture(doc, 1, 1)
	ctx := context.Background()

	matches, err := f.ctrl.FindAll(ctx, "cat", domain.FindOptions{})
	require.NoError(t, err)
	assert.Equal(t, [][2]int{{1, 0}, {3, 0}, {3, 4}}, matchKeys(matches))
	first := f.ctrl.Selected()

	again, err := f.ctrl.FindAll(ctx, "cat", domain.FindOptions{})
	require.NoError(t, err)
	assert.Len(t, again, 3)
	assert.Same(t, first, f.ctrl.Selected(), "repeating the query does not advance")

	_, err = f.ctrl.FindAll(ctx, "   ", domain.FindOptions{})
	assert.ErrorIs(t, err, domain.ErrSearchPattern)
}

func TestFindController_FindAllQueryReplacedMidCall(t *testing.T) {
	doc := newMockDocument(3, 100, 100).withText("cat", "dog", "cat cat")
	f := newFindFixture(doc, 1, 1)
	ctx := context.Background()

	require.NoError(t, f.ctrl.WaitExtracted(ctx))

	// Another caller replaces the query as soon as "cat" becomes active.
	var once sync.Once
	f.ctrl.OnUpdate(func(domain.FindState, domain.FindCounts) {
		if q, _ := f.ctrl.Query(); q == "cat" {
			once.Do(func() { f.ctrl.Find("dog", domain.FindOptions{}) })
		}
	})

	matches, err := f.ctrl.FindAll(ctx, "cat", domain.FindOptions{})
	require.NoError(t, err)

	assert.Equal(t, [][2]int{{1, 0}, {3, 0}, {3, 4}}, matchKeys(matches))
	assert.Eventually(t, func() bool {
		q, _ := f.ctrl.Query()
		return q == "dog"
	}, 2*time.Second, 10*time.Millisecond)
}

func TestFindController_FindAllConcurrentQueries(t *testing.T) {
	doc := newMockDocument(4, 100, 100).withText("alpha", "beta", "alpha beta", "beta")
	f := newFindFixture(doc, 1, 1)
	ctx := context.Background()

	const rounds = 200
	var wg sync.WaitGroup
	wrong := make([]int, 2)
	for i, query := range []string{"alpha", "beta"} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range rounds {
				matches, err := f.ctrl.FindAll(ctx, query, domain.FindOptions{})
				if err != nil || len(matches) == 0 {
					wrong[i]++
					continue
				}
				for _, m := range matches {
					if m.Text != query {
						wrong[i]++
						break
					}
				}
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, []int{0, 0}, wrong)
}

func TestFindController_FindAllWithoutDocument(t *testing.T) {
	ctrl := NewFindController(&mockVisibility{}, NewEventBus(), nil, nil)

	_, err := ctrl.FindAll(context.Background(), "cat", domain.FindOptions{})
	assert.ErrorIs(t, err, domain.ErrNoDocument)
}
