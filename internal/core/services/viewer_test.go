package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/folio/internal/adapters/driven/layout"
	"github.com/custodia-labs/folio/internal/core/domain"
)

type viewerFixture struct {
	viewer *Viewer
	target *mockTarget
	docs   map[string]*mockDocument
	events *eventRecorder
	sink   *messageSink
}

// newViewerFixture creates a viewer with a 540x400 visible area. The loader
// knows "book.pdf" (three 500x700 pages), "wide.pdf" (one 800x500 page) and
// "empty.pdf" (no pages).
func newViewerFixture(t *testing.T) *viewerFixture {
	t.Helper()
	docs := map[string]*mockDocument{
		"book.pdf":  newMockDocument(3, 500, 700).withText("alpha", "beta", "needle in a haystack"),
		"wide.pdf":  newMockDocument(1, 800, 500),
		"empty.pdf": newMockDocument(0, 500, 700),
	}
	docs["wide.pdf"].fingerprint = "wide"
	target := newMockTarget()
	sink := &messageSink{}

	l := layout.NewVertical(0)
	v := NewViewer(ViewerDeps{
		Loader:    &mockLoader{docs: docs},
		Layout:    l,
		Target:    target,
		Announcer: sink,
	}, domain.ViewerSettings{DefaultScale: "auto", PreRenderPages: 2})
	v.Resize(540, 400)

	return &viewerFixture{
		viewer: v,
		target: target,
		docs:   docs,
		events: recordEvents(v.Bus()),
		sink:   sink,
	}
}

func TestViewer_Load(t *testing.T) {
	f := newViewerFixture(t)

	require.NoError(t, f.viewer.Load(context.Background(), "book.pdf"))

	assert.Equal(t, 3, f.viewer.PageCount())
	assert.Equal(t, "book.pdf", f.viewer.Source())
	assert.Equal(t, 1.0, f.viewer.Scale())
	assert.Equal(t, 1, f.viewer.CurrentPage())
	assert.Equal(t, domain.ScaleAuto, f.viewer.Model().Preset())

	loaded := f.events.ofType(domain.EventDocumentLoaded)
	require.Len(t, loaded, 1)
	assert.Equal(t, 3, loaded[0].Page)
	assert.Len(t, f.events.ofType(domain.EventPageChanged), 1)
}

func TestViewer_Info(t *testing.T) {
	f := newViewerFixture(t)

	_, err := f.viewer.Info()
	assert.ErrorIs(t, err, domain.ErrNoDocument)

	require.NoError(t, f.viewer.Load(context.Background(), "wide.pdf"))
	info, err := f.viewer.Info()
	require.NoError(t, err)
	assert.Equal(t, domain.DocumentInfo{
		Source:      "wide.pdf",
		Fingerprint: "wide",
		PageCount:   1,
		Pages:       []domain.PageInfo{{Page: 1, Width: 800, Height: 500}},
	}, info)
}

func TestViewer_LoadFailures(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{"missing file", "missing.pdf"},
		{"no pages", "empty.pdf"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newViewerFixture(t)

			err := f.viewer.Load(context.Background(), tt.source)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrDocumentLoad)
			assert.Zero(t, f.viewer.PageCount())
			assert.Nil(t, f.viewer.Document())
			assert.Empty(t, f.events.ofType(domain.EventDocumentLoaded))
		})
	}

	f := newViewerFixture(t)
	_ = f.viewer.Load(context.Background(), "empty.pdf")
	assert.True(t, f.docs["empty.pdf"].closed)
}

func TestViewer_LoadReplacesDocument(t *testing.T) {
	f := newViewerFixture(t)
	require.NoError(t, f.viewer.Load(context.Background(), "book.pdf"))
	require.NoError(t, f.viewer.Load(context.Background(), "wide.pdf"))

	assert.True(t, f.docs["book.pdf"].closed)
	assert.Equal(t, 1, f.viewer.PageCount())
	assert.Len(t, f.events.ofType(domain.EventDocumentClosed), 1)
}

func TestViewer_ScalePresets(t *testing.T) {
	tests := []struct {
		name   string
		source string
		value  string
		want   float64
	}{
		{"page width", "book.pdf", "page-width", 1.0},
		{"page fit", "book.pdf", "page-fit", 395.0 / 700.0},
		{"page actual", "book.pdf", "page-actual", 1.0},
		{"auto portrait", "book.pdf", "auto", 1.0},
		{"auto landscape", "wide.pdf", "auto", 500.0 / 800.0},
		{"percent", "book.pdf", "150%", 1.5},
		{"number", "book.pdf", "0.5", 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newViewerFixture(t)
			require.NoError(t, f.viewer.Load(context.Background(), tt.source))

			require.NoError(t, f.viewer.SetScale(tt.value))
			assert.InDelta(t, tt.want, f.viewer.Scale(), 1e-9)
		})
	}
}

func TestViewer_SetScaleInvalid(t *testing.T) {
	f := newViewerFixture(t)
	require.NoError(t, f.viewer.Load(context.Background(), "book.pdf"))

	err := f.viewer.SetScale("bogus")
	assert.ErrorIs(t, err, domain.ErrInvalidScale)
	assert.Equal(t, 1.0, f.viewer.Scale())
}

func TestViewer_ScaleKeepsPageAnchored(t *testing.T) {
	f := newViewerFixture(t)
	require.NoError(t, f.viewer.Load(context.Background(), "book.pdf"))
	require.NoError(t, f.viewer.GoToPage(2))

	f.viewer.SetScaleValue(2)

	assert.Equal(t, 2.0, f.viewer.Scale())
	assert.Equal(t, 2, f.viewer.CurrentPage())
	assert.Equal(t, domain.ScaleNone, f.viewer.Model().Preset())

	changed := f.events.ofType(domain.EventScaleChanged)
	require.NotEmpty(t, changed)
	assert.Equal(t, 2.0, changed[len(changed)-1].Scale)
}

func TestViewer_ResizeRecomputesPreset(t *testing.T) {
	f := newViewerFixture(t)
	require.NoError(t, f.viewer.Load(context.Background(), "book.pdf"))
	require.NoError(t, f.viewer.SetScale("page-width"))

	f.viewer.Resize(1040, 400)
	assert.InDelta(t, 2.0, f.viewer.Scale(), 1e-9)

	f.viewer.SetScaleValue(1)
	f.viewer.Resize(540, 400)
	assert.Equal(t, 1.0, f.viewer.Scale(), "explicit scale is not recomputed")
}

func TestViewer_GoToPage(t *testing.T) {
	f := newViewerFixture(t)
	require.NoError(t, f.viewer.Load(context.Background(), "book.pdf"))

	require.NoError(t, f.viewer.GoToPage(3))
	assert.Equal(t, 3, f.viewer.CurrentPage())
	visible := f.viewer.VisiblePages()
	assert.Equal(t, 3, visible.First)
	assert.Equal(t, 3, visible.Last)

	changed := f.events.ofType(domain.EventPageChanged)
	require.NotEmpty(t, changed)
	assert.Equal(t, 3, changed[len(changed)-1].Page)

	assert.ErrorIs(t, f.viewer.GoToPage(0), domain.ErrPageOutOfRange)
	assert.ErrorIs(t, f.viewer.GoToPage(4), domain.ErrPageOutOfRange)
}

func TestViewer_ScrollBy(t *testing.T) {
	f := newViewerFixture(t)
	require.NoError(t, f.viewer.Load(context.Background(), "book.pdf"))

	f.viewer.ScrollBy(0, 650)
	assert.Equal(t, 2, f.viewer.CurrentPage())
	assert.Equal(t, domain.ScrollDown, f.viewer.Model().Direction())

	f.viewer.ScrollBy(0, -600)
	assert.Equal(t, 1, f.viewer.CurrentPage())
	assert.Equal(t, domain.ScrollUp, f.viewer.Model().Direction())

	assert.Len(t, f.events.ofType(domain.EventScroll), 2)
}

func TestViewer_Coordinates(t *testing.T) {
	f := newViewerFixture(t)
	require.NoError(t, f.viewer.Load(context.Background(), "book.pdf"))
	f.viewer.SetScaleValue(0.5)
	require.NoError(t, f.viewer.GoToPage(2))

	doc, err := f.viewer.ScreenToDocument(domain.Point{X: 10, Y: 20}, 2)
	require.NoError(t, err)
	assert.Equal(t, domain.Point{X: 20, Y: 40}, doc)

	screen, err := f.viewer.DocumentToScreen(doc, 2)
	require.NoError(t, err)
	assert.Equal(t, domain.Point{X: 10, Y: 20}, screen)
}

func TestViewer_RenderPage(t *testing.T) {
	f := newViewerFixture(t)

	assert.ErrorIs(t, f.viewer.RenderPage(context.Background(), 1), domain.ErrNoDocument)

	require.NoError(t, f.viewer.Load(context.Background(), "book.pdf"))
	require.NoError(t, f.viewer.RenderPage(context.Background(), 2))

	f.target.mu.Lock()
	surface := f.target.surfaces[2]
	f.target.mu.Unlock()
	require.NotNil(t, surface)
	assert.Equal(t, domain.Size{Width: 500, Height: 700}, surface.size)
	assert.Equal(t, domain.RenderFinished, f.viewer.Model().State(2))

	assert.ErrorIs(t, f.viewer.RenderPage(context.Background(), 9), domain.ErrPageOutOfRange)
}

func TestViewer_ReloadDuringRenderDropsResult(t *testing.T) {
	f := newViewerFixture(t)
	ctx := context.Background()
	require.NoError(t, f.viewer.Load(ctx, "book.pdf"))

	var reloadErr error
	f.docs["book.pdf"].pages[0].onRender = func() {
		reloadErr = f.viewer.Load(ctx, "wide.pdf")
	}

	err := f.viewer.RenderPage(ctx, 1)
	require.NoError(t, reloadErr)
	assert.ErrorIs(t, err, errDocumentChanged)

	model := f.viewer.Model()
	assert.NotEqual(t, domain.RenderFinished, model.State(1))
	assert.False(t, model.Satisfied(1))
	assert.True(t, model.NeedsRender(1))
	assert.Empty(t, f.events.ofType(domain.EventPageRendered))
	assert.Empty(t, f.events.ofType(domain.EventPageRenderFailed))

	// The replacement document still gets drawn.
	require.NoError(t, f.viewer.RenderPage(ctx, 1))
	assert.Equal(t, []int{1}, f.docs["wide.pdf"].renderOrder())
	assert.True(t, model.Satisfied(1))
}

func TestViewer_RunRendersToIdle(t *testing.T) {
	f := newViewerFixture(t)
	require.NoError(t, f.viewer.Load(context.Background(), "book.pdf"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = f.viewer.Run(ctx) }()

	model := f.viewer.Model()
	require.Eventually(t, func() bool {
		return model.Satisfied(1) && model.Satisfied(2) && model.Satisfied(3)
	}, 2*time.Second, 10*time.Millisecond)
	require.Eventually(t, func() bool {
		return len(f.events.ofType(domain.EventRenderingIdle)) > 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestViewer_FindRevealsMatch(t *testing.T) {
	f := newViewerFixture(t)
	require.NoError(t, f.viewer.Load(context.Background(), "book.pdf"))

	f.viewer.Find().Find("needle", domain.FindOptions{})
	require.NoError(t, f.viewer.Find().WaitExtracted(context.Background()))

	require.Eventually(t, func() bool { return f.viewer.CurrentPage() == 3 }, 2*time.Second, 5*time.Millisecond)
	require.Eventually(t, func() bool {
		for _, m := range f.sink.all() {
			if m == "Match 1 of 1" {
				return true
			}
		}
		return false
	}, 2*time.Second, 5*time.Millisecond)
}

func TestViewer_Close(t *testing.T) {
	f := newViewerFixture(t)
	require.NoError(t, f.viewer.Load(context.Background(), "book.pdf"))

	require.NoError(t, f.viewer.Close())
	assert.True(t, f.docs["book.pdf"].closed)
	assert.Zero(t, f.viewer.PageCount())
	assert.Zero(t, f.viewer.CurrentPage())
	assert.Len(t, f.events.ofType(domain.EventDocumentClosed), 1)

	// Closing twice is a no-op.
	require.NoError(t, f.viewer.Close())
	assert.Len(t, f.events.ofType(domain.EventDocumentClosed), 1)
}
