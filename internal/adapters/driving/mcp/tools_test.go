package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/folio/internal/core/domain"
)

func newTestServer(t *testing.T, ports *Ports) *Server {
	t.Helper()
	if ports.Viewer == nil {
		ports.Viewer = &mockViewerService{}
	}
	if ports.Find == nil {
		ports.Find = &mockFindService{}
	}
	server, err := NewServer(ports)
	require.NoError(t, err)
	return server
}

func TestServer_handleFind(t *testing.T) {
	ctx := context.Background()

	t.Run("returns matches", func(t *testing.T) {
		find := &mockFindService{
			matches: []*domain.Match{
				{Page: 1, Start: 4, End: 11, Text: "invoice"},
				{Page: 3, Start: 0, End: 7, Text: "Invoice"},
			},
		}
		server := newTestServer(t, &Ports{Find: find})

		_, output, err := server.handleFind(ctx, nil, FindInput{Query: "invoice", EntireWord: true})

		require.NoError(t, err)
		assert.Equal(t, 2, output.Count)
		assert.Equal(t, 2, output.Total)
		assert.Equal(t, MatchOutput{Page: 3, Start: 0, End: 7, Text: "Invoice"}, output.Matches[1])
		assert.Equal(t, "invoice", find.lastQuery)
		assert.True(t, find.lastOpts.EntireWord)
		assert.False(t, find.lastOpts.CaseSensitive)
	})

	t.Run("limit caps returned matches", func(t *testing.T) {
		find := &mockFindService{}
		for i := 0; i < 5; i++ {
			find.matches = append(find.matches, &domain.Match{Page: 1, Start: i * 10, End: i*10 + 3})
		}
		server := newTestServer(t, &Ports{Find: find})

		_, output, err := server.handleFind(ctx, nil, FindInput{Query: "abc", Limit: 2})

		require.NoError(t, err)
		assert.Equal(t, 2, output.Count)
		assert.Equal(t, 5, output.Total)
		assert.Len(t, output.Matches, 2)
	})

	t.Run("no matches returns empty list", func(t *testing.T) {
		server := newTestServer(t, &Ports{})

		_, output, err := server.handleFind(ctx, nil, FindInput{Query: "missing"})

		require.NoError(t, err)
		assert.Equal(t, 0, output.Count)
		assert.NotNil(t, output.Matches)
	})

	t.Run("returns error on find failure", func(t *testing.T) {
		find := &mockFindService{err: domain.ErrSearchPattern}
		server := newTestServer(t, &Ports{Find: find})

		_, _, err := server.handleFind(ctx, nil, FindInput{Query: " "})

		assert.ErrorIs(t, err, domain.ErrSearchPattern)
	})
}

func TestServer_handlePageText(t *testing.T) {
	ctx := context.Background()
	find := &mockFindService{
		pages: map[int]*domain.PageTextContent{
			2: domain.NewPageTextContent(2, []domain.TextRun{
				{Text: "Hello", EOL: true},
				{Text: "world"},
			}, nil),
		},
	}
	server := newTestServer(t, &Ports{Find: find})

	t.Run("returns page text", func(t *testing.T) {
		_, output, err := server.handlePageText(ctx, nil, PageTextInput{Page: 2})

		require.NoError(t, err)
		assert.Equal(t, 2, output.Page)
		assert.Equal(t, "Hello world", output.Text)
		assert.Equal(t, 2, output.Runs)
	})

	t.Run("unknown page returns error", func(t *testing.T) {
		_, _, err := server.handlePageText(ctx, nil, PageTextInput{Page: 9})

		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrPageOutOfRange)
		assert.Contains(t, err.Error(), "page 9")
	})
}

func TestServer_handleListAnnotations(t *testing.T) {
	ctx := context.Background()
	annotations := &mockAnnotationService{
		annotations: []domain.Annotation{
			{
				ID:      "a1",
				Type:    domain.AnnotationHighlight,
				Page:    1,
				Rect:    domain.Rect{X: 10, Y: 20, Width: 30, Height: 5},
				Color:   "#FFFF00",
				Opacity: 0.4,
				Quads:   []domain.Quad{{}},
			},
			{
				ID:      "a2",
				Type:    domain.AnnotationInk,
				Page:    2,
				Strokes: []domain.Stroke{{Points: []domain.Point{{X: 1, Y: 1}}}},
			},
		},
	}
	server := newTestServer(t, &Ports{Annotations: annotations})

	t.Run("lists all pages", func(t *testing.T) {
		_, output, err := server.handleListAnnotations(ctx, nil, ListAnnotationsInput{})

		require.NoError(t, err)
		require.Equal(t, 2, output.Count)
		first := output.Annotations[0]
		assert.Equal(t, "a1", first.ID)
		assert.Equal(t, "highlight", first.Type)
		assert.Equal(t, []float64{10, 20, 30, 5}, first.Rect)
		assert.Equal(t, 1, first.Quads)
		assert.InDelta(t, 0.4, first.Opacity, 1e-9)
		assert.Equal(t, 1, output.Annotations[1].Strokes)
		assert.InDelta(t, 1.0, output.Annotations[1].Opacity, 1e-9)
	})

	t.Run("filters by page", func(t *testing.T) {
		_, output, err := server.handleListAnnotations(ctx, nil, ListAnnotationsInput{Page: 2})

		require.NoError(t, err)
		assert.Equal(t, 2, annotations.listedPage)
		require.Equal(t, 1, output.Count)
		assert.Equal(t, "a2", output.Annotations[0].ID)
	})

	t.Run("returns error on store failure", func(t *testing.T) {
		failing := newTestServer(t, &Ports{Annotations: &mockAnnotationService{err: errors.New("disk full")}})

		_, _, err := failing.handleListAnnotations(ctx, nil, ListAnnotationsInput{})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "listing annotations")
	})
}
