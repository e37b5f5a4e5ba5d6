package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/folio/internal/core/domain"
)

func testAnnotation(id string, page int, created time.Time) *domain.Annotation {
	return &domain.Annotation{
		ID:        id,
		Type:      domain.AnnotationHighlight,
		Page:      page,
		Rect:      domain.Rect{X: 1, Y: 2, Width: 3, Height: 4},
		Quads:     []domain.Quad{domain.Rect{X: 1, Y: 2, Width: 3, Height: 4}.Quad()},
		Color:     "#FFEB3B",
		CreatedAt: created,
	}
}

func TestAnnotationStore_SaveGet(t *testing.T) {
	store := NewAnnotationStore()
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	a := testAnnotation("a1", 1, base)
	require.NoError(t, store.Save(ctx, "doc", a))

	got, err := store.Get(ctx, "doc", "a1")
	require.NoError(t, err)
	assert.Equal(t, *a, *got)

	// Stored geometry is not aliased.
	a.Quads[0].P1.X = 99
	got, err = store.Get(ctx, "doc", "a1")
	require.NoError(t, err)
	assert.Equal(t, 1.0, got.Quads[0].P1.X)

	_, err = store.Get(ctx, "other", "a1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAnnotationStore_SaveRequiresID(t *testing.T) {
	store := NewAnnotationStore()
	err := store.Save(context.Background(), "doc", testAnnotation("", 1, time.Now()))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAnnotationStore_ListOrder(t *testing.T) {
	store := NewAnnotationStore()
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, store.Save(ctx, "doc", testAnnotation("late", 1, base.Add(time.Hour))))
	require.NoError(t, store.Save(ctx, "doc", testAnnotation("p2", 2, base)))
	require.NoError(t, store.Save(ctx, "doc", testAnnotation("early", 1, base)))
	require.NoError(t, store.Save(ctx, "other", testAnnotation("x", 1, base)))

	all, err := store.List(ctx, "doc", 0)
	require.NoError(t, err)
	ids := make([]string, len(all))
	for i, a := range all {
		ids[i] = a.ID
	}
	assert.Equal(t, []string{"early", "late", "p2"}, ids)

	page2, err := store.List(ctx, "doc", 2)
	require.NoError(t, err)
	require.Len(t, page2, 1)
	assert.Equal(t, "p2", page2[0].ID)

	none, err := store.List(ctx, "unknown", 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestAnnotationStore_Delete(t *testing.T) {
	store := NewAnnotationStore()
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, "doc", testAnnotation("a1", 1, time.Now())))

	require.NoError(t, store.Delete(ctx, "doc", "a1"))
	assert.ErrorIs(t, store.Delete(ctx, "doc", "a1"), domain.ErrNotFound)

	_, err := store.Get(ctx, "doc", "a1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
