package status

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/folio/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/folio/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/folio/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/folio/internal/core/domain"
)

func TestNewBar(t *testing.T) {
	bar := NewBar(styles.DefaultStyles(), keymap.DefaultKeyMap())

	require.NotNil(t, bar)
	assert.Equal(t, "", bar.Message())
	assert.Equal(t, "", bar.Query())
	assert.Equal(t, 80, bar.Width())
}

func TestNewBar_NilStyles(t *testing.T) {
	bar := NewBar(nil, nil)

	require.NotNil(t, bar)
	assert.NotNil(t, bar.styles)
	assert.NotNil(t, bar.keymap)
	assert.Nil(t, bar.Init())
}

func TestBar_ViewShowsPositionAndScale(t *testing.T) {
	bar := NewBar(nil, nil)
	bar.SetWidth(120)
	bar.SetPosition(3, 12, 1.25)

	view := bar.View()

	assert.Contains(t, view, "Page 3/12")
	assert.Contains(t, view, "125%")
	assert.Contains(t, view, "find")
}

func TestBar_FindProgress(t *testing.T) {
	tests := []struct {
		name   string
		update domain.FindUpdate
		want   string
	}{
		{
			name:   "found",
			update: domain.FindUpdate{State: domain.FindFound, Counts: domain.FindCounts{Current: 2, Total: 5}},
			want:   `"total" 2/5`,
		},
		{
			name:   "wrapped",
			update: domain.FindUpdate{State: domain.FindWrapped, Counts: domain.FindCounts{Current: 1, Total: 5}},
			want:   "wrapped",
		},
		{
			name:   "not found",
			update: domain.FindUpdate{State: domain.FindNotFound},
			want:   "not found",
		},
		{
			name:   "pending",
			update: domain.FindUpdate{State: domain.FindPending},
			want:   "searching",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bar := NewBar(nil, nil)
			bar.SetWidth(160)
			bar.SetQuery("total")
			bar, _ = bar.Update(messages.ViewerEvent{Event: domain.Event{
				Type:    domain.EventFindUpdated,
				Payload: tt.update,
			}})

			state, _ := bar.FindState()
			assert.Equal(t, tt.update.State, state)
			assert.Contains(t, bar.View(), tt.want)
			assert.Contains(t, bar.View(), "next")
		})
	}
}

func TestBar_SetQueryResetsProgress(t *testing.T) {
	bar := NewBar(nil, nil)
	bar.SetQuery("a")
	bar, _ = bar.Update(messages.ViewerEvent{Event: domain.Event{
		Payload: domain.FindUpdate{State: domain.FindFound, Counts: domain.FindCounts{Current: 1, Total: 1}},
	}})

	bar.SetQuery("b")

	state, counts := bar.FindState()
	assert.Equal(t, domain.FindPending, state)
	assert.Equal(t, domain.FindCounts{}, counts)
}

func TestBar_MessagesAndErrors(t *testing.T) {
	bar := NewBar(nil, nil)
	bar.SetWidth(160)

	bar, _ = bar.Update(messages.Announced{Message: "Match 1 of 3"})
	assert.Equal(t, "Match 1 of 3", bar.Message())
	assert.Contains(t, bar.View(), "Match 1 of 3")

	bar, _ = bar.Update(messages.ErrorOccurred{Err: errors.New("reload failed")})
	assert.Contains(t, bar.View(), "Error: reload failed")

	bar.Clear()
	assert.NoError(t, bar.Err())
	assert.Empty(t, bar.Message())
}

func TestBar_PromptHints(t *testing.T) {
	bar := NewBar(nil, nil)
	bar.SetWidth(160)

	bar, _ = bar.Update(messages.ModeChanged{Mode: messages.ModeFind})

	assert.Contains(t, bar.View(), "esc: cancel")
}
