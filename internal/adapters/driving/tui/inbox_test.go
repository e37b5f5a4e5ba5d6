package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/folio/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/folio/internal/core/domain"
)

func TestInbox_DeliversInOrder(t *testing.T) {
	inbox := NewInbox()

	inbox.Announce("Match 1 of 2")
	inbox.Publish(domain.Event{Type: domain.EventPageRendered, Page: 2})

	assert.Equal(t, messages.Announced{Message: "Match 1 of 2"}, inbox.Wait()())
	msg := inbox.Wait()()
	require.IsType(t, messages.ViewerEvent{}, msg)
	assert.Equal(t, 2, msg.(messages.ViewerEvent).Event.Page)
}

func TestInbox_DropsWhenFull(t *testing.T) {
	inbox := NewInbox()

	for i := 0; i < inboxSize+10; i++ {
		inbox.Send(messages.Announced{Message: "x"})
	}

	assert.Len(t, inbox.ch, inboxSize)
}
