package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/folio/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
	"github.com/custodia-labs/folio/internal/logger"
)

var tuiLog = logger.Named("tui")

// Ensure Inbox can receive notifier output.
var _ driven.Announcer = (*Inbox)(nil)

// inboxSize bounds queued messages. Page render events are the bulk.
const inboxSize = 256

// Inbox carries events from background goroutines into the Bubbletea loop.
// Sends never block: when the queue is full the message is dropped.
type Inbox struct {
	ch chan tea.Msg
}

// NewInbox creates an empty inbox.
func NewInbox() *Inbox {
	return &Inbox{ch: make(chan tea.Msg, inboxSize)}
}

// Announce queues a notifier message.
func (i *Inbox) Announce(message string) {
	i.Send(messages.Announced{Message: message})
}

// Publish queues a viewer event. It has the shape of an event bus handler.
func (i *Inbox) Publish(e domain.Event) {
	i.Send(messages.ViewerEvent{Event: e})
}

// Send queues any message.
func (i *Inbox) Send(msg tea.Msg) {
	select {
	case i.ch <- msg:
	default:
		tuiLog.Debug("inbox full, dropping %T", msg)
	}
}

// Wait returns a command that delivers the next queued message.
func (i *Inbox) Wait() tea.Cmd {
	return func() tea.Msg {
		return <-i.ch
	}
}
