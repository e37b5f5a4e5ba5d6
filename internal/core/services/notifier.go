package services

import (
	"sync"
	"time"

	"github.com/custodia-labs/folio/internal/core/ports/driven"
)

// DefaultRepeatDelay separates the clear from the re-shown message when the
// same message is announced twice in a row.
const DefaultRepeatDelay = 100 * time.Millisecond

// Ensure Notifier and AnnounceFunc implement the interface.
var (
	_ driven.Announcer = (*Notifier)(nil)
	_ driven.Announcer = AnnounceFunc(nil)
)

// AnnounceFunc adapts a function to driven.Announcer.
type AnnounceFunc func(message string)

// Announce calls f(message).
func (f AnnounceFunc) Announce(message string) {
	f(message)
}

// Notifier forwards status messages to a sink. It belongs to one viewer.
//
// Announcing the message that is already showing first clears the sink, then
// shows the message again after a short delay, so observers see a change.
type Notifier struct {
	sink  driven.Announcer
	delay time.Duration

	mu    sync.Mutex
	last  string
	seq   uint64
	timer *time.Timer
}

// NewNotifier creates a notifier writing to sink. sink may be nil.
func NewNotifier(sink driven.Announcer) *Notifier {
	return &Notifier{sink: sink, delay: DefaultRepeatDelay}
}

// SetDelay changes the repeat delay.
func (n *Notifier) SetDelay(d time.Duration) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.delay = d
}

// Announce shows message. A pending re-show is cancelled.
func (n *Notifier) Announce(message string) {
	n.mu.Lock()
	n.seq++
	seq := n.seq
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
	repeat := message != "" && message == n.last
	n.last = message
	if repeat {
		n.timer = time.AfterFunc(n.delay, func() {
			n.mu.Lock()
			current := n.seq == seq
			n.mu.Unlock()
			if current {
				n.emit(message)
			}
		})
	}
	n.mu.Unlock()

	if repeat {
		n.emit("")
		return
	}
	n.emit(message)
}

// Last returns the most recently announced message.
func (n *Notifier) Last() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.last
}

// Close cancels a pending re-show.
func (n *Notifier) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.seq++
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
}

func (n *Notifier) emit(message string) {
	if n.sink != nil {
		n.sink.Announce(message)
	}
}
