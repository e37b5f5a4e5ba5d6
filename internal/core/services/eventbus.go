package services

import (
	"sync"
	"sync/atomic"

	"github.com/custodia-labs/folio/internal/core/domain"
)

// EventHandler receives published events.
type EventHandler func(domain.Event)

// Subscription is a registered handler. Unsubscribe deactivates it.
type Subscription struct {
	bus    *EventBus
	typ    domain.EventType
	fn     EventHandler
	active atomic.Bool
}

// Unsubscribe removes the handler. It is safe to call from inside a handler,
// including during the dispatch that would have reached this subscription.
func (s *Subscription) Unsubscribe() {
	if !s.active.Swap(false) {
		return
	}
	s.bus.remove(s)
}

// EventBus is a synchronous publish/subscribe hub for viewer events.
//
// Handlers run on the publishing goroutine, in subscription order.
// Publish dispatches over a snapshot of the subscriptions taken when it starts:
// handlers added during dispatch are not called for that event, and handlers
// removed during dispatch are skipped if not yet reached.
type EventBus struct {
	mu   sync.Mutex
	subs []*Subscription
}

// NewEventBus creates an empty event bus.
func NewEventBus() *EventBus {
	return &EventBus{}
}

// Subscribe registers fn for one event type.
func (b *EventBus) Subscribe(typ domain.EventType, fn EventHandler) *Subscription {
	s := &Subscription{bus: b, typ: typ, fn: fn}
	s.active.Store(true)

	b.mu.Lock()
	b.subs = append(b.subs, s)
	b.mu.Unlock()
	return s
}

// SubscribeAll registers fn for every event type.
func (b *EventBus) SubscribeAll(fn EventHandler) *Subscription {
	return b.Subscribe(0, fn)
}

// Publish delivers e to the matching handlers.
func (b *EventBus) Publish(e domain.Event) {
	b.mu.Lock()
	snapshot := make([]*Subscription, len(b.subs))
	copy(snapshot, b.subs)
	b.mu.Unlock()

	for _, s := range snapshot {
		if s.typ != 0 && s.typ != e.Type {
			continue
		}
		if !s.active.Load() {
			continue
		}
		s.fn(e)
	}
}

// Len returns the number of active subscriptions.
func (b *EventBus) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

func (b *EventBus) remove(s *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, sub := range b.subs {
		if sub == s {
			b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
			return
		}
	}
}
