// Package events provides a simple publish-subscribe bus carrying session
// state to SSE observers.
package events

import (
	"sync"

	"github.com/copiiworld/cajita-go/internal/models"
)

const subBufferSize = 8

// Bus is a non-blocking publish-subscribe bus. Subscribers that are slow to
// consume have intermediate views dropped rather than blocking mutations;
// every subscriber still converges on the latest published view.
type Bus struct {
	mu   sync.Mutex
	subs map[string]chan models.SessionView
}

// NewBus creates a new event bus.
func NewBus() *Bus {
	return &Bus{
		subs: make(map[string]chan models.SessionView),
	}
}

// Subscribe creates a new subscription with the given ID.
// Call Unsubscribe when done to clean up.
func (b *Bus) Subscribe(id string) <-chan models.SessionView {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch := make(chan models.SessionView, subBufferSize)
	b.subs[id] = ch
	return ch
}

// Unsubscribe removes a subscription and closes its channel.
func (b *Bus) Unsubscribe(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if ch, ok := b.subs[id]; ok {
		delete(b.subs, id)
		close(ch)
	}
}

// Publish sends a view to all subscribers. If a subscriber's channel is
// full, the view is dropped (non-blocking).
func (b *Bus) Publish(view models.SessionView) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- view:
		default:
			// Drop if subscriber is slow
		}
	}
}

// SubscriberCount returns the current number of subscribers.
func (b *Bus) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
