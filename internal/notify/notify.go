// Package notify fans validation status out to subscribers after
// successful mutations. Delivery is fire-and-forget: publishing never
// blocks, never fails the mutation that triggered it, and a subscriber
// whose delivery fails is dropped silently.
package notify

import (
	"log/slog"
	"sync"
)

// Validation is the payload published after a mutation commits.
type Validation struct {
	Valid       bool     `json:"valid"`
	Diagnostics []string `json:"diagnostics"`
}

// Subscriber receives one validation event. Returning an error drops
// the subscription. Implementations must not block; channel-backed
// subscribers should use SubscribeChan, which enforces that.
type Subscriber func(Validation) error

// Hub is a set of validation subscribers. Unlike the editing engine
// itself, the hub is safe for concurrent use: transports subscribe and
// unsubscribe from their own goroutines.
type Hub struct {
	mu   sync.Mutex
	subs map[int]Subscriber
	next int
}

// NewHub returns an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[int]Subscriber)}
}

// Subscribe registers fn and returns a cancel function.
func (h *Hub) Subscribe(fn Subscriber) (cancel func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.next
	h.next++
	h.subs[id] = fn
	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.subs, id)
	}
}

// SubscribeChan registers a buffered channel subscriber and returns
// the receive side with a cancel function. Delivery is a non-blocking
// send: an event that finds the buffer full counts as a failed
// delivery and drops the subscription.
func (h *Hub) SubscribeChan(buffer int) (<-chan Validation, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan Validation, buffer)
	cancel := h.Subscribe(func(v Validation) error {
		select {
		case ch <- v:
			return nil
		default:
			return errSubscriberFull
		}
	})
	return ch, cancel
}

type subscriberFullError struct{}

func (subscriberFullError) Error() string { return "subscriber buffer full" }

var errSubscriberFull = subscriberFullError{}

// Publish delivers v to every subscriber. Failing subscribers are
// removed; the caller never learns about delivery problems beyond a
// debug log line.
func (h *Hub) Publish(v Validation) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, fn := range h.subs {
		if err := fn(v); err != nil {
			delete(h.subs, id)
			slog.Debug("dropping notification subscriber", "subscriber", id, "error", err)
		}
	}
}

// Count returns the current subscriber count.
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
