// Package eventbus fans sensor readings out from the ingestion layer
// to the persistence and metrics consumers.
package eventbus

import (
	"sync"
	"sync/atomic"
)

const defaultBuffer = 16

// Bus is a type-safe publish/subscribe fan-out for events of type T.
// Delivery is non-blocking: a subscriber that falls behind loses
// events rather than stalling the publisher.
type Bus[T any] struct {
	mu      sync.RWMutex
	subs    []chan T
	closed  bool
	buffer  int
	dropped atomic.Uint64
}

// Option configures a Bus.
type Option[T any] func(*Bus[T])

// WithBuffer sets the per-subscriber channel capacity.
func WithBuffer[T any](n int) Option[T] {
	return func(b *Bus[T]) {
		if n > 0 {
			b.buffer = n
		}
	}
}

// New creates a Bus.
func New[T any](opts ...Option[T]) *Bus[T] {
	b := &Bus[T]{buffer: defaultBuffer}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Publish sends the event to every subscriber.
func (b *Bus[T]) Publish(e T) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}
	for _, ch := range b.subs {
		select {
		case ch <- e:
		default:
			b.dropped.Add(1)
		}
	}
}

// Subscribe registers a subscriber and returns its channel. The
// channel is closed when the bus closes or on Unsubscribe.
func (b *Bus[T]) Subscribe() <-chan T {
	ch := make(chan T, b.buffer)
	b.mu.Lock()
	if b.closed {
		close(ch)
	} else {
		b.subs = append(b.subs, ch)
	}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes the subscriber and closes its channel.
func (b *Bus[T]) Unsubscribe(sub <-chan T) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, ch := range b.subs {
		if ch == sub {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			if !b.closed {
				close(ch)
			}
			return
		}
	}
}

// Dropped reports how many events were discarded because a subscriber
// buffer was full.
func (b *Bus[T]) Dropped() uint64 { return b.dropped.Load() }

// Close closes the bus and all subscriber channels.
func (b *Bus[T]) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	for _, ch := range b.subs {
		close(ch)
	}
	b.subs = nil
	b.mu.Unlock()
}
