// Package broadcast implements hot, multicast, in-process event streams.
//
// A Broadcaster is a registry of subscriber callbacks. Publishing invokes
// every currently-registered callback synchronously and in registration
// order; there is no buffering and no replay for late subscribers.
// Filtered views are predicate wrappers over the base registry and can be
// composed freely.
package broadcast

import (
	"slices"
	"sync"

	"go.uber.org/atomic"
)

// Stream is a live multicast event feed consumed via subscription.
// Subscribers receive every event published after they subscribe; events
// published earlier are never replayed.
type Stream[T any] interface {
	// Subscribe registers fn to be invoked for each future event.
	// The returned Subscription removes the callback when cancelled.
	Subscribe(fn func(T)) Subscription
}

// Subscription is the handle for a registered callback. Cancel is
// idempotent and safe to call at any time, including from inside the
// callback itself while a publish is in flight.
type Subscription interface {
	Cancel()
}

type subscriber[T any] struct {
	id int64
	fn func(T)
}

// Broadcaster is the base registry behind a Stream. The zero value is not
// usable; create one with NewBroadcaster.
type Broadcaster[T any] struct {
	mu     sync.RWMutex
	nextID atomic.Int64
	subs   []subscriber[T]
}

// NewBroadcaster creates an empty broadcaster with no subscribers.
func NewBroadcaster[T any]() *Broadcaster[T] {
	return &Broadcaster[T]{}
}

// Subscribe registers fn and returns its cancellation handle.
// A nil fn yields a no-op subscription.
func (b *Broadcaster[T]) Subscribe(fn func(T)) Subscription {
	if fn == nil {
		return noopSubscription{}
	}

	id := b.nextID.Inc()

	b.mu.Lock()
	b.subs = append(b.subs, subscriber[T]{id: id, fn: fn})
	b.mu.Unlock()

	return &handle[T]{owner: b, id: id}
}

// Publish delivers event to every current subscriber, synchronously and in
// registration order. The subscriber list is snapshotted up front, so a
// callback may subscribe or cancel without affecting the in-flight
// dispatch: callbacks added during a publish first see the next event, and
// a callback cancelled mid-publish still receives the current one.
func (b *Broadcaster[T]) Publish(event T) {
	b.mu.RLock()
	snapshot := slices.Clone(b.subs)
	b.mu.RUnlock()

	for _, sub := range snapshot {
		sub.fn(event)
	}
}

// Len returns the number of registered subscribers.
func (b *Broadcaster[T]) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return len(b.subs)
}

func (b *Broadcaster[T]) remove(id int64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.subs = slices.DeleteFunc(b.subs, func(s subscriber[T]) bool {
		return s.id == id
	})
}

type handle[T any] struct {
	owner *Broadcaster[T]
	id    int64
	once  sync.Once
}

func (h *handle[T]) Cancel() {
	h.once.Do(func() {
		h.owner.remove(h.id)
	})
}

type noopSubscription struct{}

func (noopSubscription) Cancel() {}

// Filter returns a view of src restricted to events matching pred.
// The view shares the source registry: subscribing through it registers a
// predicate-wrapped callback on src, so ordering and multicast semantics
// are identical to a manual filter over the unfiltered stream.
func Filter[T any](src Stream[T], pred func(T) bool) Stream[T] {
	return filtered[T]{src: src, pred: pred}
}

type filtered[T any] struct {
	src  Stream[T]
	pred func(T) bool
}

func (f filtered[T]) Subscribe(fn func(T)) Subscription {
	if fn == nil {
		return noopSubscription{}
	}

	return f.src.Subscribe(func(event T) {
		if f.pred(event) {
			fn(event)
		}
	})
}
