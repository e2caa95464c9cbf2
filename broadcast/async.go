package broadcast

import "github.com/alitto/pond/v2"

// SubscribeAsync registers fn on src but runs each invocation on the given
// pond pool instead of inline on the publisher's goroutine. Publish still
// returns only after the event has been handed to the pool, never after fn
// completes.
//
// Events are submitted in publish order, but a pool with more than one
// worker may run them concurrently; use a single-worker pool when fn needs
// strict ordering.
func SubscribeAsync[T any](src Stream[T], pool pond.Pool, fn func(T)) Subscription {
	if fn == nil || pool == nil {
		return noopSubscription{}
	}

	return src.Subscribe(func(event T) {
		pool.Submit(func() {
			fn(event)
		})
	})
}
