package broadcast

import "sync"

// Pipe subscribes to src and exposes the feed as a receive-only channel
// backed by an unbounded internal queue, so a slow consumer never blocks
// the publisher's synchronous dispatch.
//
// Cancelling the returned subscription detaches from src, drains the
// queue, and closes the channel. The queue grows without bound if the
// consumer falls behind, so long-running consumers should keep up or
// cancel.
func Pipe[T any](src Stream[T]) (<-chan T, Subscription) {
	p := &pipe[T]{
		in:  make(chan T),
		out: make(chan T),
	}

	go p.run()

	p.sub = src.Subscribe(p.push)

	return p.out, p
}

type pipe[T any] struct {
	mu     sync.Mutex
	closed bool
	sub    Subscription
	in     chan T
	out    chan T
}

// push hands an event to the buffering goroutine. The run loop consumes
// from in without ever blocking on the consumer, so this returns promptly
// and the publisher is never held up.
func (p *pipe[T]) push(event T) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}

	p.in <- event
}

func (p *pipe[T]) Cancel() {
	p.sub.Cancel()

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}

	p.closed = true

	close(p.in)
}

// run shuttles events from in to out through a growable queue. Queued
// events are flushed to the consumer after cancellation, then out closes.
func (p *pipe[T]) run() {
	var queue []T

	in := p.in

	// head returns out only when there is something to send, disabling
	// that select case while the queue is empty.
	head := func() chan T {
		if len(queue) == 0 {
			return nil
		}

		return p.out
	}

	next := func() T {
		if len(queue) == 0 {
			var zero T

			return zero
		}

		return queue[0]
	}

	for len(queue) > 0 || in != nil {
		select {
		case event, ok := <-in:
			if !ok {
				in = nil
			} else {
				queue = append(queue, event)
			}
		case head() <- next():
			queue = queue[1:]
		}
	}

	close(p.out)
}
