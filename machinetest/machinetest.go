// Package machinetest provides test utilities for asserting on the event
// streams of a machine: a Recorder that captures published outcomes and
// testify-based helpers over the capture.
package machinetest

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/amp-labs/amp-fsm/broadcast"
	"github.com/amp-labs/amp-fsm/machine"
)

// Recorder captures every event a machine publishes from the moment it
// attaches. It is safe for concurrent use; dispatch is synchronous, so
// once Attempt returns the recorder has already seen the outcome.
type Recorder[S comparable] struct {
	mu        sync.Mutex
	successes []machine.Success[S]
	failures  []machine.Failure[S]
	subs      []broadcast.Subscription
}

// Record attaches a recorder to both of the machine's streams.
func Record[S comparable](m *machine.Machine[S]) *Recorder[S] {
	r := &Recorder[S]{}

	r.subs = append(r.subs,
		m.OnSuccess().Subscribe(func(e machine.Success[S]) {
			r.mu.Lock()
			r.successes = append(r.successes, e)
			r.mu.Unlock()
		}),
		m.OnFailure().Subscribe(func(e machine.Failure[S]) {
			r.mu.Lock()
			r.failures = append(r.failures, e)
			r.mu.Unlock()
		}),
	)

	return r
}

// Stop detaches the recorder from the machine. Captured events remain
// readable.
func (r *Recorder[S]) Stop() {
	for _, sub := range r.subs {
		sub.Cancel()
	}
}

// Successes returns a copy of the captured success events in publish order.
func (r *Recorder[S]) Successes() []machine.Success[S] {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]machine.Success[S], len(r.successes))
	copy(out, r.successes)

	return out
}

// Failures returns a copy of the captured failure events in publish order.
func (r *Recorder[S]) Failures() []machine.Failure[S] {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]machine.Failure[S], len(r.failures))
	copy(out, r.failures)

	return out
}

// Events returns the total number of captured events.
func (r *Recorder[S]) Events() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.successes) + len(r.failures)
}

// LastSuccess returns the most recent success event, if any.
func (r *Recorder[S]) LastSuccess() (machine.Success[S], bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.successes) == 0 {
		var zero machine.Success[S]

		return zero, false
	}

	return r.successes[len(r.successes)-1], true
}

// LastFailure returns the most recent failure event, if any.
func (r *Recorder[S]) LastFailure() (machine.Failure[S], bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.failures) == 0 {
		var zero machine.Failure[S]

		return zero, false
	}

	return r.failures[len(r.failures)-1], true
}

// RequireSuccess asserts that the most recent success event matches the
// given endpoints.
func (r *Recorder[S]) RequireSuccess(t *testing.T, from, to S) {
	t.Helper()

	event, ok := r.LastSuccess()
	require.True(t, ok, "no success event was published")
	require.Equal(t, from, event.From, "success event from mismatch")
	require.Equal(t, to, event.To, "success event to mismatch")
}

// RequireFailure asserts that the most recent failure event matches the
// given kind and endpoints.
func (r *Recorder[S]) RequireFailure(t *testing.T, kind machine.ErrorKind, from, to S) {
	t.Helper()

	event, ok := r.LastFailure()
	require.True(t, ok, "no failure event was published")
	require.Equal(t, kind, event.Kind, "failure event kind mismatch")
	require.Equal(t, from, event.From, "failure event from mismatch")
	require.Equal(t, to, event.To, "failure event to mismatch")
}

// RequireCounts asserts the exact number of captured success and failure
// events.
func (r *Recorder[S]) RequireCounts(t *testing.T, successes, failures int) {
	t.Helper()

	r.mu.Lock()
	defer r.mu.Unlock()

	require.Len(t, r.successes, successes, "success event count mismatch")
	require.Len(t, r.failures, failures, "failure event count mismatch")
}
