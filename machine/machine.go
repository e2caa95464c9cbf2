// Package machine implements a finite-state-machine engine that tracks one
// active state out of an application-defined set, validates requested
// transitions against a declarative table, carries a key-value context
// across transitions, and publishes every attempt's outcome on hot
// multicast streams.
//
// Validation failures are data, not errors: Attempt never returns anything
// to its caller. Outcomes are observed exclusively through the success and
// failure streams, or through filtered views of them. A caller that never
// subscribes simply loses that information.
package machine

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/atomic"

	"github.com/amp-labs/amp-fsm/broadcast"
	"github.com/amp-labs/amp-fsm/transition"
)

const defaultName = "machine"

// Machine owns an active state, a context, and a transition table.
// Attempt is the sole mutation entry point and is safe for concurrent use;
// each call runs read-validate-mutate-publish as one atomic unit with
// respect to other calls on the same instance.
//
// Each instance is fully self-contained; there is no process-wide shared
// machine state.
type Machine[S comparable] struct {
	// attemptMu serializes whole attempts, including the synchronous
	// dispatch to subscribers. stateMu guards the snapshot fields so
	// accessors (and subscriber callbacks) never block on an in-flight
	// attempt's dispatch.
	attemptMu sync.Mutex
	stateMu   sync.RWMutex

	id       string
	name     string
	state    S
	context  Context
	table    transition.Table[S]
	attempts atomic.Int64

	successes *broadcast.Broadcaster[Success[S]]
	failures  *broadcast.Broadcaster[Failure[S]]

	logger *slog.Logger
}

// Option configures a machine at construction time.
type Option[S comparable] func(*Machine[S])

// WithContext sets the initial context. The map is copied.
func WithContext[S comparable](initial Context) Option[S] {
	return func(m *Machine[S]) {
		m.context = initial.Clone()
	}
}

// WithLogger sets the logger used for attempt logging. Defaults to
// slog.Default().
func WithLogger[S comparable](logger *slog.Logger) Option[S] {
	return func(m *Machine[S]) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithName sets the machine name used in logs, spans, and metric labels.
// Defaults to "machine".
func WithName[S comparable](name string) Option[S] {
	return func(m *Machine[S]) {
		if name != "" {
			m.name = name
		}
	}
}

// New creates a machine with the given initial state, an empty transition
// table, and an empty context unless WithContext is supplied. With an
// empty table every attempt fails with EmptyTransitions until
// SetTransitions is called.
func New[S comparable](initial S, opts ...Option[S]) *Machine[S] {
	m := &Machine[S]{
		id:        uuid.New().String(),
		name:      defaultName,
		state:     initial,
		context:   Context{},
		successes: broadcast.NewBroadcaster[Success[S]](),
		failures:  broadcast.NewBroadcaster[Failure[S]](),
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// ID returns the machine's unique instance identifier.
func (m *Machine[S]) ID() string {
	return m.id
}

// Name returns the machine's configured name.
func (m *Machine[S]) Name() string {
	return m.name
}

// State returns the current active state.
func (m *Machine[S]) State() S {
	m.stateMu.RLock()
	defer m.stateMu.RUnlock()

	return m.state
}

// Context returns a snapshot copy of the current context. Mutating the
// returned map has no effect on the machine.
func (m *Machine[S]) Context() Context {
	m.stateMu.RLock()
	defer m.stateMu.RUnlock()

	return m.context.Clone()
}

// SetTransitions replaces the transition table atomically and entirely.
// It may be called any number of times; the last call wins. The rules are
// not validated here; a malformed table only surfaces as NoTransition
// failures when exercised.
func (m *Machine[S]) SetTransitions(rules ...transition.Rule[S]) {
	table := transition.NewTable(rules...)

	m.stateMu.Lock()
	m.table = table
	m.stateMu.Unlock()

	m.logger.Debug("Transition table replaced",
		"machine", m.name,
		"machine_id", m.id,
		"rules", table.Len(),
	)
}

// Attempt requests a transition to target, optionally merging partial into
// the context on success (nil means no context update). It is
// fire-and-forget: the outcome is reported exclusively by publishing
// exactly one event, Success or Failure, before Attempt returns.
//
// Validation applies in strict order, first match wins: empty table,
// same-state target, no connecting rule. On failure the state and context
// are left untouched and the machine remains fully usable.
func (m *Machine[S]) Attempt(ctx context.Context, target S, partial Context) {
	m.attemptMu.Lock()
	defer m.attemptMu.Unlock()

	seq := m.attempts.Inc()

	ctx, span := startAttemptSpan(ctx, m.name, m.id, seq)
	defer span.End()

	m.stateMu.RLock()
	from := m.state
	table := m.table
	m.stateMu.RUnlock()

	var kind ErrorKind

	switch {
	case table.Empty():
		kind = EmptyTransitions
	case target == from:
		kind = SameState
	case !table.Allowed(from, target):
		kind = NoTransition
	}

	if kind != "" {
		m.reject(ctx, span, from, target, kind)

		return
	}

	// Commit state and context together so no observer sees one without
	// the other.
	m.stateMu.Lock()
	merged := m.context.merged(partial)
	m.state = target
	m.context = merged
	m.stateMu.Unlock()

	endAttemptSpanSuccess(span)
	attemptsTotal.WithLabelValues(sanitizeMachine(m.name), outcomeSuccess).Inc()

	m.logger.InfoContext(ctx, "Transition applied",
		"machine", m.name,
		"machine_id", m.id,
		"attempt", seq,
		"from", from,
		"to", target,
		"context_keys", len(merged),
	)

	m.successes.Publish(Success[S]{From: from, To: target, Context: merged.Clone()})
}

func (m *Machine[S]) reject(ctx context.Context, span trace.Span, from, target S, kind ErrorKind) {
	endAttemptSpanRejected(span, kind)
	attemptsTotal.WithLabelValues(sanitizeMachine(m.name), outcomeError).Inc()
	rejectionsTotal.WithLabelValues(sanitizeMachine(m.name), string(kind)).Inc()

	m.logger.DebugContext(ctx, "Transition rejected",
		"machine", m.name,
		"machine_id", m.id,
		"kind", string(kind),
		"from", from,
		"to", target,
	)

	m.failures.Publish(Failure[S]{Kind: kind, From: from, To: target})
}

// OnSuccess returns the unfiltered success stream. It is hot: subscribers
// receive only events published after they subscribe.
func (m *Machine[S]) OnSuccess() broadcast.Stream[Success[S]] {
	return m.successes
}

// OnFailure returns the unfiltered failure stream.
func (m *Machine[S]) OnFailure() broadcast.Stream[Failure[S]] {
	return m.failures
}

// OnSuccessTo returns a view of the success stream restricted to
// transitions whose destination equals state.
func (m *Machine[S]) OnSuccessTo(state S) broadcast.Stream[Success[S]] {
	return broadcast.Filter(m.OnSuccess(), func(e Success[S]) bool {
		return e.To == state
	})
}

// OnFailureOf returns a view of the failure stream restricted to the
// given error kind.
func (m *Machine[S]) OnFailureOf(kind ErrorKind) broadcast.Stream[Failure[S]] {
	return broadcast.Filter(m.OnFailure(), func(e Failure[S]) bool {
		return e.Kind == kind
	})
}
