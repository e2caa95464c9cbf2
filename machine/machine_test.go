package machine_test

import (
	"context"
	"sync"
	"testing"

	"github.com/neilotoole/slogt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amp-labs/amp-fsm/machine"
	"github.com/amp-labs/amp-fsm/machinetest"
	"github.com/amp-labs/amp-fsm/transition"
)

func newConfigured(t *testing.T) *machine.Machine[string] {
	t.Helper()

	m := machine.New("A",
		machine.WithLogger[string](slogt.New(t)),
		machine.WithName[string](t.Name()),
	)
	m.SetTransitions(
		transition.Rule[string]{From: []string{"A"}, To: []string{"B", "C"}},
		transition.Rule[string]{From: []string{"B"}, To: []string{"A"}},
	)

	return m
}

func TestEmptyTableRejectsEveryAttempt(t *testing.T) {
	t.Parallel()

	m := machine.New("A", machine.WithLogger[string](slogt.New(t)))
	rec := machinetest.Record(m)

	defer rec.Stop()

	m.Attempt(context.Background(), "B", nil)

	rec.RequireCounts(t, 0, 1)
	rec.RequireFailure(t, machine.EmptyTransitions, "A", "B")
	assert.Equal(t, "A", m.State(), "state must not change on failure")

	m.Attempt(context.Background(), "C", nil)

	rec.RequireCounts(t, 0, 2)
	rec.RequireFailure(t, machine.EmptyTransitions, "A", "C")
}

func TestSameStateAlwaysRejected(t *testing.T) {
	t.Parallel()

	m := machine.New("A", machine.WithLogger[string](slogt.New(t)))
	// The table nominally permits A -> A; same-state still wins.
	m.SetTransitions(transition.Rule[string]{From: []string{"A"}, To: []string{"A", "B"}})

	rec := machinetest.Record(m)
	defer rec.Stop()

	m.Attempt(context.Background(), "A", nil)

	rec.RequireCounts(t, 0, 1)
	rec.RequireFailure(t, machine.SameState, "A", "A")
	assert.Equal(t, "A", m.State())
}

func TestEmptyTableWinsOverSameState(t *testing.T) {
	t.Parallel()

	// Validation order is strict: emptiness is checked before the
	// same-state rule.
	m := machine.New("A", machine.WithLogger[string](slogt.New(t)))
	rec := machinetest.Record(m)

	defer rec.Stop()

	m.Attempt(context.Background(), "A", nil)

	rec.RequireFailure(t, machine.EmptyTransitions, "A", "A")
}

func TestNoTransitionRejected(t *testing.T) {
	t.Parallel()

	m := newConfigured(t)
	rec := machinetest.Record(m)

	defer rec.Stop()

	m.Attempt(context.Background(), "D", nil)

	rec.RequireCounts(t, 0, 1)
	rec.RequireFailure(t, machine.NoTransition, "A", "D")
	assert.Equal(t, "A", m.State())
}

func TestSuccessPublishesExactlyOneEvent(t *testing.T) {
	t.Parallel()

	m := newConfigured(t)
	rec := machinetest.Record(m)

	defer rec.Stop()

	m.Attempt(context.Background(), "B", nil)

	rec.RequireCounts(t, 1, 0)
	rec.RequireSuccess(t, "A", "B")
	assert.Equal(t, "B", m.State(), "state accessor must reflect the target immediately")
}

func TestContextMergeIsShallowOverride(t *testing.T) {
	t.Parallel()

	m := machine.New("A",
		machine.WithLogger[string](slogt.New(t)),
		machine.WithContext[string](machine.Context{"a": 1, "b": 2}),
	)
	m.SetTransitions(transition.Rule[string]{From: []string{"A"}, To: []string{"B"}})

	rec := machinetest.Record(m)
	defer rec.Stop()

	m.Attempt(context.Background(), "B", machine.Context{"b": 3, "c": 4})

	want := machine.Context{"a": 1, "b": 3, "c": 4}
	assert.Equal(t, want, m.Context())

	event, ok := rec.LastSuccess()
	require.True(t, ok)
	assert.Equal(t, want, event.Context, "published context must reflect the post-merge map")
}

func TestNilPartialLeavesContextUnchanged(t *testing.T) {
	t.Parallel()

	m := machine.New("A",
		machine.WithLogger[string](slogt.New(t)),
		machine.WithContext[string](machine.Context{"a": 1}),
	)
	m.SetTransitions(transition.Rule[string]{From: []string{"A"}, To: []string{"B"}})

	m.Attempt(context.Background(), "B", nil)

	assert.Equal(t, machine.Context{"a": 1}, m.Context())
}

func TestFailureLeavesContextUntouched(t *testing.T) {
	t.Parallel()

	m := machine.New("A",
		machine.WithLogger[string](slogt.New(t)),
		machine.WithContext[string](machine.Context{"a": 1}),
	)
	m.SetTransitions(transition.Rule[string]{From: []string{"A"}, To: []string{"B"}})

	m.Attempt(context.Background(), "D", machine.Context{"a": 99})

	assert.Equal(t, machine.Context{"a": 1}, m.Context())
	assert.Equal(t, "A", m.State())
}

func TestPublishedContextIsACopy(t *testing.T) {
	t.Parallel()

	m := newConfigured(t)

	var captured machine.Context

	m.OnSuccess().Subscribe(func(e machine.Success[string]) {
		captured = e.Context
	})

	m.Attempt(context.Background(), "B", machine.Context{"k": "v"})

	require.NotNil(t, captured)

	captured["k"] = "mutated"

	assert.Equal(t, "v", m.Context()["k"], "subscribers must not be able to mutate engine-owned context")
}

func TestContextAccessorReturnsSnapshot(t *testing.T) {
	t.Parallel()

	m := machine.New("A", machine.WithContext[string](machine.Context{"a": 1}))

	snapshot := m.Context()
	snapshot["a"] = 99

	assert.Equal(t, 1, m.Context()["a"])
}

func TestScenarioWalk(t *testing.T) {
	t.Parallel()

	m := newConfigured(t)
	rec := machinetest.Record(m)

	defer rec.Stop()

	m.Attempt(context.Background(), "B", nil)
	rec.RequireSuccess(t, "A", "B")
	require.Equal(t, "B", m.State())

	m.Attempt(context.Background(), "B", nil)
	rec.RequireFailure(t, machine.SameState, "B", "B")

	m.Attempt(context.Background(), "C", nil)
	rec.RequireFailure(t, machine.NoTransition, "B", "C")

	m.Attempt(context.Background(), "A", nil)
	rec.RequireSuccess(t, "B", "A")
	require.Equal(t, "A", m.State())

	rec.RequireCounts(t, 2, 2)
}

func TestFilteredStreamsMatchManualFilter(t *testing.T) {
	t.Parallel()

	m := newConfigured(t)

	var filteredTo, manualTo []machine.Success[string]

	m.OnSuccessTo("B").Subscribe(func(e machine.Success[string]) {
		filteredTo = append(filteredTo, e)
	})
	m.OnSuccess().Subscribe(func(e machine.Success[string]) {
		if e.To == "B" {
			manualTo = append(manualTo, e)
		}
	})

	var filteredKind, manualKind []machine.Failure[string]

	m.OnFailureOf(machine.NoTransition).Subscribe(func(e machine.Failure[string]) {
		filteredKind = append(filteredKind, e)
	})
	m.OnFailure().Subscribe(func(e machine.Failure[string]) {
		if e.Kind == machine.NoTransition {
			manualKind = append(manualKind, e)
		}
	})

	m.Attempt(context.Background(), "B", nil) // success to B
	m.Attempt(context.Background(), "B", nil) // SameState failure
	m.Attempt(context.Background(), "C", nil) // NoTransition failure
	m.Attempt(context.Background(), "A", nil) // success to A

	assert.Equal(t, manualTo, filteredTo, "OnSuccessTo must match a manual filter")
	assert.Len(t, filteredTo, 1)
	assert.Equal(t, manualKind, filteredKind, "OnFailureOf must match a manual filter")
	assert.Len(t, filteredKind, 1)
}

func TestLateSubscriberGetsNoReplay(t *testing.T) {
	t.Parallel()

	m := newConfigured(t)

	m.Attempt(context.Background(), "B", nil)

	rec := machinetest.Record(m)
	defer rec.Stop()

	rec.RequireCounts(t, 0, 0)

	m.Attempt(context.Background(), "A", nil)

	rec.RequireCounts(t, 1, 0)
	rec.RequireSuccess(t, "B", "A")
}

func TestUnsubscribedObserverStopsReceiving(t *testing.T) {
	t.Parallel()

	m := newConfigured(t)

	var count int

	sub := m.OnSuccess().Subscribe(func(machine.Success[string]) { count++ })

	m.Attempt(context.Background(), "B", nil)
	sub.Cancel()
	m.Attempt(context.Background(), "A", nil)

	assert.Equal(t, 1, count)
}

func TestSetTransitionsLastCallWins(t *testing.T) {
	t.Parallel()

	m := machine.New("A", machine.WithLogger[string](slogt.New(t)))
	rec := machinetest.Record(m)

	defer rec.Stop()

	m.SetTransitions(transition.Rule[string]{From: []string{"A"}, To: []string{"B"}})
	m.SetTransitions(transition.Rule[string]{From: []string{"A"}, To: []string{"C"}})

	m.Attempt(context.Background(), "B", nil)
	rec.RequireFailure(t, machine.NoTransition, "A", "B")

	m.Attempt(context.Background(), "C", nil)
	rec.RequireSuccess(t, "A", "C")
}

func TestSubscriberCanReadStateDuringDispatch(t *testing.T) {
	t.Parallel()

	m := newConfigured(t)

	var observed string

	m.OnSuccess().Subscribe(func(e machine.Success[string]) {
		// The commit happens before publish, so accessors already
		// reflect the event.
		observed = m.State()
	})

	m.Attempt(context.Background(), "B", nil)

	assert.Equal(t, "B", observed)
}

func TestConcurrentAttemptsPublishOneEventEach(t *testing.T) {
	t.Parallel()

	m := machine.New("A", machine.WithLogger[string](slogt.New(t)))
	m.SetTransitions(
		transition.Rule[string]{From: []string{"A"}, To: []string{"B"}},
		transition.Rule[string]{From: []string{"B"}, To: []string{"A"}},
	)

	rec := machinetest.Record(m)
	defer rec.Stop()

	const attempts = 200

	var wg sync.WaitGroup

	for i := 0; i < attempts; i++ {
		target := "A"
		if i%2 == 0 {
			target = "B"
		}

		wg.Add(1)

		go func() {
			defer wg.Done()

			m.Attempt(context.Background(), target, nil)
		}()
	}

	wg.Wait()

	assert.Equal(t, attempts, rec.Events(), "exactly one event per attempt")
}

func TestMachinesAreIndependent(t *testing.T) {
	t.Parallel()

	first := newConfigured(t)
	second := newConfigured(t)

	recFirst := machinetest.Record(first)
	defer recFirst.Stop()

	recSecond := machinetest.Record(second)
	defer recSecond.Stop()

	first.Attempt(context.Background(), "B", nil)

	recFirst.RequireCounts(t, 1, 0)
	recSecond.RequireCounts(t, 0, 0)
	assert.Equal(t, "B", first.State())
	assert.Equal(t, "A", second.State())
	assert.NotEqual(t, first.ID(), second.ID())
}

func TestGenericStateTypes(t *testing.T) {
	t.Parallel()

	type phase int

	const (
		idle phase = iota
		running
		stopped
	)

	m := machine.New(idle, machine.WithLogger[phase](slogt.New(t)))
	m.SetTransitions(
		transition.Rule[phase]{From: []phase{idle}, To: []phase{running}},
		transition.Rule[phase]{From: []phase{running}, To: []phase{stopped}},
	)

	rec := machinetest.Record(m)
	defer rec.Stop()

	m.Attempt(context.Background(), running, nil)
	rec.RequireSuccess(t, idle, running)

	m.Attempt(context.Background(), idle, nil)
	rec.RequireFailure(t, machine.NoTransition, running, idle)

	m.Attempt(context.Background(), stopped, nil)
	require.Equal(t, stopped, m.State())
}
