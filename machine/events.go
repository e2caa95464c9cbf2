package machine

// ErrorKind classifies why a transition attempt was rejected. The three
// kinds are exhaustive and mutually exclusive: validation applies them in
// a strict order and stops at the first match.
type ErrorKind string

const (
	// EmptyTransitions means no transition table has been configured.
	// Every attempt fails this way until SetTransitions is called,
	// forcing explicit configuration before use.
	EmptyTransitions ErrorKind = "empty_transitions"

	// SameState means the target equals the current active state.
	// Self-transitions are always rejected, even when a rule nominally
	// permits them.
	SameState ErrorKind = "same_state"

	// NoTransition means no configured rule connects the current state
	// to the target.
	NoTransition ErrorKind = "no_transition"
)

// Success is published after a transition has been committed. From is the
// state before mutation, To the requested target, and Context the merged
// context as stored after the transition; observers never see a torn view
// relative to the machine's own accessors.
type Success[S comparable] struct {
	From    S
	To      S
	Context Context
}

// Failure is published when an attempt is rejected. The machine's state
// and context are untouched; From and To identify the rejected attempt
// for diagnostics.
type Failure[S comparable] struct {
	Kind ErrorKind
	From S
	To   S
}
