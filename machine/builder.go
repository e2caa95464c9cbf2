package machine

import "github.com/amp-labs/amp-fsm/transition"

// Builder provides a fluent API for assembling a machine together with
// its transition table.
type Builder[S comparable] struct {
	initial S
	rules   []transition.Rule[S]
	opts    []Option[S]
}

// NewBuilder creates a builder for a machine starting in the given state.
func NewBuilder[S comparable](initial S) *Builder[S] {
	return &Builder[S]{initial: initial}
}

// WithContext sets the initial context.
func (b *Builder[S]) WithContext(initial Context) *Builder[S] {
	b.opts = append(b.opts, WithContext[S](initial))

	return b
}

// WithName sets the machine name.
func (b *Builder[S]) WithName(name string) *Builder[S] {
	b.opts = append(b.opts, WithName[S](name))

	return b
}

// WithOptions appends arbitrary construction options.
func (b *Builder[S]) WithOptions(opts ...Option[S]) *Builder[S] {
	b.opts = append(b.opts, opts...)

	return b
}

// Permit adds a rule allowing any state in from to move to any state in to.
func (b *Builder[S]) Permit(from []S, to []S) *Builder[S] {
	b.rules = append(b.rules, transition.Rule[S]{From: from, To: to})

	return b
}

// PermitOne adds a single-edge rule from one state to another.
func (b *Builder[S]) PermitOne(from, to S) *Builder[S] {
	return b.Permit([]S{from}, []S{to})
}

// Build constructs the machine and installs the accumulated rules.
func (b *Builder[S]) Build() *Machine[S] {
	m := New(b.initial, b.opts...)
	m.SetTransitions(b.rules...)

	return m
}
