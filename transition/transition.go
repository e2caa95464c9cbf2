// Package transition defines the declarative permission table a machine
// consults when validating transition attempts.
//
// A table is an ordered collection of rules, each mapping a set of source
// states onto a set of destination states. Tables are read-only once
// built and are replaced wholesale, never edited in place. No validation
// is performed on the rules themselves; a malformed table only surfaces
// as rejected attempts at runtime.
package transition

import "slices"

// Rule declares a permission edge set: any state in From may move to any
// state in To. Both sets must be non-empty for the rule to be meaningful;
// duplicates are allowed and order is irrelevant for matching.
type Rule[S comparable] struct {
	From []S
	To   []S
}

// Permits reports whether this rule allows moving between the given
// states. Membership is an explicit contains check.
func (r Rule[S]) Permits(from, to S) bool {
	return slices.Contains(r.From, from) && slices.Contains(r.To, to)
}

// Table is an ordered, immutable collection of rules.
// The zero value is an empty table, which permits nothing.
type Table[S comparable] struct {
	rules []Rule[S]
}

// NewTable builds a table from the given rules. Rules and their state
// sequences are copied, so later mutation of the arguments has no effect
// on the table.
func NewTable[S comparable](rules ...Rule[S]) Table[S] {
	copied := make([]Rule[S], len(rules))
	for i, r := range rules {
		copied[i] = Rule[S]{
			From: slices.Clone(r.From),
			To:   slices.Clone(r.To),
		}
	}

	return Table[S]{rules: copied}
}

// Empty reports whether the table holds no rules.
func (t Table[S]) Empty() bool {
	return len(t.rules) == 0
}

// Len returns the number of rules in the table.
func (t Table[S]) Len() int {
	return len(t.rules)
}

// Rules returns a copy of the table's rules in declaration order.
func (t Table[S]) Rules() []Rule[S] {
	copied := make([]Rule[S], len(t.rules))
	for i, r := range t.rules {
		copied[i] = Rule[S]{
			From: slices.Clone(r.From),
			To:   slices.Clone(r.To),
		}
	}

	return copied
}

// Allowed reports whether at least one rule permits moving from one state
// to another. This is an existence check over the whole table; rule order
// never affects the outcome.
func (t Table[S]) Allowed(from, to S) bool {
	for _, r := range t.rules {
		if r.Permits(from, to) {
			return true
		}
	}

	return false
}
