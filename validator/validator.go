// Package validator performs opt-in linting of transition tables. The
// machine itself never validates rules; this package exists for tooling
// and tests that want to catch dead or malformed configuration before it
// surfaces as rejected attempts at runtime.
package validator

import (
	"fmt"
	"slices"

	"github.com/amp-labs/amp-fsm/transition"
)

// Severity defines the severity level of a reported issue.
type Severity int

const (
	// SeverityError marks configuration the table lookup can never honor.
	SeverityError Severity = iota
	// SeverityWarning marks configuration that is legal but suspicious.
	SeverityWarning
)

// Issue codes.
const (
	CodeEmptyTable       = "EMPTY_TABLE"
	CodeEmptyFromSet     = "EMPTY_FROM_SET"
	CodeEmptyToSet       = "EMPTY_TO_SET"
	CodeDuplicateRule    = "DUPLICATE_RULE"
	CodeSelfTransition   = "SELF_TRANSITION"
	CodeUnreachableState = "UNREACHABLE_STATE"
)

// Issue describes a single problem found in a table.
type Issue struct {
	Code     string
	Severity Severity
	Message  string
}

// Result aggregates the issues found by Check.
type Result struct {
	Issues []Issue
}

// Valid reports whether no error-severity issues were found.
func (r Result) Valid() bool {
	for _, issue := range r.Issues {
		if issue.Severity == SeverityError {
			return false
		}
	}

	return true
}

// Errors returns the error-severity issues.
func (r Result) Errors() []Issue {
	return r.filter(SeverityError)
}

// Warnings returns the warning-severity issues.
func (r Result) Warnings() []Issue {
	return r.filter(SeverityWarning)
}

func (r Result) filter(sev Severity) []Issue {
	var out []Issue

	for _, issue := range r.Issues {
		if issue.Severity == sev {
			out = append(out, issue)
		}
	}

	return out
}

// Check lints the rules of a machine that starts in initial.
//
// Errors: rules with an empty from or to set (such rules can never match).
// Warnings: an entirely empty table, duplicate rules, permitted
// self-transitions (always rejected at runtime regardless of the table),
// and states mentioned in the rules that no chain of permitted
// transitions can reach from the initial state.
func Check[S comparable](initial S, rules []transition.Rule[S]) Result {
	var result Result

	if len(rules) == 0 {
		result.Issues = append(result.Issues, Issue{
			Code:     CodeEmptyTable,
			Severity: SeverityWarning,
			Message:  "table has no rules: every attempt will be rejected",
		})

		return result
	}

	result.Issues = append(result.Issues, checkRuleSets(rules)...)
	result.Issues = append(result.Issues, checkDuplicates(rules)...)
	result.Issues = append(result.Issues, checkSelfTransitions(rules)...)
	result.Issues = append(result.Issues, checkReachability(initial, rules)...)

	return result
}

func checkRuleSets[S comparable](rules []transition.Rule[S]) []Issue {
	var issues []Issue

	for i, rule := range rules {
		if len(rule.From) == 0 {
			issues = append(issues, Issue{
				Code:     CodeEmptyFromSet,
				Severity: SeverityError,
				Message:  fmt.Sprintf("rule %d has an empty from set and can never match", i),
			})
		}

		if len(rule.To) == 0 {
			issues = append(issues, Issue{
				Code:     CodeEmptyToSet,
				Severity: SeverityError,
				Message:  fmt.Sprintf("rule %d has an empty to set and can never match", i),
			})
		}
	}

	return issues
}

func checkDuplicates[S comparable](rules []transition.Rule[S]) []Issue {
	var issues []Issue

	for i, rule := range rules {
		for j := i + 1; j < len(rules); j++ {
			if slices.Equal(rule.From, rules[j].From) && slices.Equal(rule.To, rules[j].To) {
				issues = append(issues, Issue{
					Code:     CodeDuplicateRule,
					Severity: SeverityWarning,
					Message:  fmt.Sprintf("rule %d duplicates rule %d", j, i),
				})
			}
		}
	}

	return issues
}

func checkSelfTransitions[S comparable](rules []transition.Rule[S]) []Issue {
	var issues []Issue

	seen := make(map[S]bool)

	for _, rule := range rules {
		for _, state := range rule.From {
			if seen[state] {
				continue
			}

			if slices.Contains(rule.To, state) {
				seen[state] = true

				issues = append(issues, Issue{
					Code:     CodeSelfTransition,
					Severity: SeverityWarning,
					Message:  fmt.Sprintf("self-transition permitted for %v is always rejected at runtime", state),
				})
			}
		}
	}

	return issues
}

// checkReachability walks the permitted graph from initial, skipping
// self-edges since the machine rejects them, and flags every state the
// walk never visits.
func checkReachability[S comparable](initial S, rules []transition.Rule[S]) []Issue {
	mentioned := make(map[S]bool)
	order := make([]S, 0)

	note := func(state S) {
		if !mentioned[state] {
			mentioned[state] = true

			order = append(order, state)
		}
	}

	for _, rule := range rules {
		for _, state := range rule.From {
			note(state)
		}

		for _, state := range rule.To {
			note(state)
		}
	}

	table := transition.NewTable(rules...)
	visited := map[S]bool{initial: true}
	frontier := []S{initial}

	for len(frontier) > 0 {
		current := frontier[0]
		frontier = frontier[1:]

		for _, candidate := range order {
			if visited[candidate] || candidate == current {
				continue
			}

			if table.Allowed(current, candidate) {
				visited[candidate] = true

				frontier = append(frontier, candidate)
			}
		}
	}

	var issues []Issue

	for _, state := range order {
		if !visited[state] {
			issues = append(issues, Issue{
				Code:     CodeUnreachableState,
				Severity: SeverityWarning,
				Message:  fmt.Sprintf("state %v is not reachable from the initial state", state),
			})
		}
	}

	return issues
}
