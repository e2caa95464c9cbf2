// Package visualizer renders transition tables as Mermaid state diagrams
// for documentation and debugging.
package visualizer

import (
	"fmt"
	"strings"

	"facette.io/natsort"

	"github.com/amp-labs/amp-fsm/transition"
)

// Options controls diagram rendering.
type Options struct {
	// Direction is the Mermaid stateDiagram variant suffix.
	Direction string
	// Fenced wraps the output in a ```mermaid code fence.
	Fenced bool
}

// DefaultOptions returns the standard rendering options.
func DefaultOptions() Options {
	return Options{
		Direction: "v2",
		Fenced:    true,
	}
}

// GenerateMermaid converts a table to a Mermaid state diagram using the
// default options.
func GenerateMermaid[S comparable](initial S, rules []transition.Rule[S]) string {
	return GenerateMermaidWithOptions(initial, rules, DefaultOptions())
}

// GenerateMermaidWithOptions renders one edge per distinct permitted
// (from, to) pair. Output is deterministic: edges are expanded from the
// rules, deduplicated, and naturally sorted.
func GenerateMermaidWithOptions[S comparable](initial S, rules []transition.Rule[S], opts Options) string {
	var sb strings.Builder

	if opts.Fenced {
		sb.WriteString("```mermaid\n")
	}

	sb.WriteString(fmt.Sprintf("stateDiagram-%s\n", opts.Direction))
	sb.WriteString(fmt.Sprintf("    [*] --> %v\n", initial))

	for _, edge := range edgeLines(rules) {
		sb.WriteString("    " + edge + "\n")
	}

	if opts.Fenced {
		sb.WriteString("```\n")
	}

	return sb.String()
}

func edgeLines[S comparable](rules []transition.Rule[S]) []string {
	seen := make(map[string]bool)

	var edges []string

	for _, rule := range rules {
		for _, from := range rule.From {
			for _, to := range rule.To {
				edge := fmt.Sprintf("%v --> %v", from, to)
				if !seen[edge] {
					seen[edge] = true

					edges = append(edges, edge)
				}
			}
		}
	}

	natsort.Sort(edges)

	return edges
}
