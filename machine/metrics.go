package machine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metric outcome constants.
const (
	outcomeSuccess = "success"
	outcomeError   = "error"
)

// Metric definitions. Labels carry the machine name rather than state
// values: states are application-defined and would blow up cardinality.
var (
	attemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{ //nolint:gochecknoglobals
		Name: "fsm_attempts_total",
		Help: "Total transition attempts by machine and outcome (success or error)",
	}, []string{"machine", "outcome"})

	rejectionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{ //nolint:gochecknoglobals
		Name: "fsm_rejections_total",
		Help: "Rejected transition attempts by machine and error kind",
	}, []string{"machine", "kind"})
)

func sanitizeMachine(name string) string {
	if name == "" {
		return "unknown"
	}

	return name
}
