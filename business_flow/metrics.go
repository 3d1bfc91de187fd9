package businessflow

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Workflow outcomes partitioned by operation and result (ok or error kind)
	operationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "usbest_operations_total",
			Help: "Participation, admission and adoption operations by outcome",
		},
		[]string{"operation", "outcome"},
	)

	// Best-effort steps partitioned by name and outcome
	sideEffectsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "usbest_side_effects_total",
			Help: "Non-critical side effects by outcome",
		},
		[]string{"name", "outcome"},
	)

	adCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "usbest_ad_cache_lookups_total",
			Help: "Ad cache lookups by result",
		},
		[]string{"result"},
	)
)

func outcomeLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case IsValidation(err):
		return "validation"
	case IsNotFound(err):
		return "not_found"
	case IsDuplicate(err):
		return "duplicate"
	case IsCapacity(err):
		return "capacity"
	case IsConflict(err):
		return "conflict"
	case IsUnauthorized(err):
		return "unauthorized"
	default:
		return "error"
	}
}

// observe records the outcome of a workflow operation
func observe(operation string, err error) {
	operationsTotal.WithLabelValues(operation, outcomeLabel(err)).Inc()
}
