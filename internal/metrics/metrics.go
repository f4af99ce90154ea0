// Package metrics provides Prometheus metrics for the HTTP layer and the publish gates.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "published"

// Gate labels.
const (
	GateList   = "list"
	GateDetail = "detail"
)

// Gate outcomes.
const (
	OutcomeShown    = "shown"
	OutcomeHidden   = "hidden"
	OutcomeNotFound = "not_found"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by method, route, and status code",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "route"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_in_flight",
			Help:      "Number of HTTP requests currently being processed",
		},
	)

	// GateDecisions counts records passed or withheld by a publish gate.
	// The detail gate only reports "shown" and "not_found"; a hidden record
	// counts as not_found so the endpoint cannot reveal that it exists.
	GateDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "gate",
			Name:      "decisions_total",
			Help:      "Records passed or withheld by the publish gates",
		},
		[]string{"gate", "outcome"},
	)
)

// ObserveListGate records the result of filtering a listing.
func ObserveListGate(candidates, shown int) {
	if shown > 0 {
		GateDecisions.WithLabelValues(GateList, OutcomeShown).Add(float64(shown))
	}
	if hidden := candidates - shown; hidden > 0 {
		GateDecisions.WithLabelValues(GateList, OutcomeHidden).Add(float64(hidden))
	}
}

// ObserveDetailGate records a single-object gate decision.
func ObserveDetailGate(outcome string) {
	GateDecisions.WithLabelValues(GateDetail, outcome).Inc()
}
