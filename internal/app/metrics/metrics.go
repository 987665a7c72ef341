// Package metrics exposes Prometheus collectors for the data layer.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Operation phases recorded per store operation.
const (
	PhasePending   = "pending"
	PhaseFulfilled = "fulfilled"
	PhaseRejected  = "rejected"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	operationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "moringaconnect",
			Subsystem: "store",
			Name:      "operations_total",
			Help:      "Store operation transitions by phase.",
		},
		[]string{"store", "operation", "phase"},
	)

	operationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "moringaconnect",
			Subsystem: "store",
			Name:      "operation_duration_seconds",
			Help:      "Duration from pending dispatch to settlement.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"store", "operation"},
	)

	inflightOperations = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "moringaconnect",
			Subsystem: "store",
			Name:      "inflight_operations",
			Help:      "Operations dispatched but not yet settled.",
		},
	)
)

func init() {
	Registry.MustRegister(operationsTotal, operationDuration, inflightOperations)
}

// ObservePhase records one lifecycle transition for an operation.
func ObservePhase(store, operation, phase string) {
	operationsTotal.WithLabelValues(store, operation, phase).Inc()
	switch phase {
	case PhasePending:
		inflightOperations.Inc()
	case PhaseFulfilled, PhaseRejected:
		inflightOperations.Dec()
	}
}

// ObserveDuration records the pending-to-settlement latency of an operation.
func ObserveDuration(store, operation string, elapsed time.Duration) {
	operationDuration.WithLabelValues(store, operation).Observe(elapsed.Seconds())
}

// Handler returns an HTTP handler that serves the registry.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
