// Package metrics holds the Prometheus instruments of the timekeeping core.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "timekeeping"

// Metrics groups the counters updated by the punch and incident services.
type Metrics struct {
	// PunchesCreated counts inserted punches by origin (direct, incident).
	PunchesCreated *prometheus.CounterVec
	// PunchRejections counts validator and matcher refusals by reason.
	PunchRejections *prometheus.CounterVec
	// IncidentOutcomes counts processed incident items by resulting state.
	IncidentOutcomes *prometheus.CounterVec
	// IncidentBatchDuration observes the wall time of a processing batch.
	IncidentBatchDuration prometheus.Histogram
}

// New creates the instruments and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		PunchesCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "punch",
			Name:      "created_total",
			Help:      "Total punches inserted by origin",
		}, []string{"origin"}),
		PunchRejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "punch",
			Name:      "rejected_total",
			Help:      "Total punch candidates refused by reason",
		}, []string{"reason"}),
		IncidentOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "incident",
			Name:      "outcomes_total",
			Help:      "Total processed incident items by outcome",
		}, []string{"outcome"}),
		IncidentBatchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "incident",
			Name:      "batch_duration_seconds",
			Help:      "Incident batch processing duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
	}
	reg.MustRegister(m.PunchesCreated, m.PunchRejections, m.IncidentOutcomes, m.IncidentBatchDuration)
	return m
}

// NewNop returns instruments registered on a private registry, for tests and
// tools that do not expose /metrics.
func NewNop() *Metrics {
	return New(prometheus.NewRegistry())
}
