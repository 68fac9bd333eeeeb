// Package metrics provides Prometheus observability for the extraction
// pipeline. A nil *Metrics is a valid no-op, so instrumentation stays
// optional for library callers.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the pipeline's instruments.
type Metrics struct {
	// Retrievals by winning strategy and whether a value was found
	Retrievals *prometheus.CounterVec

	// Confidence distribution of returned matches
	RetrievalConfidence prometheus.Histogram

	// Validation results by stage, severity and validity
	Validations *prometheus.CounterVec

	// Rankings whose top candidates tied within the epsilon
	AmbiguousRankings prometheus.Counter

	// Full request processing latency
	ProcessLatency prometheus.Histogram
}

// New creates a Metrics instance registered on reg. A nil reg uses the
// default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		Retrievals: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "fieldwise_retrievals_total",
			Help: "Total field retrievals by winning strategy and outcome",
		}, []string{"strategy", "found"}),

		RetrievalConfidence: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "fieldwise_retrieval_confidence",
			Help:    "Confidence distribution of returned retrieval matches",
			Buckets: []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1},
		}),

		Validations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "fieldwise_validations_total",
			Help: "Total validation checks by stage, severity and validity",
		}, []string{"stage", "severity", "valid"}),

		AmbiguousRankings: factory.NewCounter(prometheus.CounterOpts{
			Name: "fieldwise_ambiguous_rankings_total",
			Help: "Total rankings whose top candidates tied within the epsilon",
		}),

		ProcessLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "fieldwise_process_duration_seconds",
			Help:    "Duration of full request processing",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// ObserveRetrieval records one finished retrieval.
func (m *Metrics) ObserveRetrieval(strategy string, found bool, confidence float64) {
	if m != nil {
		m.Retrievals.WithLabelValues(strategy, boolLabel(found)).Inc()
		m.RetrievalConfidence.Observe(confidence)
	}
}

// ObserveValidation records one validation check.
func (m *Metrics) ObserveValidation(stage, severity string, valid bool) {
	if m != nil {
		m.Validations.WithLabelValues(stage, severity, boolLabel(valid)).Inc()
	}
}

// IncrementAmbiguous records a ranking that ended in a tie.
func (m *Metrics) IncrementAmbiguous() {
	if m != nil {
		m.AmbiguousRankings.Inc()
	}
}

// ObserveProcessLatency records the duration of one full request.
func (m *Metrics) ObserveProcessLatency(d time.Duration) {
	if m != nil {
		m.ProcessLatency.Observe(d.Seconds())
	}
}

func boolLabel(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
