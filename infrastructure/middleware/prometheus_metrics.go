// Package middleware provides cross-cutting observability for the
// counting pipeline.
package middleware

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/preflib/runoff/internal/ports"
)

var _ ports.MetricsCollector = (*PrometheusMetrics)(nil)

// PrometheusMetrics implements the MetricsCollector interface using
// Prometheus. It tracks normalization volume, count latency, and the
// distribution of rounds per count.
type PrometheusMetrics struct {
	countLatency     *prometheus.HistogramVec
	roundsPerCount   *prometheus.HistogramVec
	operationCounter *prometheus.CounterVec
	systemGauges     *prometheus.GaugeVec
}

// NewPrometheusMetrics creates a PrometheusMetrics instance registered
// in the global Prometheus registry.
func NewPrometheusMetrics() *PrometheusMetrics {
	return NewPrometheusMetricsWith(prometheus.DefaultRegisterer)
}

// NewPrometheusMetricsWith registers the metrics with the given
// registerer. Tests use this with a private registry to avoid duplicate
// registration panics.
func NewPrometheusMetricsWith(reg prometheus.Registerer) *PrometheusMetrics {
	factory := promauto.With(reg)
	return &PrometheusMetrics{
		countLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "count_duration_seconds",
				Help:    "Wall time of full election counts.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation", "outcome"},
		),
		roundsPerCount: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "count_rounds",
				Help:    "Number of tally rounds needed to terminate a count.",
				Buckets: []float64{1, 2, 3, 5, 8, 13, 21},
			},
			[]string{"outcome"},
		),
		operationCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "count_operations_total",
				Help: "Total pipeline events: counts completed, ballots normalized, ballots rejected.",
			},
			[]string{"metric", "outcome"},
		),
		systemGauges: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "count_state",
				Help: "Point-in-time values observed at count termination.",
			},
			[]string{"metric", "outcome"},
		),
	}
}

// RecordLatency implements the MetricsCollector interface by recording
// operation wall time in a Prometheus histogram.
func (pm *PrometheusMetrics) RecordLatency(
	operation string, duration time.Duration, labels map[string]string,
) {
	pm.countLatency.WithLabelValues(operation, outcomeOf(labels)).Observe(duration.Seconds())
}

// RecordCounter implements the MetricsCollector interface by
// incrementing Prometheus counters.
func (pm *PrometheusMetrics) RecordCounter(
	metric string, value float64, labels map[string]string,
) {
	pm.operationCounter.WithLabelValues(metric, outcomeOf(labels)).Add(value)
}

// RecordGauge implements the MetricsCollector interface by setting
// Prometheus gauge values.
func (pm *PrometheusMetrics) RecordGauge(
	metric string, value float64, labels map[string]string,
) {
	pm.systemGauges.WithLabelValues(metric, outcomeOf(labels)).Set(value)
}

// RecordHistogram implements the MetricsCollector interface by
// recording distribution samples, currently the rounds-per-count
// histogram.
func (pm *PrometheusMetrics) RecordHistogram(
	metric string, value float64, labels map[string]string,
) {
	switch metric {
	case "count_rounds":
		pm.roundsPerCount.WithLabelValues(outcomeOf(labels)).Observe(value)
	default:
		pm.systemGauges.WithLabelValues(metric, outcomeOf(labels)).Set(value)
	}
}

func outcomeOf(labels map[string]string) string {
	outcome, ok := labels["outcome"]
	if !ok {
		return "unknown"
	}
	return outcome
}
