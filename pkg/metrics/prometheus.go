package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	queriesTotal   *prometheus.CounterVec
	providerErrors *prometheus.CounterVec
	cascadeDepth   prometheus.Histogram
	latency        *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		queriesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "assistant_queries_total",
				Help: "Total number of assistant queries processed",
			},
			[]string{"intent"},
		),
		providerErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "assistant_provider_errors_total",
				Help: "Total number of provider failures by kind",
			},
			[]string{"provider", "kind"},
		),
		cascadeDepth: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "assistant_cascade_depth",
				Help:    "Number of reasoning providers tried before a query was answered",
				Buckets: []float64{0, 1, 2, 3, 4, 5},
			},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "assistant_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordQuery records a processed query by intent.
func (r *Recorder) RecordQuery(intent string) {
	r.queriesTotal.WithLabelValues(intent).Inc()
}

// RecordProviderError records a provider failure occurrence.
func (r *Recorder) RecordProviderError(provider, kind string) {
	r.providerErrors.WithLabelValues(provider, kind).Inc()
}

// RecordCascadeDepth records how many providers a query cascaded through.
func (r *Recorder) RecordCascadeDepth(depth int) {
	r.cascadeDepth.Observe(float64(depth))
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
