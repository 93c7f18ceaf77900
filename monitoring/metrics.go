// Package monitoring exposes Prometheus metrics for the tracing
// pipeline.
package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/tracewire/tracewire/trace"
)

// Metrics holds all Prometheus metrics for a tracer. It implements
// trace.Stats so the tracer can be observed without a package cycle.
type Metrics struct {
	SpansStarted   *prometheus.CounterVec
	SpansFinished  prometheus.Counter
	SpansDropped   prometheus.Counter
	SpanDuration   *prometheus.HistogramVec
	ReporterErrors prometheus.Counter
}

var _ trace.Stats = (*Metrics)(nil)

// NewMetrics creates and registers the tracing metrics on the default
// registry.
func NewMetrics() *Metrics {
	return newMetrics(nil)
}

// NewMetricsWith creates the tracing metrics on a caller-owned registry,
// which tests use to avoid duplicate registration.
func NewMetricsWith(reg prometheus.Registerer) *Metrics {
	return newMetrics(reg)
}

func newMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	if reg == nil {
		factory = promauto.With(prometheus.DefaultRegisterer)
	}

	return &Metrics{
		SpansStarted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tracewire_spans_started_total",
				Help: "Total number of spans allocated",
			},
			[]string{"sampled"},
		),
		SpansFinished: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "tracewire_spans_finished_total",
				Help: "Total number of spans finished and handed to the reporter",
			},
		),
		SpansDropped: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "tracewire_spans_dropped_total",
				Help: "Total number of finished spans dropped because the buffer was full",
			},
		),
		SpanDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tracewire_span_duration_seconds",
				Help:    "Recorded span duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"kind"},
		),
		ReporterErrors: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "tracewire_reporter_errors_total",
				Help: "Total number of span export failures",
			},
		),
	}
}

// SpanStarted counts a span allocation.
func (m *Metrics) SpanStarted(sampled bool) {
	label := "false"
	if sampled {
		label = "true"
	}
	m.SpansStarted.WithLabelValues(label).Inc()
}

// SpanFinished counts a finished span and observes its duration.
func (m *Metrics) SpanFinished(kind trace.Kind, durationSeconds float64) {
	m.SpansFinished.Inc()
	m.SpanDuration.WithLabelValues(string(kind)).Observe(durationSeconds)
}

// SpanDropped counts a span lost to a full buffer.
func (m *Metrics) SpanDropped() {
	m.SpansDropped.Inc()
}

// ReporterError counts a span export failure.
func (m *Metrics) ReporterError(error) {
	m.ReporterErrors.Inc()
}
