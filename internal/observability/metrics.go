package observability

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "capability_resolver"

// Metrics collects resolution metrics.
type Metrics interface {
	RecordResolution(ctx context.Context, labels ResolutionLabels)
	RecordLatency(ctx context.Context, seconds float64, labels ResolutionLabels)
	RecordUnresolved(ctx context.Context, capability string, labels ResolutionLabels)
}

// ResolutionLabels contains metric dimensions.
type ResolutionLabels struct {
	Strategy string
	Status   string
}

const (
	// StatusComplete means every required capability was bound
	StatusComplete = "complete"
	// StatusPartial means at least one required capability stayed unbound
	StatusPartial = "partial"
	// StatusFailed means the provider registry could not be read
	StatusFailed = "failed"
)

// PrometheusMetrics exports resolution metrics through Prometheus collectors
type PrometheusMetrics struct {
	resolutions *prometheus.CounterVec
	latency     *prometheus.HistogramVec
	unresolved  *prometheus.CounterVec
}

var _ Metrics = (*PrometheusMetrics)(nil)

// NewPrometheusMetrics creates the collectors and registers them with reg
func NewPrometheusMetrics(reg prometheus.Registerer) *PrometheusMetrics {
	m := &PrometheusMetrics{
		resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "routing",
			Name:      "resolutions_total",
			Help:      "Number of scenario resolutions by strategy and outcome.",
		}, []string{"strategy", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "routing",
			Name:      "resolution_duration_seconds",
			Help:      "Time spent resolving a scenario, including the provider registry lookup.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}, []string{"strategy"}),
		unresolved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "routing",
			Name:      "unresolved_capabilities_total",
			Help:      "Number of required capabilities no active provider could serve.",
		}, []string{"strategy", "capability"}),
	}
	reg.MustRegister(m.resolutions, m.latency, m.unresolved)
	return m
}

func (m *PrometheusMetrics) RecordResolution(ctx context.Context, labels ResolutionLabels) {
	m.resolutions.WithLabelValues(labels.Strategy, labels.Status).Inc()
}

func (m *PrometheusMetrics) RecordLatency(ctx context.Context, seconds float64, labels ResolutionLabels) {
	m.latency.WithLabelValues(labels.Strategy).Observe(seconds)
}

func (m *PrometheusMetrics) RecordUnresolved(ctx context.Context, capability string, labels ResolutionLabels) {
	m.unresolved.WithLabelValues(labels.Strategy, capability).Inc()
}

// NopMetrics discards every observation
type NopMetrics struct{}

var _ Metrics = NopMetrics{}

func (NopMetrics) RecordResolution(context.Context, ResolutionLabels)          {}
func (NopMetrics) RecordLatency(context.Context, float64, ResolutionLabels)    {}
func (NopMetrics) RecordUnresolved(context.Context, string, ResolutionLabels) {}
