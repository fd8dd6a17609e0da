// Package metrics exposes Prometheus metrics for the gateway.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// CorrelationMetrics counts correlation decisions by lifecycle phase and outcome.
type CorrelationMetrics struct {
	registry *prometheus.Registry
	ids      *prometheus.CounterVec
}

// NewCorrelationMetrics creates the collectors on a private registry.
func NewCorrelationMetrics() *CorrelationMetrics {
	registry := prometheus.NewRegistry()
	ids := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gateway",
		Name:      "correlation_ids_total",
		Help:      "Correlation id decisions by lifecycle phase and outcome.",
	}, []string{"phase", "outcome"})
	registry.MustRegister(ids)

	return &CorrelationMetrics{registry: registry, ids: ids}
}

// Observe implements correlation.Observer.
func (m *CorrelationMetrics) Observe(phase, outcome string) {
	m.ids.WithLabelValues(phase, outcome).Inc()
}

// Counter returns the underlying counter for phase and outcome.
func (m *CorrelationMetrics) Counter(phase, outcome string) prometheus.Counter {
	return m.ids.WithLabelValues(phase, outcome)
}

// Handler serves the registry in the Prometheus exposition format.
func (m *CorrelationMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
