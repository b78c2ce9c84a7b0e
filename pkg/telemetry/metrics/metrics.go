// Package metrics exposes Prometheus metrics for the capacity coordinator.
//
// Metrics:
//   - ceres_provider_calls_total: attempted provider calls by model and outcome
//   - ceres_saved_calls_total: pre-emptively skipped calls by model
//   - ceres_cooldowns_set_total: cooldown writes by model
//   - ceres_cooldown_seconds: duration of the most recent cooldown by model
//   - ceres_model_cooling: per-model cooldown state (1=cooling, 0=ready)
//   - ceres_provider_latency_seconds: provider call latency by model
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics tracks coordinator metrics against a private registry. It
// implements the executor's Metrics interface.
type Metrics struct {
	registry *prometheus.Registry

	// Attempted provider calls by model and outcome
	calls *prometheus.CounterVec

	// Pre-emptively skipped (saved) calls by model
	saved *prometheus.CounterVec

	// Cooldown writes by model
	cooldowns *prometheus.CounterVec

	// Duration of the most recent cooldown by model
	cooldownSeconds *prometheus.GaugeVec

	// Per-model cooldown state (1=cooling, 0=ready)
	cooling *prometheus.GaugeVec

	// Provider call latency by model
	latency *prometheus.HistogramVec
}

// New creates and registers coordinator metrics on a private registry.
func New(namespace string) *Metrics {
	if namespace == "" {
		namespace = "ceres"
	}

	m := &Metrics{
		registry: prometheus.NewRegistry(),

		calls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "provider_calls_total",
				Help:      "Attempted provider calls by model and outcome",
			},
			[]string{"model", "outcome"},
		),

		saved: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "saved_calls_total",
				Help:      "Provider calls avoided because the model was cooling down",
			},
			[]string{"model"},
		),

		cooldowns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cooldowns_set_total",
				Help:      "Cooldown writes by model",
			},
			[]string{"model"},
		),

		cooldownSeconds: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "cooldown_seconds",
				Help:      "Duration of the most recent cooldown by model",
			},
			[]string{"model"},
		),

		cooling: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "model_cooling",
				Help:      "Per-model cooldown state (1=cooling, 0=ready)",
			},
			[]string{"model"},
		),

		latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "provider_latency_seconds",
				Help:      "Provider call latency in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"model"},
		),
	}

	m.registry.MustRegister(
		m.calls,
		m.saved,
		m.cooldowns,
		m.cooldownSeconds,
		m.cooling,
		m.latency,
	)

	return m
}

// RecordCall observes one attempted provider call and its outcome.
func (m *Metrics) RecordCall(model, outcome string, latency time.Duration) {
	m.calls.WithLabelValues(model, outcome).Inc()
	m.latency.WithLabelValues(model).Observe(latency.Seconds())
}

// RecordSaved observes one pre-emptive skip of a cooling model.
func (m *Metrics) RecordSaved(model string) {
	m.saved.WithLabelValues(model).Inc()
}

// RecordCooldown observes a cooldown write.
func (m *Metrics) RecordCooldown(model string, d time.Duration) {
	m.cooldowns.WithLabelValues(model).Inc()
	m.cooldownSeconds.WithLabelValues(model).Set(d.Seconds())
}

// UpdateModelState reflects the current cooldown state of a model, as
// refreshed by the server's status snapshot.
func (m *Metrics) UpdateModelState(model string, coolingDown bool) {
	value := 0.0
	if coolingDown {
		value = 1.0
	}
	m.cooling.WithLabelValues(model).Set(value)
}

// Handler returns the HTTP handler serving the registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
