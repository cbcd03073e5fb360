package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"mercator-hq/tonecoach/pkg/config"
)

// ProviderMetrics tracks the model endpoints.
//
// Metrics:
//   - tonecoach_stream_first_chunk_seconds: time to the first delta
//   - tonecoach_provider_errors_total: provider errors by type
//   - tonecoach_provider_health: provider health (1=healthy, 0=unhealthy)
type ProviderMetrics struct {
	firstChunk *prometheus.HistogramVec
	errors     *prometheus.CounterVec
	health     *prometheus.GaugeVec
}

// NewProviderMetrics creates and registers provider metrics with the provided registry.
func NewProviderMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *ProviderMetrics {
	pm := &ProviderMetrics{
		firstChunk: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Name:      "stream_first_chunk_seconds",
				Help:      "Time from opening a model stream to its first delta in seconds",
				Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"provider"},
		),

		errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "provider_errors_total",
				Help:      "Total number of provider errors by type",
			},
			[]string{"provider", "error_type"},
		),

		health: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Name:      "provider_health",
				Help:      "Provider health status (1=healthy, 0=unhealthy)",
			},
			[]string{"provider"},
		),
	}

	registry.MustRegister(
		pm.firstChunk,
		pm.errors,
		pm.health,
	)

	return pm
}

// RecordFirstChunk observes the time to first delta.
func (pm *ProviderMetrics) RecordFirstChunk(provider string, d time.Duration) {
	pm.firstChunk.WithLabelValues(provider).Observe(d.Seconds())
}

// RecordError counts a provider error.
func (pm *ProviderMetrics) RecordError(provider, errorType string) {
	pm.errors.WithLabelValues(provider, errorType).Inc()
}

// UpdateHealth sets the health gauge.
func (pm *ProviderMetrics) UpdateHealth(provider string, healthy bool) {
	value := 0.0
	if healthy {
		value = 1.0
	}
	pm.health.WithLabelValues(provider).Set(value)
}
