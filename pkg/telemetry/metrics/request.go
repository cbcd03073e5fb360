package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"mercator-hq/tonecoach/pkg/config"
)

// RequestMetrics tracks HTTP requests.
//
// Metrics:
//   - tonecoach_requests_total: requests by mode and status
//   - tonecoach_request_duration_seconds: request duration by mode
type RequestMetrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// NewRequestMetrics creates and registers request metrics with the provided registry.
func NewRequestMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *RequestMetrics {
	rm := &RequestMetrics{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "requests_total",
				Help:      "Total number of coaching requests",
			},
			[]string{"mode", "status"},
		),

		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Name:      "request_duration_seconds",
				Help:      "Duration of requests in seconds, stream included",
				Buckets:   cfg.RequestDurationBuckets,
			},
			[]string{"mode"},
		),
	}

	registry.MustRegister(
		rm.requestsTotal,
		rm.requestDuration,
	)

	return rm
}

// RecordRequest counts a request and observes its duration.
func (rm *RequestMetrics) RecordRequest(mode, status string, duration time.Duration) {
	rm.requestsTotal.WithLabelValues(mode, status).Inc()
	rm.requestDuration.WithLabelValues(mode).Observe(duration.Seconds())
}
