package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"mercator-hq/tonecoach/pkg/config"
)

// DraftMetrics tracks what happens after a stream ends.
//
// Metrics:
//   - tonecoach_extraction_failures_total: outputs without their section
//   - tonecoach_drafts_total: drafts by status (created, failed, skipped)
type DraftMetrics struct {
	extractionFailures *prometheus.CounterVec
	draftsTotal        *prometheus.CounterVec
}

// NewDraftMetrics creates and registers draft metrics with the provided registry.
func NewDraftMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *DraftMetrics {
	dm := &DraftMetrics{
		extractionFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "extraction_failures_total",
				Help:      "Total number of model outputs missing the expected section",
			},
			[]string{"mode"},
		),

		draftsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "drafts_total",
				Help:      "Total number of draft replies by status",
			},
			[]string{"status"},
		),
	}

	registry.MustRegister(
		dm.extractionFailures,
		dm.draftsTotal,
	)

	return dm
}

// RecordExtractionFailure counts an output without its section.
func (dm *DraftMetrics) RecordExtractionFailure(mode string) {
	dm.extractionFailures.WithLabelValues(mode).Inc()
}

// RecordDraft counts a draft outcome.
func (dm *DraftMetrics) RecordDraft(status string) {
	dm.draftsTotal.WithLabelValues(status).Inc()
}
