package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"mercator-hq/tonecoach/pkg/config"
)

// UsageMetrics tracks tokens and cost.
//
// Metrics:
//   - tonecoach_tokens_total: tokens by model, type (prompt, completion)
//     and source (provider, estimated)
//   - tonecoach_cost_usd_total: cost in USD by model
//   - tonecoach_tokenizer_disabled: 1 when local estimation is unavailable
type UsageMetrics struct {
	tokensTotal       *prometheus.CounterVec
	costTotal         *prometheus.CounterVec
	tokenizerDisabled prometheus.Gauge
}

// NewUsageMetrics creates and registers usage metrics with the provided registry.
func NewUsageMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *UsageMetrics {
	um := &UsageMetrics{
		tokensTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "tokens_total",
				Help:      "Total number of tokens by model, type and source",
			},
			[]string{"model", "type", "source"},
		),

		costTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "cost_usd_total",
				Help:      "Total estimated cost in USD by model",
			},
			[]string{"model"},
		),

		tokenizerDisabled: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Name:      "tokenizer_disabled",
				Help:      "1 when the local tokenizer is unavailable and estimates are zero",
			},
		),
	}

	registry.MustRegister(
		um.tokensTotal,
		um.costTotal,
		um.tokenizerDisabled,
	)

	return um
}

// RecordTokens adds prompt and completion tokens.
func (um *UsageMetrics) RecordTokens(model, source string, promptTokens, completionTokens int) {
	if promptTokens > 0 {
		um.tokensTotal.WithLabelValues(model, "prompt", source).Add(float64(promptTokens))
	}
	if completionTokens > 0 {
		um.tokensTotal.WithLabelValues(model, "completion", source).Add(float64(completionTokens))
	}
}

// RecordCost adds a cost. Zero and negative costs are ignored.
func (um *UsageMetrics) RecordCost(model string, usd float64) {
	if usd <= 0 {
		return
	}
	um.costTotal.WithLabelValues(model).Add(usd)
}

// SetTokenizerDisabled sets the tokenizer gauge.
func (um *UsageMetrics) SetTokenizerDisabled(disabled bool) {
	if disabled {
		um.tokenizerDisabled.Set(1)
		return
	}
	um.tokenizerDisabled.Set(0)
}
