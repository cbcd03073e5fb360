package metrics

import (
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"mercator-hq/tonecoach/pkg/config"
)

// Collector records every tonecoach metric. All methods are safe for
// concurrent use and do nothing when metrics are disabled.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	requestMetrics  *RequestMetrics
	providerMetrics *ProviderMetrics
	usageMetrics    *UsageMetrics
	draftMetrics    *DraftMetrics

	cardinalityLimiter *CardinalityLimiter
}

// defaultMaxModels bounds the distinct model labels.
const defaultMaxModels = 100

// NewCollector creates a collector registering into registry, or into a
// new registry when registry is nil. The process-wide default registry is
// never used, so tests can build as many collectors as they like.
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	settings := *cfg
	if settings.Namespace == "" {
		settings.Namespace = "tonecoach"
	}
	if len(settings.RequestDurationBuckets) == 0 {
		// Streams of a local model run from seconds to minutes.
		settings.RequestDurationBuckets = []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300}
	}

	return &Collector{
		config:             &settings,
		registry:           registry,
		requestMetrics:     NewRequestMetrics(&settings, registry),
		providerMetrics:    NewProviderMetrics(&settings, registry),
		usageMetrics:       NewUsageMetrics(&settings, registry),
		draftMetrics:       NewDraftMetrics(&settings, registry),
		cardinalityLimiter: NewCardinalityLimiter(defaultMaxModels),
	}
}

// RecordRequest records a finished HTTP request.
//
// Parameters:
//   - mode: "coach", "madlibs", "thread" or "threads"
//   - status: relay state or an error class such as "bad_request"
//   - duration: total request duration
func (c *Collector) RecordRequest(mode, status string, duration time.Duration) {
	if !c.config.Enabled {
		return
	}
	c.requestMetrics.RecordRequest(mode, status, duration)
}

// RecordFirstChunk records the time from opening a stream to its first
// non-empty delta.
func (c *Collector) RecordFirstChunk(provider string, d time.Duration) {
	if !c.config.Enabled {
		return
	}
	c.providerMetrics.RecordFirstChunk(provider, d)
}

// RecordProviderError records a failed provider call.
//
// Parameters:
//   - provider: "local" or "hosted"
//   - errorType: "auth", "rate_limit", "timeout", "parse", "config",
//     "stream", "upstream" or "unknown"
func (c *Collector) RecordProviderError(provider, errorType string) {
	if !c.config.Enabled {
		return
	}
	c.providerMetrics.RecordError(provider, errorType)
}

// UpdateProviderHealth sets the health gauge of a provider.
func (c *Collector) UpdateProviderHealth(provider string, healthy bool) {
	if !c.config.Enabled {
		return
	}
	c.providerMetrics.UpdateHealth(provider, healthy)
}

// RecordTokens records the tokens of one completion.
//
// Parameters:
//   - model: model identifier
//   - source: "provider" or "estimated"
func (c *Collector) RecordTokens(model, source string, promptTokens, completionTokens int) {
	if !c.config.Enabled {
		return
	}
	c.usageMetrics.RecordTokens(c.modelLabel(model), source, promptTokens, completionTokens)
}

// RecordCost records the USD cost of one completion.
func (c *Collector) RecordCost(model string, usd float64) {
	if !c.config.Enabled {
		return
	}
	c.usageMetrics.RecordCost(c.modelLabel(model), usd)
}

// SetTokenizerDisabled reports whether local token estimation is off.
func (c *Collector) SetTokenizerDisabled(disabled bool) {
	if !c.config.Enabled {
		return
	}
	c.usageMetrics.SetTokenizerDisabled(disabled)
}

// RecordExtractionFailure records model output missing its section.
func (c *Collector) RecordExtractionFailure(mode string) {
	if !c.config.Enabled {
		return
	}
	c.draftMetrics.RecordExtractionFailure(mode)
}

// RecordDraft records a draft outcome: "created", "failed" or "skipped".
func (c *Collector) RecordDraft(status string) {
	if !c.config.Enabled {
		return
	}
	c.draftMetrics.RecordDraft(status)
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

func (c *Collector) modelLabel(model string) string {
	if model == "" {
		return "unknown"
	}
	if !c.cardinalityLimiter.Allow(fmt.Sprintf("model:%s", model)) {
		return "other"
	}
	return model
}

// CardinalityLimiter prevents metric cardinality explosion by limiting
// the number of unique label values.
type CardinalityLimiter struct {
	maxCardinality int
	current        map[string]struct{}
	mu             sync.RWMutex
}

// NewCardinalityLimiter creates a new cardinality limiter with the specified
// maximum cardinality.
func NewCardinalityLimiter(maxCardinality int) *CardinalityLimiter {
	return &CardinalityLimiter{
		maxCardinality: maxCardinality,
		current:        make(map[string]struct{}),
	}
}

// Allow reports whether labelSet may be used: it is already known or there
// is room for it.
func (cl *CardinalityLimiter) Allow(labelSet string) bool {
	cl.mu.RLock()
	if _, exists := cl.current[labelSet]; exists {
		cl.mu.RUnlock()
		return true
	}
	cl.mu.RUnlock()

	cl.mu.Lock()
	defer cl.mu.Unlock()

	// Double-check after acquiring write lock
	if _, exists := cl.current[labelSet]; exists {
		return true
	}

	if len(cl.current) >= cl.maxCardinality {
		return false
	}

	cl.current[labelSet] = struct{}{}
	return true
}

// Count returns the current cardinality.
func (cl *CardinalityLimiter) Count() int {
	cl.mu.RLock()
	defer cl.mu.RUnlock()
	return len(cl.current)
}
