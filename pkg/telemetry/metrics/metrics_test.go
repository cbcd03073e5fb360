package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"mercator-hq/tonecoach/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

// Helper function to create test config
func testConfig() *config.MetricsConfig {
	return &config.MetricsConfig{
		Enabled:                true,
		Path:                   "/metrics",
		Namespace:              "test",
		RequestDurationBuckets: []float64{0.1, 0.5, 1.0, 5.0},
	}
}

func TestCollector_NewCollector(t *testing.T) {
	registry := prometheus.NewRegistry()
	collector := NewCollector(testConfig(), registry)

	if collector.Registry() != registry {
		t.Error("Collector registry not set correctly")
	}
	if collector.config.Namespace != "test" {
		t.Errorf("namespace = %q, want test", collector.config.Namespace)
	}
}

func TestCollector_Defaults(t *testing.T) {
	cfg := &config.MetricsConfig{Enabled: true}
	collector := NewCollector(cfg, nil)

	if collector.Registry() == nil {
		t.Fatal("Expected a private registry")
	}
	if collector.config.Namespace != "tonecoach" {
		t.Errorf("namespace = %q, want tonecoach", collector.config.Namespace)
	}
	if len(collector.config.RequestDurationBuckets) == 0 {
		t.Error("Expected default duration buckets")
	}
	if cfg.Namespace != "" {
		t.Error("NewCollector must not modify the caller's config")
	}
}

func TestCollector_RecordRequest(t *testing.T) {
	collector := NewCollector(testConfig(), nil)

	tests := []struct {
		name     string
		mode     string
		status   string
		duration time.Duration
	}{
		{name: "draft created", mode: "coach", status: "draft_created", duration: 12 * time.Second},
		{name: "failed", mode: "madlibs", status: "failed", duration: 3 * time.Second},
		{name: "bad request", mode: "coach", status: "bad_request", duration: time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			collector.RecordRequest(tt.mode, tt.status, tt.duration)

			count := testutil.ToFloat64(collector.requestMetrics.requestsTotal.WithLabelValues(tt.mode, tt.status))
			if count != 1 {
				t.Errorf("requests_total{%s,%s} = %v, want 1", tt.mode, tt.status, count)
			}
		})
	}

	if n := testutil.CollectAndCount(collector.requestMetrics.requestDuration); n != 2 {
		t.Errorf("request_duration_seconds series = %d, want 2", n)
	}
}

func TestCollector_ProviderMetrics(t *testing.T) {
	collector := NewCollector(testConfig(), nil)

	collector.RecordFirstChunk("local", 300*time.Millisecond)
	collector.RecordProviderError("hosted", "rate_limit")
	collector.RecordProviderError("hosted", "rate_limit")
	collector.UpdateProviderHealth("local", true)
	collector.UpdateProviderHealth("hosted", false)

	if n := testutil.CollectAndCount(collector.providerMetrics.firstChunk); n != 1 {
		t.Errorf("first chunk series = %d, want 1", n)
	}
	if got := testutil.ToFloat64(collector.providerMetrics.errors.WithLabelValues("hosted", "rate_limit")); got != 2 {
		t.Errorf("provider_errors_total = %v, want 2", got)
	}
	if got := testutil.ToFloat64(collector.providerMetrics.health.WithLabelValues("local")); got != 1 {
		t.Errorf("local health = %v, want 1", got)
	}
	if got := testutil.ToFloat64(collector.providerMetrics.health.WithLabelValues("hosted")); got != 0 {
		t.Errorf("hosted health = %v, want 0", got)
	}
}

func TestCollector_UsageMetrics(t *testing.T) {
	collector := NewCollector(testConfig(), nil)

	collector.RecordTokens("gpt-4o", "provider", 1000, 200)
	collector.RecordTokens("gpt-4o", "provider", 500, 0)
	collector.RecordTokens("llama3.1", "estimated", 100, 10)
	collector.RecordCost("gpt-4o", 0.008)
	collector.RecordCost("llama3.1", 0)

	tokens := collector.usageMetrics.tokensTotal
	if got := testutil.ToFloat64(tokens.WithLabelValues("gpt-4o", "prompt", "provider")); got != 1500 {
		t.Errorf("gpt-4o prompt tokens = %v, want 1500", got)
	}
	if got := testutil.ToFloat64(tokens.WithLabelValues("gpt-4o", "completion", "provider")); got != 200 {
		t.Errorf("gpt-4o completion tokens = %v, want 200", got)
	}
	if got := testutil.ToFloat64(tokens.WithLabelValues("llama3.1", "completion", "estimated")); got != 10 {
		t.Errorf("llama3.1 completion tokens = %v, want 10", got)
	}

	// Zero costs create no series.
	if n := testutil.CollectAndCount(collector.usageMetrics.costTotal); n != 1 {
		t.Errorf("cost series = %d, want 1", n)
	}

	collector.SetTokenizerDisabled(true)
	if got := testutil.ToFloat64(collector.usageMetrics.tokenizerDisabled); got != 1 {
		t.Errorf("tokenizer_disabled = %v, want 1", got)
	}
	collector.SetTokenizerDisabled(false)
	if got := testutil.ToFloat64(collector.usageMetrics.tokenizerDisabled); got != 0 {
		t.Errorf("tokenizer_disabled = %v, want 0", got)
	}
}

func TestCollector_DraftMetrics(t *testing.T) {
	collector := NewCollector(testConfig(), nil)

	collector.RecordExtractionFailure("coach")
	collector.RecordDraft("skipped")
	collector.RecordDraft("created")
	collector.RecordDraft("created")

	if got := testutil.ToFloat64(collector.draftMetrics.extractionFailures.WithLabelValues("coach")); got != 1 {
		t.Errorf("extraction failures = %v, want 1", got)
	}
	if got := testutil.ToFloat64(collector.draftMetrics.draftsTotal.WithLabelValues("created")); got != 2 {
		t.Errorf("drafts created = %v, want 2", got)
	}
	if got := testutil.ToFloat64(collector.draftMetrics.draftsTotal.WithLabelValues("skipped")); got != 1 {
		t.Errorf("drafts skipped = %v, want 1", got)
	}
}

func TestCollector_Disabled(t *testing.T) {
	cfg := testConfig()
	cfg.Enabled = false
	collector := NewCollector(cfg, nil)

	collector.RecordRequest("coach", "failed", time.Second)
	collector.RecordTokens("gpt-4o", "provider", 10, 10)
	collector.RecordDraft("created")

	if n := testutil.CollectAndCount(collector.requestMetrics.requestsTotal); n != 0 {
		t.Errorf("requests series = %d, want 0 when disabled", n)
	}
	if n := testutil.CollectAndCount(collector.usageMetrics.tokensTotal); n != 0 {
		t.Errorf("token series = %d, want 0 when disabled", n)
	}
	if n := testutil.CollectAndCount(collector.draftMetrics.draftsTotal); n != 0 {
		t.Errorf("draft series = %d, want 0 when disabled", n)
	}
}

func TestCollector_ModelLabelCapped(t *testing.T) {
	collector := NewCollector(testConfig(), nil)
	collector.cardinalityLimiter = NewCardinalityLimiter(1)

	collector.RecordCost("gpt-4o", 1)
	collector.RecordCost("gpt-4o-mini", 1)
	collector.RecordCost("", 1)

	costs := collector.usageMetrics.costTotal
	if got := testutil.ToFloat64(costs.WithLabelValues("gpt-4o")); got != 1 {
		t.Errorf("gpt-4o cost = %v, want 1", got)
	}
	if got := testutil.ToFloat64(costs.WithLabelValues("other")); got != 1 {
		t.Errorf("other cost = %v, want 1", got)
	}
	if got := testutil.ToFloat64(costs.WithLabelValues("unknown")); got != 1 {
		t.Errorf("unknown cost = %v, want 1", got)
	}
}

func TestCardinalityLimiter(t *testing.T) {
	limiter := NewCardinalityLimiter(3)

	for _, key := range []string{"a", "b", "c"} {
		if !limiter.Allow(key) {
			t.Errorf("Allow(%q) = false, want true", key)
		}
	}
	if limiter.Allow("d") {
		t.Error("Allow(d) = true past the limit")
	}
	if !limiter.Allow("a") {
		t.Error("Allow(a) = false for a known label set")
	}
	if limiter.Count() != 3 {
		t.Errorf("Count() = %d, want 3", limiter.Count())
	}
}

func TestCollector_Handler(t *testing.T) {
	collector := NewCollector(testConfig(), nil)
	collector.RecordRequest("coach", "draft_created", time.Second)
	collector.RecordDraft("created")

	srv := httptest.NewServer(collector.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("GET metrics: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}

	for _, want := range []string{
		`test_requests_total{mode="coach",status="draft_created"} 1`,
		`test_drafts_total{status="created"} 1`,
	} {
		if !strings.Contains(string(body), want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}

func TestCollector_ConcurrentRecording(t *testing.T) {
	collector := NewCollector(testConfig(), nil)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			collector.RecordRequest("coach", "draft_created", time.Second)
			collector.RecordTokens("gpt-4o", "provider", 10, 5)
			collector.RecordDraft("created")
		}()
	}
	wg.Wait()

	if got := testutil.ToFloat64(collector.requestMetrics.requestsTotal.WithLabelValues("coach", "draft_created")); got != 50 {
		t.Errorf("requests_total = %v, want 50", got)
	}
	if got := testutil.ToFloat64(collector.usageMetrics.tokensTotal.WithLabelValues("gpt-4o", "completion", "provider")); got != 250 {
		t.Errorf("completion tokens = %v, want 250", got)
	}
}
