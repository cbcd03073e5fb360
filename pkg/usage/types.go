package usage

import (
	"context"
	"time"

	"mercator-hq/tonecoach/pkg/processing/costs"
	"mercator-hq/tonecoach/pkg/providers"
)

// Source records where the token counts of a Record came from.
type Source string

const (
	// SourceProvider means the provider reported the counts.
	SourceProvider Source = "provider"

	// SourceEstimated means the counts were computed locally.
	SourceEstimated Source = "estimated"
)

// Input describes one finished completion.
type Input struct {
	// RequestID correlates the record with the HTTP request.
	RequestID string

	// Mode is the prompt mode ("coach" or "madlibs").
	Mode string

	// Provider is the provider name ("local" or "hosted").
	Provider string

	// Model is the model identifier the request was sent with.
	Model string

	// Prompt is the full prompt text.
	Prompt string

	// Completion is the accumulated completion text.
	Completion string

	// ProviderUsage is the usage reported by the provider, if any.
	ProviderUsage *providers.TokenUsage

	// Outcome is the relay's final state, such as "draft_created".
	Outcome string
}

// Record is the accounted usage of one completion.
type Record struct {
	ID               string              `json:"id"`
	RequestID        string              `json:"request_id"`
	Timestamp        time.Time           `json:"timestamp"`
	Mode             string              `json:"mode"`
	Provider         string              `json:"provider"`
	Model            string              `json:"model"`
	Source           Source              `json:"source"`
	PromptTokens     int                 `json:"prompt_tokens"`
	CompletionTokens int                 `json:"completion_tokens"`
	TotalTokens      int                 `json:"total_tokens"`
	CostUSD          float64             `json:"cost_usd"`
	PricingSource    costs.PricingSource `json:"pricing_source"`
	PricedAs         string              `json:"priced_as,omitempty"`
	Outcome          string              `json:"outcome,omitempty"`
}

// Summary aggregates records for one model.
type Summary struct {
	Model            string  `json:"model"`
	Requests         int64   `json:"requests"`
	PromptTokens     int64   `json:"prompt_tokens"`
	CompletionTokens int64   `json:"completion_tokens"`
	CostUSD          float64 `json:"cost_usd"`
}

// Store persists usage records.
type Store interface {
	// Append stores one record.
	Append(ctx context.Context, rec Record) error
}

// Observer receives usage for metrics.
type Observer interface {
	RecordTokens(model, source string, promptTokens, completionTokens int)
	RecordCost(model string, usd float64)
}
