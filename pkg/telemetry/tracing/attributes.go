package tracing

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys. Values are identifiers and counts only.
const (
	AttrRequestID = "tonecoach.request_id"
	AttrMode      = "tonecoach.mode"
	AttrThreadID  = "tonecoach.thread_id"
	AttrProvider  = "tonecoach.provider"
	AttrModel     = "tonecoach.model"

	AttrPromptLength = "tonecoach.prompt.length"
	AttrChunks       = "tonecoach.stream.chunks"
	AttrBytes        = "tonecoach.stream.bytes"
	AttrClientGone   = "tonecoach.stream.client_gone"
	AttrOutcome      = "tonecoach.outcome"
	AttrDraftID      = "tonecoach.draft_id"

	AttrTokensPrompt     = "tonecoach.tokens.prompt"
	AttrTokensCompletion = "tonecoach.tokens.completion"
	AttrTokensSource     = "tonecoach.tokens.source"
	AttrCostUSD          = "tonecoach.cost_usd"
)

// SetRequestAttributes sets the request identity on span.
func SetRequestAttributes(span trace.Span, requestID, mode, threadID string) {
	attrs := make([]attribute.KeyValue, 0, 3)
	if requestID != "" {
		attrs = append(attrs, attribute.String(AttrRequestID, requestID))
	}
	if mode != "" {
		attrs = append(attrs, attribute.String(AttrMode, mode))
	}
	if threadID != "" {
		attrs = append(attrs, attribute.String(AttrThreadID, threadID))
	}
	span.SetAttributes(attrs...)
}

// SetProviderAttributes sets the selected provider and model on span.
func SetProviderAttributes(span trace.Span, provider, model string) {
	span.SetAttributes(
		attribute.String(AttrProvider, provider),
		attribute.String(AttrModel, model),
	)
}

// SetUsageAttributes sets token counts and cost on span. source says
// whether the counts were reported by the provider or estimated.
func SetUsageAttributes(span trace.Span, promptTokens, completionTokens int, source string, costUSD float64) {
	span.SetAttributes(
		attribute.Int(AttrTokensPrompt, promptTokens),
		attribute.Int(AttrTokensCompletion, completionTokens),
		attribute.String(AttrTokensSource, source),
		attribute.Float64(AttrCostUSD, costUSD),
	)
}
