package usage

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"mercator-hq/tonecoach/pkg/processing/costs"
	"mercator-hq/tonecoach/pkg/processing/tokens"
)

// Recorder accounts completions. It is safe for concurrent use; all of its
// collaborators are read-only or synchronize internally.
type Recorder struct {
	counter    tokens.Counter
	calculator *costs.Calculator
	store      Store
	observer   Observer
	logger     *slog.Logger
	now        func() time.Time
}

// Option configures a Recorder.
type Option func(*Recorder)

// WithStore appends every record to store.
func WithStore(store Store) Option {
	return func(r *Recorder) { r.store = store }
}

// WithObserver reports every record to observer.
func WithObserver(observer Observer) Option {
	return func(r *Recorder) { r.observer = observer }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Recorder) { r.logger = logger }
}

// NewRecorder creates a Recorder that estimates with counter and prices
// with calculator.
func NewRecorder(counter tokens.Counter, calculator *costs.Calculator, opts ...Option) *Recorder {
	r := &Recorder{
		counter:    counter,
		calculator: calculator,
		logger:     slog.Default(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With("component", "usage")
	return r
}

// RecordUsage accounts one completion and returns the record. Provider
// usage, when present, is authoritative; otherwise both texts are counted
// locally. It does not return an error.
func (r *Recorder) RecordUsage(ctx context.Context, in Input) Record {
	rec := Record{
		ID:        uuid.NewString(),
		RequestID: in.RequestID,
		Timestamp: r.now().UTC(),
		Mode:      in.Mode,
		Provider:  in.Provider,
		Model:     in.Model,
		Outcome:   in.Outcome,
	}

	if in.ProviderUsage != nil {
		rec.Source = SourceProvider
		rec.PromptTokens = in.ProviderUsage.PromptTokens
		rec.CompletionTokens = in.ProviderUsage.CompletionTokens
		rec.TotalTokens = in.ProviderUsage.TotalTokens
		if rec.TotalTokens == 0 {
			rec.TotalTokens = rec.PromptTokens + rec.CompletionTokens
		}
	} else {
		rec.Source = SourceEstimated
		rec.PromptTokens = r.counter.Count(in.Prompt)
		rec.CompletionTokens = r.counter.Count(in.Completion)
		rec.TotalTokens = rec.PromptTokens + rec.CompletionTokens
	}

	estimate := r.calculator.EstimateCost(in.Model, rec.PromptTokens, rec.CompletionTokens)
	rec.CostUSD = estimate.TotalCost
	rec.PricingSource = estimate.Source
	rec.PricedAs = estimate.PricedAs

	r.logger.InfoContext(ctx, "usage recorded",
		"request_id", rec.RequestID,
		"mode", rec.Mode,
		"provider", rec.Provider,
		"model", rec.Model,
		"source", string(rec.Source),
		"tokenizer", r.counter.Name(),
		"prompt_tokens", rec.PromptTokens,
		"completion_tokens", rec.CompletionTokens,
		"total_tokens", rec.TotalTokens,
		"cost_usd", rec.CostUSD,
		"pricing_source", string(rec.PricingSource),
		"outcome", rec.Outcome,
	)

	if r.observer != nil {
		r.observer.RecordTokens(rec.Model, string(rec.Source), rec.PromptTokens, rec.CompletionTokens)
		r.observer.RecordCost(rec.Model, rec.CostUSD)
	}

	if r.store != nil {
		// The request context may already be cancelled; the record still
		// belongs in the ledger.
		storeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := r.store.Append(storeCtx, rec); err != nil {
			r.logger.WarnContext(ctx, "failed to append usage record",
				"request_id", rec.RequestID,
				"error", err,
			)
		}
	}

	return rec
}
