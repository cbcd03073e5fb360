package costs

import (
	"strings"

	"mercator-hq/tonecoach/pkg/config"
)

// DefaultUnit is the token scale of prices when the configuration sets none.
const DefaultUnit = 1_000_000.0

// Calculator prices token usage with a static per-model table.
// The table is copied at construction and never modified, so a Calculator
// is safe for concurrent use without locking.
type Calculator struct {
	pricing        map[string]ModelPricing
	unit           float64
	fallbackPolicy string
	fallbackModel  string
}

// NewCalculator creates a calculator from the costs configuration. Model
// identifiers are lower-cased.
func NewCalculator(cfg *config.CostsConfig) *Calculator {
	c := &Calculator{
		pricing:        make(map[string]ModelPricing, len(cfg.Pricing)),
		unit:           cfg.Unit,
		fallbackPolicy: cfg.FallbackPolicy,
		fallbackModel:  strings.ToLower(cfg.FallbackModel),
	}
	if c.unit <= 0 {
		c.unit = DefaultUnit
	}
	for model, p := range cfg.Pricing {
		c.pricing[strings.ToLower(model)] = ModelPricing{Prompt: p.Prompt, Completion: p.Completion}
	}
	return c
}

// Lookup returns the pricing of model by exact match on its lower-cased
// identifier.
func (c *Calculator) Lookup(model string) (ModelPricing, bool) {
	p, ok := c.pricing[strings.ToLower(model)]
	return p, ok
}

// EstimateCost prices promptTokens and completionTokens for model. A model
// missing from the table is priced by the fallback policy: "default_model"
// uses the fallback model's prices, anything else (and a fallback model that
// is itself missing) yields zero. EstimateCost never fails.
func (c *Calculator) EstimateCost(model string, promptTokens, completionTokens int) Estimate {
	est := Estimate{
		Model:            model,
		PromptTokens:     promptTokens,
		CompletionTokens: completionTokens,
		Source:           SourceNone,
	}

	pricing, ok := c.Lookup(model)
	switch {
	case ok:
		est.Source = SourceTable
		est.PricedAs = strings.ToLower(model)
	case c.fallbackPolicy == config.FallbackPolicyDefaultModel:
		if pricing, ok = c.pricing[c.fallbackModel]; ok {
			est.Source = SourceFallback
			est.PricedAs = c.fallbackModel
		}
	}
	if est.Source == SourceNone {
		return est
	}

	est.PromptCost = calculateTokenCost(promptTokens, pricing.Prompt, c.unit)
	est.CompletionCost = calculateTokenCost(completionTokens, pricing.Completion, c.unit)
	est.TotalCost = est.PromptCost + est.CompletionCost
	return est
}

// calculateTokenCost calculates the cost for a number of tokens given a
// price per unit tokens.
func calculateTokenCost(tokens int, pricePerUnit, unit float64) float64 {
	if tokens <= 0 {
		return 0
	}
	return float64(tokens) * pricePerUnit / unit
}
