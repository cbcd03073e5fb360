package costs

// ModelPricing contains the prices of one model in USD per Unit tokens.
type ModelPricing struct {
	// Prompt is the cost of Unit prompt tokens.
	Prompt float64

	// Completion is the cost of Unit completion tokens.
	Completion float64
}

// PricingSource records where the prices behind an estimate came from.
type PricingSource string

const (
	// SourceTable means the model was found in the pricing table.
	SourceTable PricingSource = "table"

	// SourceFallback means the fallback model's prices were used.
	SourceFallback PricingSource = "fallback"

	// SourceNone means no prices applied and the cost is zero.
	SourceNone PricingSource = "none"
)

// Estimate is the cost of one completion.
type Estimate struct {
	// Model is the model identifier as given by the caller.
	Model string

	// PricedAs is the table entry that priced the estimate, empty for SourceNone.
	PricedAs string

	// Source is where the prices came from.
	Source PricingSource

	// PromptTokens and CompletionTokens are the token counts that were priced.
	PromptTokens     int
	CompletionTokens int

	// PromptCost, CompletionCost and TotalCost are in USD.
	PromptCost     float64
	CompletionCost float64
	TotalCost      float64
}
