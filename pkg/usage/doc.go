// Package usage records token usage and cost for each model completion.
//
// A completion's token counts come from one of two places. When the
// provider reports usage on the final stream chunk those counts are used
// as-is. Otherwise the prompt and the completion text are counted with the
// configured tokenizer. Either way the counts are priced by the cost
// calculator, logged, exported as metrics and, when a ledger is configured,
// stored.
//
// RecordUsage never fails the request: pricing misses cost zero (or the
// fallback model's price) and ledger errors are logged.
package usage
