// Package costs converts token counts to USD.
//
// Prices come from a static table keyed by lower-cased model identifier.
// Every price in the table uses the same token scale, 1,000,000 tokens by
// default:
//
//	cost = (prompt_tokens*prompt_price + completion_tokens*completion_price) / unit
//
// Unknown models never produce an error. The configured fallback policy
// either prices them like a designated model or at zero; the Estimate
// records which happened.
package costs
