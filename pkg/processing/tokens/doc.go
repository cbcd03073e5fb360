// Package tokens counts tokens locally when a provider does not report usage.
//
// Two counters are available:
//
//   - "tiktoken": byte-pair encoding via github.com/pkoukk/tiktoken-go. The
//     encoding is loaded when the counter is constructed, which may need a
//     network fetch on first use.
//   - "simple": a characters-per-token ratio, roughly 4 for English text.
//
// # Fallible Construction
//
// NewCounter never fails. If the configured tokenizer cannot be initialized
// it logs a warning and returns a disabled counter whose Count is always 0,
// so cost accounting degrades to zero instead of blocking a request.
//
// # Usage
//
//	counter := tokens.NewCounter(&cfg.Processing.Tokens, logger)
//	n := counter.Count(promptText)
//
// Counters are safe for concurrent use and are constructed once and injected;
// there is no package-level tokenizer.
package tokens
