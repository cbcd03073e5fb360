// Package providers implements the abstraction over chat completion
// endpoints used by tonecoach.
//
// Two providers are configured at startup: a local OpenAI-compatible server
// (Ollama, LM Studio) and the hosted OpenAI API. Both speak the same chat
// completions protocol, so they share the request and stream types defined
// here. Adapters live in the openai and generic subpackages.
//
// # Streaming
//
// StreamCompletion returns a channel of StreamChunk values. The channel is
// closed when the upstream body ends. When usage is requested the provider
// sends it on a final chunk after the one carrying FinishReason, so
// consumers read until the channel closes:
//
//	chunks, err := provider.StreamCompletion(ctx, &providers.CompletionRequest{
//	    Model:         "gpt-4o-mini",
//	    Messages:      msgs,
//	    Stream:        true,
//	    StreamOptions: providers.StreamOptions{IncludeUsage: true},
//	})
//	if err != nil {
//	    return err
//	}
//	for chunk := range chunks {
//	    if chunk.Error != nil {
//	        return chunk.Error
//	    }
//	    fmt.Print(chunk.Delta)
//	}
//
// # Retries
//
// HTTPProvider.DoRequest retries 5xx responses and network failures with
// exponential backoff. Streams make a single attempt.
//
// # Error Types
//
// Errors are typed so the HTTP layer can map them to status codes:
//   - AuthError: 401/403 from the provider
//   - RateLimitError: 429, with RetryAfter when the header is present
//   - TimeoutError: deadline or cancellation
//   - ParseError: malformed response body
//   - StreamError: failure while reading a stream
//   - ConfigError: the provider cannot be used as configured, such as the
//     hosted provider without an API key
//   - ProviderError: anything else, with the upstream status code
package providers
