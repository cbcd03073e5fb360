// Package openai implements the adapter for the OpenAI chat completions API
// and servers compatible with it.
//
// # Basic Usage
//
//	provider, err := openai.NewProvider(providers.ProviderConfig{
//	    Name:    "hosted",
//	    BaseURL: "https://api.openai.com/v1",
//	    APIKey:  os.Getenv("OPENAI_API_KEY"),
//	})
//	if err != nil {
//	    return err
//	}
//	defer provider.Close()
//
// # Streaming
//
// StreamCompletion sets stream_options.include_usage when the request asks
// for usage. The provider then sends a final chunk with an empty choices
// list and a usage object after the finish chunk; it is forwarded as a
// StreamChunk with no delta and Usage set.
//
// # Error Handling
//
//   - Missing API key -> ConfigError, reported at request time
//   - 401/403 -> AuthError
//   - 429 -> RateLimitError
//   - other 4xx -> ProviderError
//   - 5xx -> ProviderError (retried for non-streaming calls)
package openai
