package providers

import "context"

// Provider is the interface every language model adapter implements.
//
// All methods accept a context.Context for cancellation. Implementations
// must stop work and release the upstream connection when the context is
// cancelled.
type Provider interface {
	// SendCompletion sends a non-streaming completion request.
	SendCompletion(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error)

	// StreamCompletion sends a streaming completion request and returns a
	// channel of incremental chunks.
	//
	// The channel is closed when the stream ends. A chunk with Error set is
	// always the last one sent. Usage, when the provider reports it, arrives
	// on a chunk after the one carrying FinishReason, so callers must read
	// until the channel closes.
	//
	//  chunks, err := provider.StreamCompletion(ctx, req)
	//  if err != nil {
	//      return err
	//  }
	//  for chunk := range chunks {
	//      if chunk.Error != nil {
	//          return chunk.Error
	//      }
	//      fmt.Print(chunk.Delta)
	//  }
	StreamCompletion(ctx context.Context, req *CompletionRequest) (<-chan *StreamChunk, error)

	// HealthCheck performs a lightweight request to verify the provider is
	// reachable.
	HealthCheck(ctx context.Context) error

	// GetName returns the provider's configured name.
	GetName() string

	// GetType returns the provider's type (openai, generic).
	GetType() string

	// GetConfig returns the provider's configuration.
	GetConfig() ProviderConfig

	// IsHealthy returns the health status derived from recent requests.
	IsHealthy() bool

	// GetHealth returns detailed health information.
	GetHealth() ProviderHealth

	// Close releases idle connections.
	Close() error
}

// StreamReader abstracts the streaming protocol used by a provider.
type StreamReader interface {
	// Read reads the next chunk from the stream.
	// Returns nil and io.EOF when the stream ends normally.
	Read(ctx context.Context) (*StreamChunk, error)

	// Close closes the stream and releases resources.
	Close() error
}
