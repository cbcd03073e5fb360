package openai

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"

	"mercator-hq/tonecoach/pkg/providers"
)

// streamBufferSize is the capacity of the chunk channel.
const streamBufferSize = 100

// Provider is the adapter for the OpenAI chat completions API.
type Provider struct {
	*providers.HTTPProvider

	// requireKey is false for OpenAI-compatible local servers.
	requireKey bool
}

// NewProvider creates an adapter for the hosted OpenAI API. The API key is
// checked when a request is made, so a provider without a key can still be
// constructed and reported in configuration output.
func NewProvider(config providers.ProviderConfig) (*Provider, error) {
	return newProvider(config, true)
}

// NewCompatibleProvider creates an adapter for a server that speaks the
// OpenAI protocol without requiring an API key.
func NewCompatibleProvider(config providers.ProviderConfig) (*Provider, error) {
	return newProvider(config, false)
}

func newProvider(config providers.ProviderConfig, requireKey bool) (*Provider, error) {
	if config.Name == "" {
		return nil, &providers.ConfigError{
			Provider: "openai",
			Field:    "name",
			Message:  "provider name is required",
		}
	}
	if config.BaseURL == "" {
		return nil, &providers.ConfigError{
			Provider: config.Name,
			Field:    "base_url",
			Message:  "base URL is required",
		}
	}
	if config.Type == "" {
		config.Type = "openai"
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")

	return &Provider{
		HTTPProvider: providers.NewHTTPProvider(config),
		requireKey:   requireKey,
	}, nil
}

// checkKey reports a ConfigError when a key is required and missing.
func (p *Provider) checkKey() error {
	if p.requireKey && p.GetConfig().APIKey == "" {
		return &providers.ConfigError{
			Provider: p.GetName(),
			Field:    "api_key",
			Message:  "an API key is required; set OPENAI_API_KEY",
		}
	}
	return nil
}

// headers returns the request headers for the configured key.
func (p *Provider) headers(stream bool) map[string]string {
	h := make(map[string]string, 2)
	if key := p.GetConfig().APIKey; key != "" {
		h["Authorization"] = "Bearer " + key
	}
	if stream {
		h["Accept"] = "text/event-stream"
	}
	return h
}

func (p *Provider) completionsURL() string {
	return p.GetConfig().BaseURL + "/chat/completions"
}

// SendCompletion sends a non-streaming completion request.
func (p *Provider) SendCompletion(ctx context.Context, req *providers.CompletionRequest) (*providers.CompletionResponse, error) {
	if err := p.checkKey(); err != nil {
		return nil, err
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	wireReq := transformRequest(req)
	wireReq.Stream = false
	wireReq.StreamOptions = nil

	var wireResp OpenAIResponse
	if err := p.DoJSONRequest(ctx, "POST", p.completionsURL(), wireReq, &wireResp, p.headers(false)); err != nil {
		return nil, err
	}

	resp, err := transformResponse(&wireResp)
	if err != nil {
		return nil, &providers.ParseError{Provider: p.GetName(), Cause: err}
	}
	return resp, nil
}

// StreamCompletion opens a stream and forwards chunks on the returned
// channel until the provider closes the body. The channel is closed when
// reading stops. The stream is read past the finish chunk because usage
// arrives afterwards.
func (p *Provider) StreamCompletion(ctx context.Context, req *providers.CompletionRequest) (<-chan *providers.StreamChunk, error) {
	if err := p.checkKey(); err != nil {
		return nil, err
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	wireReq := transformRequest(req)
	wireReq.Stream = true

	reader, err := newStreamReader(ctx, p.HTTPProvider, p.completionsURL(), wireReq, p.headers(true))
	if err != nil {
		return nil, err
	}

	out := make(chan *providers.StreamChunk, streamBufferSize)
	go func() {
		defer close(out)
		defer reader.Close()

		for {
			chunk, err := reader.Read(ctx)
			if err != nil {
				if errors.Is(err, io.EOF) {
					return
				}
				if ctx.Err() != nil {
					slog.Debug("stream cancelled", "provider", p.GetName())
					return
				}
				slog.Warn("stream failed", "provider", p.GetName(), "error", err)
				select {
				case out <- &providers.StreamChunk{Error: err}:
				case <-ctx.Done():
				}
				return
			}

			select {
			case out <- chunk:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, nil
}

// HealthCheck lists models, which is cheap on every compatible server.
func (p *Provider) HealthCheck(ctx context.Context) error {
	if err := p.checkKey(); err != nil {
		return err
	}
	return p.CheckModels(ctx, p.headers(false))
}

func validateRequest(req *providers.CompletionRequest) error {
	if req == nil {
		return &providers.ValidationError{Field: "request", Message: "request is required"}
	}
	if req.Model == "" {
		return &providers.ValidationError{Field: "model", Message: "model is required"}
	}
	if len(req.Messages) == 0 {
		return &providers.ValidationError{Field: "messages", Message: "at least one message is required"}
	}
	return nil
}

var _ providers.Provider = (*Provider)(nil)
