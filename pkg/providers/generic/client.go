package generic

import (
	"log/slog"

	"mercator-hq/tonecoach/pkg/providers"
	"mercator-hq/tonecoach/pkg/providers/openai"
)

// Provider is an adapter for local OpenAI-compatible servers such as
// Ollama and LM Studio. It shares the wire format with the openai adapter
// and never requires an API key.
type Provider struct {
	*openai.Provider
}

// NewProvider creates a new generic OpenAI-compatible provider instance.
func NewProvider(config providers.ProviderConfig) (*Provider, error) {
	if config.Name == "" {
		return nil, &providers.ConfigError{
			Provider: "generic",
			Field:    "name",
			Message:  "provider name is required",
		}
	}

	if config.BaseURL == "" {
		return nil, &providers.ConfigError{
			Provider: config.Name,
			Field:    "base_url",
			Message:  "base URL is required for generic provider",
		}
	}

	config.Type = "generic"
	if config.MaxIdleConnsPerHost == 0 {
		config.MaxIdleConnsPerHost = 5
	}

	openaiProvider, err := openai.NewCompatibleProvider(config)
	if err != nil {
		return nil, err
	}

	slog.Debug("generic OpenAI-compatible provider initialized",
		"provider", config.Name,
		"base_url", config.BaseURL,
	)

	return &Provider{Provider: openaiProvider}, nil
}

// GetType returns "generic" as the provider type.
func (p *Provider) GetType() string {
	return "generic"
}

var _ providers.Provider = (*Provider)(nil)
