// Package providerfactory builds the model providers from configuration and
// selects one per request.
package providerfactory

import (
	"fmt"
	"log/slog"

	"mercator-hq/tonecoach/pkg/config"
	"mercator-hq/tonecoach/pkg/providers"
	"mercator-hq/tonecoach/pkg/providers/generic"
	"mercator-hq/tonecoach/pkg/providers/openai"
)

// Provider names used in logs, metrics and usage records.
const (
	NameLocal  = "local"
	NameHosted = "hosted"
)

// NewProvider creates a new provider instance based on config.Type.
//
// Supported provider types:
//   - "openai": the hosted OpenAI API, API key required at request time
//   - "generic": OpenAI-compatible local servers (Ollama, LM Studio, vLLM)
func NewProvider(cfg providers.ProviderConfig) (providers.Provider, error) {
	slog.Debug("creating provider",
		"name", cfg.Name,
		"type", cfg.Type,
		"base_url", cfg.BaseURL,
	)

	var provider providers.Provider
	var err error

	switch cfg.Type {
	case "openai":
		provider, err = openai.NewProvider(cfg)
	case "generic", "":
		provider, err = generic.NewProvider(cfg)
	default:
		return nil, &providers.ConfigError{
			Provider: cfg.Name,
			Field:    "type",
			Message:  fmt.Sprintf("unsupported provider type: %q (supported: openai, generic)", cfg.Type),
		}
	}

	if err != nil {
		return nil, fmt.Errorf("failed to create provider %q: %w", cfg.Name, err)
	}

	return provider, nil
}

// FromEndpoint converts an endpoint section of the model configuration into
// a ProviderConfig.
func FromEndpoint(name, providerType string, ep config.EndpointConfig) providers.ProviderConfig {
	return providers.ProviderConfig{
		Name:       name,
		Type:       providerType,
		BaseURL:    ep.BaseURL,
		APIKey:     ep.APIKey,
		Model:      ep.Model,
		Timeout:    ep.Timeout,
		MaxRetries: ep.MaxRetries,
	}
}
