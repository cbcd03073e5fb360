package providerfactory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"mercator-hq/tonecoach/pkg/config"
	"mercator-hq/tonecoach/pkg/providers"
)

// Selector holds the local and hosted providers and picks one per request.
// It is safe for concurrent use; both providers are built once.
type Selector struct {
	local  providers.Provider
	hosted providers.Provider
}

// NewSelector builds both providers from the model configuration. A hosted
// provider without an API key is still built; using it fails with a
// *providers.ConfigError.
func NewSelector(cfg *config.ModelConfig) (*Selector, error) {
	local, err := NewProvider(FromEndpoint(NameLocal, "generic", cfg.Local))
	if err != nil {
		return nil, err
	}

	hosted, err := NewProvider(FromEndpoint(NameHosted, "openai", cfg.Hosted))
	if err != nil {
		local.Close()
		return nil, err
	}

	if cfg.Hosted.APIKey == "" {
		slog.Debug("hosted provider has no API key; requests that select it will fail")
	}

	return NewSelectorWith(local, hosted), nil
}

// NewSelectorWith wraps already constructed providers.
func NewSelectorWith(local, hosted providers.Provider) *Selector {
	return &Selector{local: local, hosted: hosted}
}

// Select returns the provider and model for a request. The hosted provider
// is checked for a usable key here so the error surfaces before any
// output is written.
func (s *Selector) Select(useHosted bool) (providers.Provider, string, error) {
	p := s.local
	if useHosted {
		p = s.hosted
		if p.GetConfig().APIKey == "" {
			return nil, "", &providers.ConfigError{
				Provider: p.GetName(),
				Field:    "api_key",
				Message:  "an API key is required; set OPENAI_API_KEY",
			}
		}
	}
	return p, p.GetConfig().Model, nil
}

// Providers returns both providers keyed by name.
func (s *Selector) Providers() map[string]providers.Provider {
	return map[string]providers.Provider{
		s.local.GetName():  s.local,
		s.hosted.GetName(): s.hosted,
	}
}

// HealthCheck checks every provider and returns the errors keyed by name.
// The hosted provider is skipped when it has no key.
func (s *Selector) HealthCheck(ctx context.Context) map[string]error {
	out := make(map[string]error, 2)
	for name, p := range s.Providers() {
		if p == s.hosted && p.GetConfig().APIKey == "" {
			continue
		}
		out[name] = p.HealthCheck(ctx)
	}
	return out
}

// Close closes both providers.
func (s *Selector) Close() error {
	var errs []error
	for name, p := range s.Providers() {
		if err := p.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing provider %q: %w", name, err))
		}
	}
	return errors.Join(errs...)
}
