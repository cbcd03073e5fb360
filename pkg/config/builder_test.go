package config

import "time"

// ConfigBuilder provides a fluent API for building Config instances in tests.
// It starts with default values and allows selective overrides.
type ConfigBuilder struct {
	cfg *Config
}

// NewTestConfig creates a ConfigBuilder whose configuration is valid as is.
func NewTestConfig() *ConfigBuilder {
	return &ConfigBuilder{cfg: DefaultConfig()}
}

// Build returns the built Config instance.
func (b *ConfigBuilder) Build() *Config {
	return b.cfg
}

// WithListenAddress sets the server listen address.
func (b *ConfigBuilder) WithListenAddress(addr string) *ConfigBuilder {
	b.cfg.Server.ListenAddress = addr
	return b
}

// WithReadTimeout sets the server read timeout.
func (b *ConfigBuilder) WithReadTimeout(d time.Duration) *ConfigBuilder {
	b.cfg.Server.ReadTimeout = d
	return b
}

// WithHosted selects the hosted provider with the given key.
func (b *ConfigBuilder) WithHosted(apiKey string) *ConfigBuilder {
	b.cfg.Model.UseHosted = true
	b.cfg.Model.Hosted.APIKey = apiKey
	return b
}

// WithFallbackPolicy sets the pricing fallback policy.
func (b *ConfigBuilder) WithFallbackPolicy(policy string) *ConfigBuilder {
	b.cfg.Processing.Costs.FallbackPolicy = policy
	return b
}

// WithLedger enables the usage ledger at path.
func (b *ConfigBuilder) WithLedger(path string) *ConfigBuilder {
	b.cfg.Usage.Ledger.Enabled = true
	b.cfg.Usage.Ledger.Path = path
	return b
}

// WithLogLevel sets the logging level.
func (b *ConfigBuilder) WithLogLevel(level string) *ConfigBuilder {
	b.cfg.Telemetry.Logging.Level = level
	return b
}

// MinimalConfig returns the smallest valid configuration.
func MinimalConfig() *Config {
	return NewTestConfig().Build()
}
