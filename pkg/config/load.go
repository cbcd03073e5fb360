package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file at the specified path.
// The document is decoded on top of DefaultConfig, so omitted sections keep
// their defaults. An empty path yields the defaults alone.
// The configuration is not modified by environment variables; use
// LoadConfigWithEnvOverrides for that functionality.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
		}
	}

	ApplyDefaults(cfg)
	normalizePricing(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Environment variables follow the naming
// convention TONECOACH_FIELD (e.g., TONECOACH_LISTEN_ADDRESS).
// Environment variables always take precedence over file-based configuration.
//
// The loading sequence is:
// 1. Start from defaults
// 2. Decode YAML from file
// 3. Apply environment variable overrides
// 4. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)
	normalizePricing(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// normalizePricing lower-cases the pricing table keys so lookups can be
// exact matches on the lower-cased model identifier.
func normalizePricing(cfg *Config) {
	if len(cfg.Processing.Costs.Pricing) == 0 {
		return
	}
	normalized := make(map[string]ModelPricingConfig, len(cfg.Processing.Costs.Pricing))
	for model, pricing := range cfg.Processing.Costs.Pricing {
		normalized[strings.ToLower(strings.TrimSpace(model))] = pricing
	}
	cfg.Processing.Costs.Pricing = normalized
	cfg.Processing.Costs.FallbackModel = strings.ToLower(cfg.Processing.Costs.FallbackModel)
}

// applyEnvOverrides applies environment variable overrides to the configuration.
func applyEnvOverrides(cfg *Config) {
	// Server overrides
	if val := os.Getenv("TONECOACH_LISTEN_ADDRESS"); val != "" {
		cfg.Server.ListenAddress = val
	}
	if val := os.Getenv("TONECOACH_SHUTDOWN_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.ShutdownTimeout = d
		}
	}

	// Mail overrides
	if val := os.Getenv("TONECOACH_MAIL_CREDENTIALS_FILE"); val != "" {
		cfg.Mail.CredentialsFile = val
	}
	if val := os.Getenv("TONECOACH_MAIL_TOKEN_FILE"); val != "" {
		cfg.Mail.TokenFile = val
	}
	if val := os.Getenv("TONECOACH_MAIL_SCOPES"); val != "" {
		cfg.Mail.Scopes = splitList(val)
	}
	if val := os.Getenv("TONECOACH_MAIL_QUERY"); val != "" {
		cfg.Mail.DefaultQuery = val
	}
	if val := os.Getenv("TONECOACH_MAIL_MAX_RESULTS"); val != "" {
		if i, err := strconv.ParseInt(val, 10, 64); err == nil {
			cfg.Mail.MaxResults = i
		}
	}

	// Model overrides
	if val := os.Getenv("TONECOACH_USE_HOSTED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Model.UseHosted = b
		}
	}
	if val := os.Getenv("TONECOACH_TEMPERATURE"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Model.Temperature = f
		}
	}
	if val := os.Getenv("TONECOACH_MODEL_URL"); val != "" {
		cfg.Model.Local.BaseURL = val
	}
	if val := os.Getenv("TONECOACH_MODEL"); val != "" {
		cfg.Model.Local.Model = val
	}
	if val := os.Getenv("TONECOACH_HOSTED_URL"); val != "" {
		cfg.Model.Hosted.BaseURL = val
	}
	if val := os.Getenv("TONECOACH_HOSTED_MODEL"); val != "" {
		cfg.Model.Hosted.Model = val
	}
	if val := os.Getenv("OPENAI_API_KEY"); val != "" {
		cfg.Model.Hosted.APIKey = val
	}
	if val := os.Getenv("TONECOACH_OPENAI_API_KEY"); val != "" {
		cfg.Model.Hosted.APIKey = val
	}

	// Processing overrides
	if val := os.Getenv("TONECOACH_TOKEN_ESTIMATOR"); val != "" {
		cfg.Processing.Tokens.Estimator = val
	}
	if val := os.Getenv("TONECOACH_PRICING_FALLBACK"); val != "" {
		cfg.Processing.Costs.FallbackPolicy = val
	}
	if val := os.Getenv("TONECOACH_PRICING_FALLBACK_MODEL"); val != "" {
		cfg.Processing.Costs.FallbackModel = val
	}

	// Usage overrides
	if val := os.Getenv("TONECOACH_LEDGER_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Usage.Ledger.Enabled = b
		}
	}
	if val := os.Getenv("TONECOACH_LEDGER_DRIVER"); val != "" {
		cfg.Usage.Ledger.Driver = val
	}
	if val := os.Getenv("TONECOACH_LEDGER_PATH"); val != "" {
		cfg.Usage.Ledger.Path = val
	}
	if val := os.Getenv("TONECOACH_RETENTION_DAYS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Usage.Retention.Days = i
		}
	}

	// Telemetry overrides
	if val := os.Getenv("TONECOACH_LOG_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
	if val := os.Getenv("TONECOACH_LOG_FORMAT"); val != "" {
		cfg.Telemetry.Logging.Format = val
	}
	if val := os.Getenv("TONECOACH_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Metrics.Enabled = b
		}
	}
	if val := os.Getenv("TONECOACH_TRACING_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Tracing.Enabled = b
		}
	}
	if val := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); val != "" {
		cfg.Telemetry.Tracing.Endpoint = val
	}
}

// splitList splits a comma or space separated list and drops empty items.
func splitList(val string) []string {
	fields := strings.FieldsFunc(val, func(r rune) bool {
		return r == ',' || r == ' '
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
