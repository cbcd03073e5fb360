package config

import (
	"fmt"
	"net/url"
	"strings"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "server.listen_address").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. All validation errors are collected and
// returned together.
//
// A hosted API key is deliberately not required here: selecting the hosted
// model without a key fails the request that selects it.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateServer(&cfg.Server)...)
	errs = append(errs, validateMail(&cfg.Mail)...)
	errs = append(errs, validateModel(&cfg.Model)...)
	errs = append(errs, validateProcessing(&cfg.Processing)...)
	errs = append(errs, validateUsage(&cfg.Usage)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}

	return nil
}

func validateServer(cfg *ServerConfig) []FieldError {
	var errs []FieldError

	if cfg.ListenAddress == "" {
		errs = append(errs, FieldError{
			Field:   "server.listen_address",
			Message: "listen address is required",
		})
	}
	if cfg.ReadTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.read_timeout",
			Message: "read timeout must not be negative",
		})
	}
	if cfg.WriteTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.write_timeout",
			Message: "write timeout must not be negative",
		})
	}
	if cfg.ShutdownTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.shutdown_timeout",
			Message: "shutdown timeout must not be negative",
		})
	}

	return errs
}

func validateMail(cfg *MailConfig) []FieldError {
	var errs []FieldError

	if len(cfg.Scopes) == 0 {
		errs = append(errs, FieldError{
			Field:   "mail.scopes",
			Message: "at least one OAuth scope is required",
		})
	}
	for i, scope := range cfg.Scopes {
		if _, err := url.ParseRequestURI(scope); err != nil {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("mail.scopes[%d]", i),
				Message: fmt.Sprintf("invalid scope URL %q", scope),
			})
		}
	}
	if cfg.MaxResults < 1 || cfg.MaxResults > 500 {
		errs = append(errs, FieldError{
			Field:   "mail.max_results",
			Message: "max results must be between 1 and 500",
		})
	}

	return errs
}

func validateModel(cfg *ModelConfig) []FieldError {
	var errs []FieldError

	if cfg.Temperature < 0 || cfg.Temperature > 2 {
		errs = append(errs, FieldError{
			Field:   "model.temperature",
			Message: "temperature must be between 0 and 2",
		})
	}

	errs = append(errs, validateEndpoint("model.local", &cfg.Local)...)
	errs = append(errs, validateEndpoint("model.hosted", &cfg.Hosted)...)

	return errs
}

func validateEndpoint(prefix string, cfg *EndpointConfig) []FieldError {
	var errs []FieldError

	if cfg.BaseURL == "" {
		errs = append(errs, FieldError{
			Field:   prefix + ".base_url",
			Message: "base URL is required",
		})
	} else if u, err := url.Parse(cfg.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, FieldError{
			Field:   prefix + ".base_url",
			Message: fmt.Sprintf("invalid base URL %q", cfg.BaseURL),
		})
	} else if u.Scheme != "http" && u.Scheme != "https" {
		errs = append(errs, FieldError{
			Field:   prefix + ".base_url",
			Message: "base URL must use http or https",
		})
	}
	if cfg.Model == "" {
		errs = append(errs, FieldError{
			Field:   prefix + ".model",
			Message: "model is required",
		})
	}
	if cfg.Timeout < 0 {
		errs = append(errs, FieldError{
			Field:   prefix + ".timeout",
			Message: "timeout must not be negative",
		})
	}
	if cfg.MaxRetries < 0 {
		errs = append(errs, FieldError{
			Field:   prefix + ".max_retries",
			Message: "max retries must not be negative",
		})
	}

	return errs
}

func validateProcessing(cfg *ProcessingConfig) []FieldError {
	var errs []FieldError

	switch cfg.Tokens.Estimator {
	case "tiktoken", "simple":
	default:
		errs = append(errs, FieldError{
			Field:   "processing.tokens.estimator",
			Message: fmt.Sprintf("unknown estimator %q (expected tiktoken or simple)", cfg.Tokens.Estimator),
		})
	}
	if cfg.Tokens.CharsPerToken <= 0 {
		errs = append(errs, FieldError{
			Field:   "processing.tokens.chars_per_token",
			Message: "chars per token must be positive",
		})
	}

	if cfg.Costs.Unit <= 0 {
		errs = append(errs, FieldError{
			Field:   "processing.costs.unit",
			Message: "price unit must be positive",
		})
	}
	switch cfg.Costs.FallbackPolicy {
	case FallbackPolicyZero:
	case FallbackPolicyDefaultModel:
		if _, ok := cfg.Costs.Pricing[strings.ToLower(cfg.Costs.FallbackModel)]; !ok {
			errs = append(errs, FieldError{
				Field:   "processing.costs.fallback_model",
				Message: fmt.Sprintf("fallback model %q is not in the pricing table", cfg.Costs.FallbackModel),
			})
		}
	default:
		errs = append(errs, FieldError{
			Field:   "processing.costs.fallback_policy",
			Message: fmt.Sprintf("unknown fallback policy %q (expected %s or %s)", cfg.Costs.FallbackPolicy, FallbackPolicyZero, FallbackPolicyDefaultModel),
		})
	}
	for model, pricing := range cfg.Costs.Pricing {
		if pricing.Prompt < 0 || pricing.Completion < 0 {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("processing.costs.pricing.%s", model),
				Message: "prices must not be negative",
			})
		}
	}

	return errs
}

func validateUsage(cfg *UsageConfig) []FieldError {
	var errs []FieldError

	if !cfg.Ledger.Enabled {
		return errs
	}

	switch cfg.Ledger.Driver {
	case "sqlite", "sqlite3":
	default:
		errs = append(errs, FieldError{
			Field:   "usage.ledger.driver",
			Message: fmt.Sprintf("unknown driver %q (expected sqlite or sqlite3)", cfg.Ledger.Driver),
		})
	}
	if cfg.Ledger.Path == "" {
		errs = append(errs, FieldError{
			Field:   "usage.ledger.path",
			Message: "path is required when the ledger is enabled",
		})
	}
	if cfg.Retention.Days > 0 && strings.TrimSpace(cfg.Retention.Schedule) == "" {
		errs = append(errs, FieldError{
			Field:   "usage.retention.schedule",
			Message: "schedule is required when retention is enabled",
		})
	}

	return errs
}

func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	switch strings.ToLower(cfg.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("invalid log level %q", cfg.Logging.Level),
		})
	}
	switch strings.ToLower(cfg.Logging.Format) {
	case "json", "text":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("invalid log format %q", cfg.Logging.Format),
		})
	}
	if cfg.Metrics.Enabled && !strings.HasPrefix(cfg.Metrics.Path, "/") {
		errs = append(errs, FieldError{
			Field:   "telemetry.metrics.path",
			Message: "metrics path must start with /",
		})
	}

	if cfg.Tracing.Enabled {
		if cfg.Tracing.Endpoint == "" {
			errs = append(errs, FieldError{
				Field:   "telemetry.tracing.endpoint",
				Message: "endpoint is required when tracing is enabled",
			})
		}
		switch cfg.Tracing.Sampler {
		case "always", "never":
		case "ratio":
			if cfg.Tracing.SampleRatio < 0 || cfg.Tracing.SampleRatio > 1 {
				errs = append(errs, FieldError{
					Field:   "telemetry.tracing.sample_ratio",
					Message: "sample ratio must be between 0 and 1",
				})
			}
		default:
			errs = append(errs, FieldError{
				Field:   "telemetry.tracing.sampler",
				Message: fmt.Sprintf("unknown sampler %q (expected always, never or ratio)", cfg.Tracing.Sampler),
			})
		}
	}

	return errs
}
