package config

import (
	"errors"
	"strings"
	"testing"
)

func TestValidate_ValidConfig(t *testing.T) {
	if err := Validate(MinimalConfig()); err != nil {
		t.Errorf("expected valid config to pass validation, got error: %v", err)
	}
}

func TestValidate_HostedWithoutKeyIsValid(t *testing.T) {
	cfg := NewTestConfig().WithHosted("").Build()
	if err := Validate(cfg); err != nil {
		t.Errorf("missing hosted key must fail at request time, not load time: %v", err)
	}
}

func TestValidate_MultipleErrors(t *testing.T) {
	cfg := &Config{}

	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation to fail")
	}

	var verr ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	if len(verr.Errors) < 2 {
		t.Errorf("expected multiple errors, got %d", len(verr.Errors))
	}
	if !strings.Contains(verr.Error(), "validation failed with") {
		t.Errorf("error message should mention multiple errors: %s", verr.Error())
	}
}

func TestValidate_Fields(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(*Config)
		errorField string
	}{
		{
			name:       "empty listen address",
			mutate:     func(c *Config) { c.Server.ListenAddress = "" },
			errorField: "server.listen_address",
		},
		{
			name:       "negative write timeout",
			mutate:     func(c *Config) { c.Server.WriteTimeout = -1 },
			errorField: "server.write_timeout",
		},
		{
			name:       "no scopes",
			mutate:     func(c *Config) { c.Mail.Scopes = nil },
			errorField: "mail.scopes",
		},
		{
			name:       "relative scope",
			mutate:     func(c *Config) { c.Mail.Scopes = []string{"gmail.modify"} },
			errorField: "mail.scopes[0]",
		},
		{
			name:       "too many results",
			mutate:     func(c *Config) { c.Mail.MaxResults = 1000 },
			errorField: "mail.max_results",
		},
		{
			name:       "temperature out of range",
			mutate:     func(c *Config) { c.Model.Temperature = 3 },
			errorField: "model.temperature",
		},
		{
			name:       "local base url without scheme",
			mutate:     func(c *Config) { c.Model.Local.BaseURL = "127.0.0.1:11434" },
			errorField: "model.local.base_url",
		},
		{
			name:       "hosted ftp url",
			mutate:     func(c *Config) { c.Model.Hosted.BaseURL = "ftp://api.openai.com/v1" },
			errorField: "model.hosted.base_url",
		},
		{
			name:       "unknown estimator",
			mutate:     func(c *Config) { c.Processing.Tokens.Estimator = "bpe" },
			errorField: "processing.tokens.estimator",
		},
		{
			name:       "zero price unit",
			mutate:     func(c *Config) { c.Processing.Costs.Unit = 0 },
			errorField: "processing.costs.unit",
		},
		{
			name: "fallback model missing from table",
			mutate: func(c *Config) {
				c.Processing.Costs.FallbackPolicy = FallbackPolicyDefaultModel
				c.Processing.Costs.FallbackModel = "unknown"
			},
			errorField: "processing.costs.fallback_model",
		},
		{
			name: "negative price",
			mutate: func(c *Config) {
				c.Processing.Costs.Pricing = map[string]ModelPricingConfig{"m": {Prompt: -1}}
			},
			errorField: "processing.costs.pricing.m",
		},
		{
			name: "unknown ledger driver",
			mutate: func(c *Config) {
				c.Usage.Ledger.Enabled = true
				c.Usage.Ledger.Driver = "postgres"
			},
			errorField: "usage.ledger.driver",
		},
		{
			name:       "bad log format",
			mutate:     func(c *Config) { c.Telemetry.Logging.Format = "xml" },
			errorField: "telemetry.logging.format",
		},
		{
			name:       "relative metrics path",
			mutate:     func(c *Config) { c.Telemetry.Metrics.Path = "metrics" },
			errorField: "telemetry.metrics.path",
		},
		{
			name: "unknown sampler",
			mutate: func(c *Config) {
				c.Telemetry.Tracing.Enabled = true
				c.Telemetry.Tracing.Sampler = "sometimes"
			},
			errorField: "telemetry.tracing.sampler",
		},
		{
			name: "sample ratio out of range",
			mutate: func(c *Config) {
				c.Telemetry.Tracing.Enabled = true
				c.Telemetry.Tracing.Sampler = "ratio"
				c.Telemetry.Tracing.SampleRatio = 1.5
			},
			errorField: "telemetry.tracing.sample_ratio",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := MinimalConfig()
			tt.mutate(cfg)

			err := Validate(cfg)
			if err == nil {
				t.Fatal("expected validation error")
			}

			var verr ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %T", err)
			}

			found := false
			for _, fe := range verr.Errors {
				if fe.Field == tt.errorField {
					found = true
				}
			}
			if !found {
				t.Errorf("expected error for field %q, got %v", tt.errorField, verr.Errors)
			}
		})
	}
}

func TestValidate_DisabledLedgerSkipsChecks(t *testing.T) {
	cfg := MinimalConfig()
	cfg.Usage.Ledger.Driver = "postgres"

	if err := Validate(cfg); err != nil {
		t.Errorf("disabled ledger should not be validated: %v", err)
	}
}

func TestValidate_DisabledTracingSkipsChecks(t *testing.T) {
	cfg := MinimalConfig()
	cfg.Telemetry.Tracing.Sampler = "sometimes"

	if err := Validate(cfg); err != nil {
		t.Errorf("disabled tracing should not be validated: %v", err)
	}
}
