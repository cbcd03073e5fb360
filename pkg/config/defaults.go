package config

import "time"

// Default values for configuration fields.
const (
	// Server defaults
	DefaultListenAddress   = "127.0.0.1:7860"
	DefaultReadTimeout     = 30 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 10 * time.Second
	DefaultCORSMaxAge      = 3600

	// Mail defaults
	DefaultMailCredentialsFile = "credentials.json"
	DefaultMailTokenFile       = "token.json"
	DefaultMailScope           = "https://www.googleapis.com/auth/gmail.modify"
	DefaultMailUserID          = "me"
	DefaultMailQuery           = "in:inbox"
	DefaultMailMaxResults      = int64(5)
	DefaultMailRequestTimeout  = 30 * time.Second

	// Model defaults
	DefaultTemperature      = 0.3
	DefaultLocalBaseURL     = "http://127.0.0.1:11434/v1"
	DefaultLocalModel       = "llama3.1"
	DefaultLocalTimeout     = 300 * time.Second
	DefaultHostedBaseURL    = "https://api.openai.com/v1"
	DefaultHostedModel      = "gpt-4o-mini"
	DefaultHostedTimeout    = 120 * time.Second
	DefaultHostedMaxRetries = 2

	// Processing defaults
	DefaultTokensEstimator     = "tiktoken"
	DefaultTokensEncoding      = "cl100k_base"
	DefaultTokensCharsPerToken = 4.0
	DefaultCostsUnit           = 1_000_000.0
	DefaultFallbackPolicy      = FallbackPolicyZero
	DefaultFallbackModel       = "gpt-4o"

	// Usage defaults
	DefaultLedgerDriver      = "sqlite"
	DefaultLedgerPath        = "tonecoach.db"
	DefaultLedgerBusyTimeout = 5 * time.Second
	DefaultRetentionDays     = 90
	DefaultRetentionSchedule = "0 3 * * *"

	// Telemetry defaults
	DefaultLoggingLevel     = "info"
	DefaultLoggingFormat    = "json"
	DefaultMetricsPath      = "/metrics"
	DefaultMetricsNamespace = "tonecoach"
	DefaultTracingEndpoint  = "localhost:4317"
	DefaultTracingTimeout   = 10 * time.Second
	DefaultTracingService   = "tonecoach"
	DefaultTracingSampler   = "always"
)

// Pricing fallback policies.
const (
	// FallbackPolicyZero prices unknown models at zero.
	FallbackPolicyZero = "zero"

	// FallbackPolicyDefaultModel prices unknown models like FallbackModel.
	FallbackPolicyDefaultModel = "default_model"
)

// DefaultPricing is the built-in price table in USD per 1M tokens.
// Local models are free to run and priced at zero.
func DefaultPricing() map[string]ModelPricingConfig {
	return map[string]ModelPricingConfig{
		"gpt-4o":       {Prompt: 5.00, Completion: 15.00},
		"gpt-4o-mini":  {Prompt: 0.15, Completion: 0.60},
		"gpt-4.1":      {Prompt: 2.00, Completion: 8.00},
		"gpt-4.1-mini": {Prompt: 0.40, Completion: 1.60},
		"llama3.1":     {Prompt: 0, Completion: 0},
	}
}

// DefaultRequestDurationBuckets are sized for streamed completions, which
// take seconds to minutes.
var DefaultRequestDurationBuckets = []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300}

// DefaultConfig returns a configuration with every default applied,
// including the boolean switches that ApplyDefaults cannot tell apart from
// an explicit false. YAML documents are decoded on top of it.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.Model.RequestUsage = true
	cfg.Telemetry.Logging.RedactPII = true
	cfg.Telemetry.Metrics.Enabled = true
	cfg.Telemetry.Tracing.Insecure = true
	cfg.Telemetry.Tracing.SampleRatio = 1.0
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults applies default values to a Config struct.
// It sets defaults for any fields that have zero values.
// This function is idempotent and safe to call multiple times.
func ApplyDefaults(cfg *Config) {
	// Server defaults
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = DefaultListenAddress
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if len(cfg.Server.CORS.AllowedOrigins) == 0 {
		cfg.Server.CORS.AllowedOrigins = []string{"*"}
	}
	if cfg.Server.CORS.MaxAge == 0 {
		cfg.Server.CORS.MaxAge = DefaultCORSMaxAge
	}

	// Mail defaults
	if cfg.Mail.CredentialsFile == "" {
		cfg.Mail.CredentialsFile = DefaultMailCredentialsFile
	}
	if cfg.Mail.TokenFile == "" {
		cfg.Mail.TokenFile = DefaultMailTokenFile
	}
	if len(cfg.Mail.Scopes) == 0 {
		cfg.Mail.Scopes = []string{DefaultMailScope}
	}
	if cfg.Mail.UserID == "" {
		cfg.Mail.UserID = DefaultMailUserID
	}
	if cfg.Mail.DefaultQuery == "" {
		cfg.Mail.DefaultQuery = DefaultMailQuery
	}
	if cfg.Mail.MaxResults == 0 {
		cfg.Mail.MaxResults = DefaultMailMaxResults
	}
	if cfg.Mail.RequestTimeout == 0 {
		cfg.Mail.RequestTimeout = DefaultMailRequestTimeout
	}

	// Model defaults
	if cfg.Model.Temperature == 0 {
		cfg.Model.Temperature = DefaultTemperature
	}
	if cfg.Model.Local.BaseURL == "" {
		cfg.Model.Local.BaseURL = DefaultLocalBaseURL
	}
	if cfg.Model.Local.Model == "" {
		cfg.Model.Local.Model = DefaultLocalModel
	}
	if cfg.Model.Local.Timeout == 0 {
		cfg.Model.Local.Timeout = DefaultLocalTimeout
	}
	if cfg.Model.Hosted.BaseURL == "" {
		cfg.Model.Hosted.BaseURL = DefaultHostedBaseURL
	}
	if cfg.Model.Hosted.Model == "" {
		cfg.Model.Hosted.Model = DefaultHostedModel
	}
	if cfg.Model.Hosted.Timeout == 0 {
		cfg.Model.Hosted.Timeout = DefaultHostedTimeout
	}
	if cfg.Model.Hosted.MaxRetries == 0 {
		cfg.Model.Hosted.MaxRetries = DefaultHostedMaxRetries
	}

	// Processing defaults
	if cfg.Processing.Tokens.Estimator == "" {
		cfg.Processing.Tokens.Estimator = DefaultTokensEstimator
	}
	if cfg.Processing.Tokens.Encoding == "" {
		cfg.Processing.Tokens.Encoding = DefaultTokensEncoding
	}
	if cfg.Processing.Tokens.CharsPerToken == 0 {
		cfg.Processing.Tokens.CharsPerToken = DefaultTokensCharsPerToken
	}
	if cfg.Processing.Costs.Unit == 0 {
		cfg.Processing.Costs.Unit = DefaultCostsUnit
	}
	if cfg.Processing.Costs.FallbackPolicy == "" {
		cfg.Processing.Costs.FallbackPolicy = DefaultFallbackPolicy
	}
	if cfg.Processing.Costs.FallbackModel == "" {
		cfg.Processing.Costs.FallbackModel = DefaultFallbackModel
	}
	if cfg.Processing.Costs.Pricing == nil {
		cfg.Processing.Costs.Pricing = DefaultPricing()
	}

	// Usage defaults
	if cfg.Usage.Ledger.Driver == "" {
		cfg.Usage.Ledger.Driver = DefaultLedgerDriver
	}
	if cfg.Usage.Ledger.Path == "" {
		cfg.Usage.Ledger.Path = DefaultLedgerPath
	}
	if cfg.Usage.Ledger.BusyTimeout == 0 {
		cfg.Usage.Ledger.BusyTimeout = DefaultLedgerBusyTimeout
	}
	if cfg.Usage.Retention.Days == 0 {
		cfg.Usage.Retention.Days = DefaultRetentionDays
	}
	if cfg.Usage.Retention.Schedule == "" {
		cfg.Usage.Retention.Schedule = DefaultRetentionSchedule
	}

	// Telemetry defaults
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLoggingFormat
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultMetricsPath
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}
	if len(cfg.Telemetry.Metrics.RequestDurationBuckets) == 0 {
		cfg.Telemetry.Metrics.RequestDurationBuckets = DefaultRequestDurationBuckets
	}
	if cfg.Telemetry.Tracing.Endpoint == "" {
		cfg.Telemetry.Tracing.Endpoint = DefaultTracingEndpoint
	}
	if cfg.Telemetry.Tracing.Timeout == 0 {
		cfg.Telemetry.Tracing.Timeout = DefaultTracingTimeout
	}
	if cfg.Telemetry.Tracing.ServiceName == "" {
		cfg.Telemetry.Tracing.ServiceName = DefaultTracingService
	}
	if cfg.Telemetry.Tracing.Sampler == "" {
		cfg.Telemetry.Tracing.Sampler = DefaultTracingSampler
	}
}
