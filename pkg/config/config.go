package config

import "time"

// Config is the root configuration structure for tonecoach.
// It contains the HTTP server, mail account, model selection, usage
// accounting and telemetry settings.
type Config struct {
	// Server contains HTTP server configuration including listen address
	// and timeouts.
	Server ServerConfig `yaml:"server"`

	// Mail contains Gmail API and OAuth settings.
	Mail MailConfig `yaml:"mail"`

	// Model contains language model endpoint configuration for the local
	// and hosted providers.
	Model ModelConfig `yaml:"model"`

	// Processing contains token estimation and cost calculation settings.
	Processing ProcessingConfig `yaml:"processing"`

	// Usage contains the usage ledger and retention configuration.
	Usage UsageConfig `yaml:"usage"`

	// Web contains settings for the browser page served at "/".
	Web WebConfig `yaml:"web"`

	// Telemetry contains logging and metrics configuration.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ServerConfig contains configuration for the HTTP server.
type ServerConfig struct {
	// ListenAddress is the address and port to listen on.
	// Default: "127.0.0.1:7860"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading the entire request.
	// Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes of the
	// response. Streamed completions can run for minutes, so zero (no
	// timeout) is the default.
	// Default: 0
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the keep-alive idle timeout.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout is the maximum duration to wait for in-flight
	// streams during graceful shutdown.
	// Default: 10s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// CORS contains Cross-Origin Resource Sharing configuration.
	CORS CORSConfig `yaml:"cors"`
}

// CORSConfig contains CORS configuration.
type CORSConfig struct {
	// Enabled controls whether CORS headers are written.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// AllowedOrigins is a list of allowed origins.
	// Default: ["*"]
	AllowedOrigins []string `yaml:"allowed_origins"`

	// MaxAge is the preflight cache lifetime in seconds.
	// Default: 3600
	MaxAge int `yaml:"max_age"`
}

// MailConfig contains Gmail account configuration.
type MailConfig struct {
	// CredentialsFile is the OAuth client secret JSON downloaded from the
	// Google Cloud console.
	// Default: "credentials.json"
	CredentialsFile string `yaml:"credentials_file"`

	// TokenFile caches the OAuth token obtained by "tonecoach auth".
	// Default: "token.json"
	TokenFile string `yaml:"token_file"`

	// Scopes is the list of OAuth scopes requested during authorization.
	// Default: ["https://www.googleapis.com/auth/gmail.modify"]
	Scopes []string `yaml:"scopes"`

	// UserID is the Gmail user id for API calls.
	// Default: "me"
	UserID string `yaml:"user_id"`

	// DefaultQuery is the Gmail search query used when none is given.
	// Default: "in:inbox"
	DefaultQuery string `yaml:"default_query"`

	// MaxResults is the number of threads listed when none is given.
	// Default: 5
	MaxResults int64 `yaml:"max_results"`

	// RequestTimeout bounds each Gmail API call.
	// Default: 30s
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// ModelConfig contains language model configuration.
type ModelConfig struct {
	// UseHosted selects the hosted provider instead of the local one.
	// A request may override it with the use_openai form field.
	// Default: false
	UseHosted bool `yaml:"use_hosted"`

	// Temperature is the sampling temperature for every completion.
	// Default: 0.3
	Temperature float64 `yaml:"temperature"`

	// RequestUsage asks the provider to attach usage to the final stream chunk.
	// Default: true
	RequestUsage bool `yaml:"request_usage"`

	// Local is the OpenAI-compatible local endpoint (Ollama, LM Studio).
	Local EndpointConfig `yaml:"local"`

	// Hosted is the hosted OpenAI endpoint.
	Hosted EndpointConfig `yaml:"hosted"`
}

// EndpointConfig describes one chat completion endpoint.
type EndpointConfig struct {
	// BaseURL is the API base URL, including the version path.
	BaseURL string `yaml:"base_url"`

	// Model is the model identifier sent with each request.
	Model string `yaml:"model"`

	// APIKey is the bearer token. Only required for the hosted endpoint.
	APIKey string `yaml:"api_key"`

	// Timeout is the HTTP client timeout. It bounds the whole stream.
	Timeout time.Duration `yaml:"timeout"`

	// MaxRetries is the number of retries for non-streaming calls.
	MaxRetries int `yaml:"max_retries"`
}

// ProcessingConfig contains token estimation and cost settings.
type ProcessingConfig struct {
	// Tokens contains token estimation configuration.
	Tokens TokensConfig `yaml:"tokens"`

	// Costs contains cost calculation configuration.
	Costs CostsConfig `yaml:"costs"`
}

// TokensConfig contains token estimation configuration.
type TokensConfig struct {
	// Estimator is the tokenizer used when the provider reports no usage.
	// Options: "tiktoken", "simple"
	// Default: "tiktoken"
	Estimator string `yaml:"estimator"`

	// Encoding is the tiktoken encoding name.
	// Default: "cl100k_base"
	Encoding string `yaml:"encoding"`

	// CharsPerToken is the ratio used by the simple estimator.
	// Default: 4.0
	CharsPerToken float64 `yaml:"chars_per_token"`
}

// CostsConfig contains cost calculation configuration.
type CostsConfig struct {
	// Unit is the number of tokens each price in Pricing refers to.
	// The whole table shares one unit.
	// Default: 1000000
	Unit float64 `yaml:"unit"`

	// FallbackPolicy decides the cost of a model missing from Pricing.
	// Options: "zero", "default_model"
	// Default: "zero"
	FallbackPolicy string `yaml:"fallback_policy"`

	// FallbackModel is the model whose pricing is used by the
	// "default_model" policy.
	// Default: "gpt-4o"
	FallbackModel string `yaml:"fallback_model"`

	// Pricing maps a model identifier to its prices in USD per Unit tokens.
	// Keys are matched case-insensitively.
	Pricing map[string]ModelPricingConfig `yaml:"pricing"`
}

// ModelPricingConfig contains pricing for a specific model.
type ModelPricingConfig struct {
	// Prompt is the cost per Unit prompt tokens in USD.
	Prompt float64 `yaml:"prompt"`

	// Completion is the cost per Unit completion tokens in USD.
	Completion float64 `yaml:"completion"`
}

// UsageConfig contains usage ledger configuration.
type UsageConfig struct {
	// Ledger contains the SQLite ledger settings.
	Ledger LedgerConfig `yaml:"ledger"`

	// Retention contains ledger pruning settings.
	Retention RetentionConfig `yaml:"retention"`
}

// LedgerConfig contains SQLite usage ledger configuration.
type LedgerConfig struct {
	// Enabled turns on persistent usage records.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Driver selects the database/sql driver.
	// Options: "sqlite" (pure Go), "sqlite3" (cgo)
	// Default: "sqlite"
	Driver string `yaml:"driver"`

	// Path is the database file path.
	// Default: "tonecoach.db"
	Path string `yaml:"path"`

	// BusyTimeout is how long SQLite waits on a locked database.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// RetentionConfig contains ledger retention configuration.
type RetentionConfig struct {
	// Days is how long usage records are kept. A negative value keeps
	// them forever.
	// Default: 90
	Days int `yaml:"days"`

	// Schedule is the cron expression for the pruning job.
	// Default: "0 3 * * *"
	Schedule string `yaml:"schedule"`
}

// WebConfig contains settings for the browser page.
type WebConfig struct {
	// TemplateFile replaces the embedded page when set.
	TemplateFile string `yaml:"template_file"`

	// Watch reloads TemplateFile when it changes on disk.
	// Default: false
	Watch bool `yaml:"watch"`
}

// TelemetryConfig contains configuration for observability.
type TelemetryConfig struct {
	// Logging contains logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains metrics collection configuration.
	Metrics MetricsConfig `yaml:"metrics"`

	// Tracing contains OpenTelemetry tracing configuration.
	Tracing TracingConfig `yaml:"tracing"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format controls the log output format.
	// Options: "json", "text"
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log entries.
	// Default: false
	AddSource bool `yaml:"add_source"`

	// RedactPII masks email addresses and credentials in log attributes.
	// Default: true
	RedactPII bool `yaml:"redact_pii"`

	// RedactPatterns contains additional redaction patterns.
	RedactPatterns []RedactPattern `yaml:"redact_patterns"`
}

// RedactPattern defines a custom redaction pattern.
type RedactPattern struct {
	// Name is a descriptive name for the pattern.
	Name string `yaml:"name"`

	// Pattern is the regular expression to match.
	Pattern string `yaml:"pattern"`

	// Replacement is the string to replace matches with.
	Replacement string `yaml:"replacement"`
}

// MetricsConfig contains metrics collection configuration.
type MetricsConfig struct {
	// Enabled controls whether the metrics endpoint is served.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Path is the HTTP path for the Prometheus metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace is the metric name prefix.
	// Default: "tonecoach"
	Namespace string `yaml:"namespace"`

	// RequestDurationBuckets defines histogram buckets for request duration (seconds).
	// Default: [0.5, 1, 2.5, 5, 10, 30, 60, 120, 300]
	RequestDurationBuckets []float64 `yaml:"request_duration_buckets"`
}

// TracingConfig contains OpenTelemetry tracing configuration.
type TracingConfig struct {
	// Enabled turns on span export. When false spans are no-ops.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Endpoint is the OTLP gRPC collector address (host:port).
	// Default: "localhost:4317"
	Endpoint string `yaml:"endpoint"`

	// Insecure disables TLS towards the collector.
	// Default: true
	Insecure bool `yaml:"insecure"`

	// Timeout bounds each export call.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`

	// ServiceName is reported as the service.name resource attribute.
	// Default: "tonecoach"
	ServiceName string `yaml:"service_name"`

	// Sampler is the sampling strategy.
	// Options: "always", "never", "ratio"
	// Default: "always"
	Sampler string `yaml:"sampler"`

	// SampleRatio is the fraction of traces kept by the "ratio" sampler.
	// Default: 1.0
	SampleRatio float64 `yaml:"sample_ratio"`
}
