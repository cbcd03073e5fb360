// Package telemetry groups the observability packages of tonecoach.
//
// # Components
//
//   - logging: structured slog loggers with PII redaction and request
//     context fields
//   - metrics: Prometheus collectors on a private registry
//   - health: liveness and readiness endpoints
//
// Every package takes its section of config.TelemetryConfig explicitly:
//
//	cfg := config.GetConfig()
//	logger, err := logging.New(cfg.Telemetry.Logging, os.Stderr)
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	checker := health.New(version, 5*time.Second)
//
// # PII Protection
//
// Email addresses and credentials are masked in log attributes unless
// telemetry.logging.redact_pii is false. Thread bodies and drafts are never
// logged; only their lengths are.
package telemetry
