// Package tracing provides OpenTelemetry tracing for tonecoach.
//
// A request produces one server span from Middleware, with child spans for
// preparing the prompt and relaying the model stream. Outgoing model
// requests carry W3C Trace Context headers so a traced local model server
// joins the same trace.
//
// # Configuration
//
//	telemetry:
//	  tracing:
//	    enabled: true
//	    endpoint: localhost:4317   # OTLP gRPC collector
//	    insecure: true
//	    sampler: ratio             # always, never, ratio
//	    sample_ratio: 0.25
//
// When tracing is disabled New installs nothing and every span is a no-op.
//
// # Attributes
//
// Span attributes use the tonecoach.* namespace (see attributes.go). Thread
// text, drafts and completions are never attached to spans; only ids,
// sizes, token counts and costs are.
package tracing
