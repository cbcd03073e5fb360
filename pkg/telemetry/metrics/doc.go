// Package metrics provides Prometheus metrics for tonecoach.
//
// # Overview
//
// A Collector owns a private prometheus.Registry and groups the metrics by
// concern:
//
//   - Request metrics: requests by mode and status, request duration
//   - Provider metrics: time to first chunk, errors by type, health
//   - Usage metrics: tokens by model, type and source, cost in USD,
//     tokenizer availability
//   - Draft metrics: extraction failures by mode, drafts by outcome
//
// The Collector satisfies the small observer interfaces declared by the
// packages that produce the measurements (usage.Observer, relay.Observer,
// coach.ErrorObserver), so those packages do not import Prometheus.
//
// # Usage
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	recorder := usage.NewRecorder(counter, calculator, usage.WithObserver(collector))
//	mux.Handle(cfg.Telemetry.Metrics.Path, collector.Handler())
//
// # Exposition
//
//	# HELP tonecoach_requests_total Total number of coaching requests
//	# TYPE tonecoach_requests_total counter
//	tonecoach_requests_total{mode="coach",status="draft_created"} 12
//
// # Cardinality Management
//
// Model names come from configuration and provider responses. A
// CardinalityLimiter caps the distinct label sets; models past the cap are
// reported as "other".
package metrics
