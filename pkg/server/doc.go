// Package server runs the tonecoach HTTP server.
//
// It composes the routes of pkg/web/handlers with the health and metrics
// endpoints, wraps them in the middleware chain and manages the listener
// lifecycle.
//
// # Middleware Chain
//
// Outermost first:
//
//	recovery -> request id -> tracing -> logging -> CORS -> routes
//
// Recovery sits outside everything so a panic in any layer becomes a 500.
// The request id is assigned before logging so every log line of the
// request carries it. Tracing is skipped when Routes.Tracer is nil.
//
// # Basic Usage
//
//	srv := server.New(&cfg.Server, server.Routes{
//	    Handlers:    h,
//	    Health:      checker,
//	    Metrics:     collector.Handler(),
//	    MetricsPath: cfg.Telemetry.Metrics.Path,
//	    Tracer:      tracer,
//	}, logger)
//
//	ctx, stop := cli.SetupSignalHandler(context.Background())
//	defer stop()
//	if err := srv.Start(ctx); err != nil {
//	    return err
//	}
//
// Start blocks until ctx is cancelled, then shuts down gracefully. In-flight
// streams get server.shutdown_timeout to finish; a stream still running
// after that is cut and files no draft.
package server
