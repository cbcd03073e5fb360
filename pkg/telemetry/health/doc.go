// Package health provides the health endpoints of tonecoach.
//
// # Endpoints
//
//   - /health: liveness. Always 200 while the process serves requests, with
//     the running version.
//   - /ready: readiness. Runs every registered check concurrently and
//     returns 503 when one of them fails.
//
// # Usage
//
//	checker := health.New(version, 5*time.Second)
//	checker.RegisterCheck("provider.local", func(ctx context.Context) error {
//	    return local.HealthCheck(ctx)
//	})
//
//	mux.Handle("GET /health", checker.LivenessHandler())
//	mux.Handle("GET /ready", checker.ReadinessHandler())
//
// Checks run with their own timeout, so one stuck model endpoint cannot
// hold the readiness probe open.
package health
