// Package middleware provides the HTTP middleware chain of the tonecoach
// server.
//
// The chain, outermost first:
//
//	RecoveryMiddleware    converts panics into a plain-text 500
//	RequestIDMiddleware   assigns X-Request-ID and stores it in the context
//	LoggingMiddleware     logs status, bytes and latency of every request
//	CORSMiddleware        optional Cross-Origin Resource Sharing headers
//
// The response writer installed by LoggingMiddleware forwards Flush, so
// streamed responses reach the client chunk by chunk through the chain.
//
// Example:
//
//	var handler http.Handler = mux
//	handler = middleware.CORSMiddleware(corsConfig)(handler)
//	handler = middleware.LoggingMiddleware(logger)(handler)
//	handler = middleware.RequestIDMiddleware(handler)
//	handler = middleware.RecoveryMiddleware(logger)(handler)
package middleware
