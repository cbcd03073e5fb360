// Package handlers implements the HTTP endpoints of tonecoach.
//
// # Routes
//
//	GET  /                 browser page
//	GET  /api/threads      thread listing as JSON (?q=, ?max=)
//	GET  /api/thread/{id}  scrubbed thread text as JSON
//	POST /coach            streamed coaching output, files the rewrite
//	POST /madlibs          streamed intent inference, files the template
//
// Health and metrics endpoints are registered by the server.
//
// # Streaming Contract
//
// The two POST routes read form fields, prepare the prompt and open the
// model stream before anything is written. Every failure up to that point
// has a status code:
//
//   - 400: a required form field is missing
//   - 404: the thread does not exist
//   - 500: the selected model is not configured (hosted without a key)
//   - 502: the mail API or the model endpoint failed
//   - 503: the mail account is not authorized
//
// After the first byte the status is 200 and the outcome of the draft is
// appended to the stream as a trailer line.
package handlers
