// Package coach runs one coaching or intent inference request end to end:
// fetch the thread, scrub it, build the instruction, pick the model, open
// the stream and hand it to the relay.
//
// Work is split in two so that the HTTP layer can still choose a status
// code for every failure that happens before output starts:
//
//	stream, err := svc.Start(ctx, req)  // 400 / 502 / 503 / 500
//	if err != nil { ... }
//	res, err := stream.Relay(ctx, w)    // 200, outcome in the trailer
package coach
