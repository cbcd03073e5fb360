// Package mail defines the mail account operations tonecoach consumes:
// listing threads, reading one thread as text and filing a draft reply.
//
// The Gmail implementation lives in package gmail. Gateway is small so that
// handlers and the relay can be tested against a fake.
package mail
