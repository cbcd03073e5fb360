// Package gmail implements mail.Gateway over the Gmail REST API.
//
// A Client is lazy: it asks its ServiceFactory for a *gmail.Service on first
// use and keeps it once that succeeds. The server therefore starts without a
// saved OAuth token, and every mail call fails with *mail.NotAuthorizedError
// until "tonecoach auth" has stored one.
//
//	auth := gmail.NewAuthenticator(&cfg.Mail)
//	client := gmail.NewClient(&cfg.Mail, auth.Service, logger)
//	threads, err := client.ListThreads(ctx, "in:inbox", 5)
//
// # Message Bodies
//
// GetThread fetches threads in "full" format and extracts one plain-text
// body per message. The first text/plain part wins; otherwise the first
// text/html part is converted to text. Attachments are ignored.
//
// # Drafts
//
// CreateDraft files an RFC 2822 text/plain message attached to the thread,
// with In-Reply-To and References set when the answered Message-ID is known.
package gmail
