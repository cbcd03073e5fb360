// Package relay forwards a model stream to an HTTP response and performs
// the work that follows it.
//
// A Relay reads StreamChunks from a provider channel and writes every
// non-empty delta to the response as soon as it arrives, flushing after
// each write. When the stream ends it records usage, extracts the section
// named by the request (the "Beta" rewrite or the "Template") and files it
// as a draft reply. The outcome is appended to the stream as a trailer
// line because the status code has already been sent:
//
//	[draft created: r-1234]
//	[draft not created: model output has no "Beta" section]
//
// A run moves through these states:
//
//	streaming -> complete_with_section -> draft_created
//	streaming -> complete_with_section -> failed            (draft call failed)
//	streaming -> complete_without_section -> failed
//	streaming -> failed                                     (upstream error)
//	streaming -> cancelled                                  (context done)
//
// Nothing is retried. A cancelled run records usage and never files a
// draft.
package relay
