package mail

import (
	"context"
	"strings"
	"time"
)

// MessageSeparator joins message bodies in Thread.Text.
const MessageSeparator = "\n\n---\n\n"

// DefaultReplySubject is used when the last message has no subject.
const DefaultReplySubject = "Re: (no subject)"

// Gateway is a mail account.
type Gateway interface {
	// ListThreads returns at most max threads matching query.
	ListThreads(ctx context.Context, query string, max int64) ([]ThreadSummary, error)

	// GetThread returns the thread with its messages in thread order.
	GetThread(ctx context.Context, id string) (*Thread, error)

	// CreateDraft files a draft reply.
	CreateDraft(ctx context.Context, draft Draft) (*DraftRef, error)
}

// ThreadSummary is one entry of a thread listing.
type ThreadSummary struct {
	ID      string `json:"id"`
	Snippet string `json:"snippet"`
	Subject string `json:"subject"`
}

// Thread is an ordered sequence of messages.
type Thread struct {
	ID       string
	Messages []Message
}

// Message is one message of a thread with its extracted plain-text body.
type Message struct {
	ID string

	// MessageID is the RFC 2822 Message-ID header, used for threading the
	// reply. It may be empty.
	MessageID string

	From    string
	To      string
	Subject string
	Date    time.Time
	Body    string
}

// Text concatenates the message bodies in thread order, separated by
// MessageSeparator. A message without a body contributes an empty string.
func (t *Thread) Text() string {
	if t == nil || len(t.Messages) == 0 {
		return ""
	}
	bodies := make([]string, len(t.Messages))
	for i, m := range t.Messages {
		bodies[i] = m.Body
	}
	return strings.Join(bodies, MessageSeparator)
}

// Last returns the most recent message, or nil for an empty thread.
func (t *Thread) Last() *Message {
	if t == nil || len(t.Messages) == 0 {
		return nil
	}
	return &t.Messages[len(t.Messages)-1]
}

// ReplyHeaders derives the recipient and subject of a reply from the last
// message: the reply goes to its sender, and the subject gets a "Re: "
// prefix unless it already has one. Missing headers yield an empty
// recipient and DefaultReplySubject.
func (t *Thread) ReplyHeaders() (to, subject string) {
	last := t.Last()
	if last == nil {
		return "", DefaultReplySubject
	}

	to = strings.TrimSpace(last.From)
	subject = strings.TrimSpace(last.Subject)
	switch {
	case subject == "":
		subject = DefaultReplySubject
	case !hasReplyPrefix(subject):
		subject = "Re: " + subject
	}
	return to, subject
}

func hasReplyPrefix(subject string) bool {
	return len(subject) >= 3 && strings.EqualFold(subject[:3], "re:")
}

// Draft is a reply to be filed.
type Draft struct {
	ThreadID string
	To       string
	Subject  string
	Body     string

	// InReplyTo is the Message-ID being answered, if known.
	InReplyTo string
}

// DraftRef identifies a filed draft.
type DraftRef struct {
	ID        string `json:"id"`
	MessageID string `json:"message_id,omitempty"`
	ThreadID  string `json:"thread_id,omitempty"`
}

// NewReplyDraft builds the draft answering the last message of thread.
func NewReplyDraft(thread *Thread, body string) Draft {
	to, subject := thread.ReplyHeaders()
	d := Draft{
		To:      to,
		Subject: subject,
		Body:    body,
	}
	if thread != nil {
		d.ThreadID = thread.ID
	}
	if last := thread.Last(); last != nil {
		d.InReplyTo = last.MessageID
	}
	return d
}
