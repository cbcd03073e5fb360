// Package mailtest provides an in-memory mail.Gateway for tests.
package mailtest

import (
	"context"
	"fmt"
	"sync"

	"mercator-hq/tonecoach/pkg/mail"
)

// Fake is an in-memory mail.Gateway for tests.
type Fake struct {
	mu      sync.Mutex
	threads map[string]*mail.Thread
	order   []string
	drafts  []mail.Draft

	// ListErr, GetErr and DraftErr are returned by the corresponding
	// method when set.
	ListErr  error
	GetErr   error
	DraftErr error
}

var _ mail.Gateway = (*Fake)(nil)

// NewFake returns a Fake holding threads, listed in the given order.
func NewFake(threads ...*mail.Thread) *Fake {
	f := &Fake{threads: make(map[string]*mail.Thread)}
	for _, t := range threads {
		f.threads[t.ID] = t
		f.order = append(f.order, t.ID)
	}
	return f
}

// ListThreads returns the first max threads. The query is ignored.
func (f *Fake) ListThreads(_ context.Context, _ string, max int64) ([]mail.ThreadSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.ListErr != nil {
		return nil, f.ListErr
	}
	out := make([]mail.ThreadSummary, 0, len(f.order))
	for _, id := range f.order {
		if max > 0 && int64(len(out)) >= max {
			break
		}
		t := f.threads[id]
		s := mail.ThreadSummary{ID: id}
		if len(t.Messages) > 0 {
			s.Subject = t.Messages[0].Subject
			s.Snippet = snippet(t.Messages[0].Body)
		}
		out = append(out, s)
	}
	return out, nil
}

// GetThread returns the stored thread.
func (f *Fake) GetThread(_ context.Context, id string) (*mail.Thread, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.GetErr != nil {
		return nil, f.GetErr
	}
	t, ok := f.threads[id]
	if !ok {
		return nil, &mail.NotFoundError{ThreadID: id}
	}
	return t, nil
}

// CreateDraft stores draft.
func (f *Fake) CreateDraft(_ context.Context, draft mail.Draft) (*mail.DraftRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.DraftErr != nil {
		return nil, f.DraftErr
	}
	f.drafts = append(f.drafts, draft)
	return &mail.DraftRef{ID: fmt.Sprintf("draft-%d", len(f.drafts)), ThreadID: draft.ThreadID}, nil
}

// Drafts returns the drafts filed so far.
func (f *Fake) Drafts() []mail.Draft {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]mail.Draft(nil), f.drafts...)
}

func snippet(body string) string {
	r := []rune(body)
	if len(r) > 100 {
		return string(r[:100])
	}
	return body
}
