package gmail

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/oauth2"
	"golang.org/x/sync/errgroup"
	gmailapi "google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"

	"mercator-hq/tonecoach/pkg/config"
	"mercator-hq/tonecoach/pkg/mail"
)

// subjectFetchLimit bounds the concurrent metadata requests of ListThreads.
const subjectFetchLimit = 4

// ServiceFactory opens the Gmail API service. (*Authenticator).Service is
// the production factory.
type ServiceFactory func(ctx context.Context) (*gmailapi.Service, error)

// Client is a mail.Gateway backed by a Gmail account.
type Client struct {
	factory      ServiceFactory
	userID       string
	defaultQuery string
	maxResults   int64
	timeout      time.Duration
	logger       *slog.Logger

	mu      sync.Mutex
	service *gmailapi.Service
}

var _ mail.Gateway = (*Client)(nil)

// NewClient creates a client. No API call is made until the first request.
func NewClient(cfg *config.MailConfig, factory ServiceFactory, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	userID := cfg.UserID
	if userID == "" {
		userID = "me"
	}
	return &Client{
		factory:      factory,
		userID:       userID,
		defaultQuery: cfg.DefaultQuery,
		maxResults:   cfg.MaxResults,
		timeout:      cfg.RequestTimeout,
		logger:       logger.With("component", "gmail"),
	}
}

// ListThreads returns at most max threads matching query. An empty query
// and a non-positive max fall back to the configured defaults.
func (c *Client) ListThreads(ctx context.Context, query string, max int64) ([]mail.ThreadSummary, error) {
	svc, err := c.connect(ctx)
	if err != nil {
		return nil, err
	}
	if query == "" {
		query = c.defaultQuery
	}
	if max <= 0 {
		max = c.maxResults
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	call := svc.Users.Threads.List(c.userID).MaxResults(max).Context(ctx)
	if query != "" {
		call = call.Q(query)
	}
	resp, err := call.Do()
	if err != nil {
		return nil, c.wrap("list_threads", "", err)
	}

	summaries := make([]mail.ThreadSummary, len(resp.Threads))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(subjectFetchLimit)
	for i, th := range resp.Threads {
		summaries[i] = mail.ThreadSummary{
			ID:      th.Id,
			Snippet: html.UnescapeString(th.Snippet),
		}
		g.Go(func() error {
			meta, err := svc.Users.Threads.Get(c.userID, th.Id).
				Format("metadata").
				MetadataHeaders("Subject").
				Context(gctx).
				Do()
			if err != nil {
				return err
			}
			if len(meta.Messages) > 0 {
				summaries[i].Subject = headerValue(meta.Messages[0].Payload, "Subject")
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, c.wrap("list_threads", "", err)
	}

	c.logger.Debug("threads listed",
		"query", query,
		"count", len(summaries),
	)
	return summaries, nil
}

// GetThread returns the thread with one plain-text body per message.
func (c *Client) GetThread(ctx context.Context, id string) (*mail.Thread, error) {
	if id == "" {
		return nil, &mail.NotFoundError{ThreadID: id}
	}
	svc, err := c.connect(ctx)
	if err != nil {
		return nil, err
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	th, err := svc.Users.Threads.Get(c.userID, id).Format("full").Context(ctx).Do()
	if err != nil {
		return nil, c.wrap("get_thread", id, err)
	}

	thread := &mail.Thread{
		ID:       th.Id,
		Messages: make([]mail.Message, 0, len(th.Messages)),
	}
	for _, m := range th.Messages {
		thread.Messages = append(thread.Messages, convertMessage(m))
	}

	c.logger.Debug("thread fetched",
		"thread_id", id,
		"messages", len(thread.Messages),
	)
	return thread, nil
}

// CreateDraft files draft as a reply in its thread.
func (c *Client) CreateDraft(ctx context.Context, draft mail.Draft) (*mail.DraftRef, error) {
	svc, err := c.connect(ctx)
	if err != nil {
		return nil, err
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	msg := &gmailapi.Message{
		Raw:      encodeRaw(buildRawMessage(draft)),
		ThreadId: draft.ThreadID,
	}
	created, err := svc.Users.Drafts.Create(c.userID, &gmailapi.Draft{Message: msg}).Context(ctx).Do()
	if err != nil {
		return nil, c.wrap("create_draft", draft.ThreadID, err)
	}

	ref := &mail.DraftRef{ID: created.Id}
	if created.Message != nil {
		ref.MessageID = created.Message.Id
		ref.ThreadID = created.Message.ThreadId
	}

	c.logger.Info("draft created",
		"thread_id", draft.ThreadID,
		"draft_id", ref.ID,
	)
	return ref, nil
}

// connect returns the cached service or opens one.
func (c *Client) connect(ctx context.Context) (*gmailapi.Service, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.service != nil {
		return c.service, nil
	}
	svc, err := c.factory(ctx)
	if err != nil {
		var notAuth *mail.NotAuthorizedError
		if errors.As(err, &notAuth) {
			return nil, err
		}
		return nil, &mail.GatewayError{Op: "connect", Err: err}
	}
	c.service = svc
	return svc, nil
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}

// wrap classifies an API error. A rejected or unrefreshable token becomes
// *mail.NotAuthorizedError, a missing thread *mail.NotFoundError.
func (c *Client) wrap(op, threadID string, err error) error {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		return &mail.NotAuthorizedError{Reason: "token refresh failed", Cause: err}
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusUnauthorized:
			return &mail.NotAuthorizedError{Reason: "token rejected", Cause: err}
		case http.StatusNotFound:
			if threadID != "" && op == "get_thread" {
				return &mail.NotFoundError{ThreadID: threadID}
			}
		}
	}

	c.logger.Warn("gmail call failed",
		"operation", op,
		"thread_id", threadID,
		"error", err,
	)
	return &mail.GatewayError{Op: op, Err: err}
}
