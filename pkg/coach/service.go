package coach

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"mercator-hq/tonecoach/pkg/mail"
	"mercator-hq/tonecoach/pkg/prompt"
	"mercator-hq/tonecoach/pkg/providers"
	"mercator-hq/tonecoach/pkg/relay"
	"mercator-hq/tonecoach/pkg/scrub"
	"mercator-hq/tonecoach/pkg/telemetry/tracing"
)

var tracer = otel.Tracer(tracing.InstrumentationName + "/coach")

// ModelSelector picks the provider for a request.
// *providerfactory.Selector implements it.
type ModelSelector interface {
	Select(useHosted bool) (providers.Provider, string, error)
}

// ErrorObserver receives provider failures. *metrics.Collector implements
// it.
type ErrorObserver interface {
	RecordProviderError(provider, errType string)
}

// Options holds the model settings applied to every request.
type Options struct {
	// UseHosted is the default provider choice.
	UseHosted bool

	// Temperature is the sampling temperature.
	Temperature float64

	// RequestUsage asks the provider to report usage on the final chunk.
	RequestUsage bool
}

// Service runs requests. It holds no per-request state.
type Service struct {
	mail     mail.Gateway
	models   ModelSelector
	relay    *relay.Relay
	opts     Options
	observer ErrorObserver
	logger   *slog.Logger
}

// NewService creates a Service. observer may be nil.
func NewService(gateway mail.Gateway, models ModelSelector, r *relay.Relay, opts Options, observer ErrorObserver) *Service {
	return &Service{
		mail:     gateway,
		models:   models,
		relay:    r,
		opts:     opts,
		observer: observer,
		logger:   slog.Default().With("component", "coach"),
	}
}

// Request is one coaching or inference request.
type Request struct {
	RequestID string
	Mode      prompt.Mode
	ThreadID  string
	Draft     string
	Goal      string

	// UseHosted overrides Options.UseHosted for this request when set.
	UseHosted *bool
}

// Stream is an opened model stream waiting to be relayed.
type Stream struct {
	svc    *Service
	req    relay.Request
	chunks <-chan *providers.StreamChunk

	Thread   *mail.Thread
	Prompt   string
	Model    string
	Provider string
}

// ListThreads lists threads matching query.
func (s *Service) ListThreads(ctx context.Context, query string, max int64) ([]mail.ThreadSummary, error) {
	return s.mail.ListThreads(ctx, query, max)
}

// ThreadText returns the scrubbed text of a thread.
func (s *Service) ThreadText(ctx context.Context, threadID string) (string, error) {
	thread, err := s.mail.GetThread(ctx, threadID)
	if err != nil {
		return "", err
	}
	return scrub.Text(thread.Text()), nil
}

// Start prepares the request and opens the model stream. Errors are
// *prompt.MissingInputError, mail errors, *providers.ConfigError or
// provider errors; none of them has produced output.
func (s *Service) Start(ctx context.Context, req Request) (stream *Stream, err error) {
	ctx, span := tracer.Start(ctx, "coach.start")
	defer func() {
		tracing.SetStatus(span, err)
		span.End()
	}()
	tracing.SetRequestAttributes(span, req.RequestID, string(req.Mode), req.ThreadID)

	tmpl, err := prompt.ForMode(req.Mode)
	if err != nil {
		return nil, err
	}

	thread, err := s.mail.GetThread(ctx, req.ThreadID)
	if err != nil {
		return nil, err
	}

	instruction, err := tmpl.Build(prompt.Input{
		Thread: scrub.Text(thread.Text()),
		Draft:  req.Draft,
		Goal:   req.Goal,
	})
	if err != nil {
		return nil, err
	}

	useHosted := s.opts.UseHosted
	if req.UseHosted != nil {
		useHosted = *req.UseHosted
	}
	provider, model, err := s.models.Select(useHosted)
	if err != nil {
		return nil, err
	}
	tracing.SetProviderAttributes(span, provider.GetName(), model)
	span.SetAttributes(attribute.Int(tracing.AttrPromptLength, len(instruction)))

	completion := &providers.CompletionRequest{
		Model:       model,
		Messages:    []providers.Message{{Role: providers.RoleUser, Content: instruction}},
		Temperature: s.opts.Temperature,
		Stream:      true,
		StreamOptions: providers.StreamOptions{
			IncludeUsage: s.opts.RequestUsage,
		},
		Metadata: map[string]string{
			"request_id": req.RequestID,
			"mode":       string(req.Mode),
		},
	}

	chunks, err := provider.StreamCompletion(ctx, completion)
	if err != nil {
		s.recordProviderError(provider.GetName(), err)
		return nil, fmt.Errorf("open model stream: %w", err)
	}

	s.logger.InfoContext(ctx, "model stream opened",
		"request_id", req.RequestID,
		"mode", string(req.Mode),
		"thread_id", req.ThreadID,
		"provider", provider.GetName(),
		"model", model,
		"prompt_length", len(instruction),
	)

	return &Stream{
		svc: s,
		req: relay.Request{
			RequestID: req.RequestID,
			Mode:      req.Mode,
			Provider:  provider.GetName(),
			Model:     model,
			Prompt:    instruction,
			Section:   tmpl.Section,
			Thread:    thread,
		},
		chunks:   chunks,
		Thread:   thread,
		Prompt:   instruction,
		Model:    model,
		Provider: provider.GetName(),
	}, nil
}

// Relay forwards the stream to w and files the draft.
func (st *Stream) Relay(ctx context.Context, w io.Writer) (*relay.Result, error) {
	ctx, span := tracer.Start(ctx, "coach.relay")
	defer span.End()
	tracing.SetRequestAttributes(span, st.req.RequestID, string(st.req.Mode), st.Thread.ID)
	tracing.SetProviderAttributes(span, st.Provider, st.Model)

	res, err := st.svc.relay.Run(ctx, st.req, st.chunks, w)

	var upErr *relay.UpstreamError
	if errors.As(err, &upErr) {
		st.svc.recordProviderError(upErr.Provider, upErr.Err)
	}

	if res != nil {
		span.SetAttributes(
			attribute.String(tracing.AttrOutcome, string(res.State)),
			attribute.Int(tracing.AttrChunks, res.Chunks),
			attribute.Int(tracing.AttrBytes, res.BytesWritten),
			attribute.Bool(tracing.AttrClientGone, res.ClientGone),
		)
		tracing.SetUsageAttributes(span, res.Usage.PromptTokens, res.Usage.CompletionTokens,
			string(res.Usage.Source), res.Usage.CostUSD)
		if res.Draft != nil {
			span.SetAttributes(attribute.String(tracing.AttrDraftID, res.Draft.ID))
		}
	}
	tracing.SetStatus(span, err)
	return res, err
}

func (s *Service) recordProviderError(provider string, err error) {
	if s.observer != nil {
		s.observer.RecordProviderError(provider, ErrorType(err))
	}
}

// ErrorType classifies a provider error for metrics labels.
func ErrorType(err error) string {
	var (
		authErr    *providers.AuthError
		rateErr    *providers.RateLimitError
		timeoutErr *providers.TimeoutError
		parseErr   *providers.ParseError
		configErr  *providers.ConfigError
		streamErr  *providers.StreamError
		provErr    *providers.ProviderError
	)
	switch {
	case errors.As(err, &authErr):
		return "auth"
	case errors.As(err, &rateErr):
		return "rate_limit"
	case errors.As(err, &timeoutErr), errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.As(err, &parseErr):
		return "parse"
	case errors.As(err, &configErr):
		return "config"
	case errors.As(err, &streamErr):
		return "stream"
	case errors.As(err, &provErr):
		return "upstream"
	default:
		return "unknown"
	}
}
