package relay

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"mercator-hq/tonecoach/pkg/mail"
	"mercator-hq/tonecoach/pkg/prompt"
	"mercator-hq/tonecoach/pkg/providers"
	"mercator-hq/tonecoach/pkg/usage"
)

// State is the position of a run in the relay state machine.
type State string

const (
	StateStreaming              State = "streaming"
	StateCompleteWithSection    State = "complete_with_section"
	StateCompleteWithoutSection State = "complete_without_section"
	StateDraftCreated           State = "draft_created"
	StateFailed                 State = "failed"
	StateCancelled              State = "cancelled"
)

// UsageRecorder accounts a finished stream. *usage.Recorder implements it.
type UsageRecorder interface {
	RecordUsage(ctx context.Context, in usage.Input) usage.Record
}

// DraftFiler files a draft reply. Every mail.Gateway implements it.
type DraftFiler interface {
	CreateDraft(ctx context.Context, draft mail.Draft) (*mail.DraftRef, error)
}

// Observer receives relay measurements. *metrics.Collector implements it.
type Observer interface {
	RecordFirstChunk(provider string, d time.Duration)
	RecordExtractionFailure(mode string)
	RecordDraft(status string)
}

// Relay runs streams. The zero value of every field except Usage and Drafts
// is usable.
type Relay struct {
	Usage   UsageRecorder
	Drafts  DraftFiler
	Metrics Observer
	Logger  *slog.Logger
}

// Request describes one stream to relay.
type Request struct {
	RequestID string
	Mode      prompt.Mode
	Provider  string
	Model     string

	// Prompt is the instruction sent to the model, used for usage
	// estimation when the provider reports none.
	Prompt string

	// Section is the block of the output to file as a draft.
	Section prompt.Section

	// Thread is the thread being answered.
	Thread *mail.Thread
}

// Result is the outcome of a run.
type Result struct {
	State State

	// Text is the accumulated completion.
	Text string

	// Chunks counts the non-empty deltas received.
	Chunks int

	// BytesWritten counts the bytes forwarded to the writer, trailer
	// excluded.
	BytesWritten int

	// ClientGone is set when a write to the caller failed.
	ClientGone bool

	// ProviderUsage is the usage reported on the terminal chunk, if any.
	ProviderUsage *providers.TokenUsage

	// Usage is the accounted usage.
	Usage usage.Record

	// Section is the extracted text filed as a draft.
	Section string

	// Draft is the filed draft.
	Draft *mail.DraftRef
}

// Run forwards chunks to w until the channel closes, then finishes the
// run. The returned error is nil only for StateDraftCreated; it is an
// *UpstreamError, a *prompt.ExtractionError, a *DraftError or the context
// error for a cancelled run.
func (r *Relay) Run(ctx context.Context, req Request, chunks <-chan *providers.StreamChunk, w io.Writer) (*Result, error) {
	logger := r.logger().With(
		"request_id", req.RequestID,
		"mode", string(req.Mode),
		"provider", req.Provider,
		"model", req.Model,
	)

	res := &Result{State: StateStreaming}
	start := time.Now()
	flusher, _ := w.(http.Flusher)

	var (
		text        strings.Builder
		upstreamErr error
	)

	for chunk := range chunks {
		if chunk == nil {
			continue
		}
		if chunk.Error != nil {
			upstreamErr = chunk.Error
			// The provider closes the channel after an error chunk.
			continue
		}
		if chunk.Usage != nil {
			res.ProviderUsage = chunk.Usage
		}
		if chunk.Delta == "" {
			continue
		}

		if res.Chunks == 0 && r.Metrics != nil {
			r.Metrics.RecordFirstChunk(req.Provider, time.Since(start))
		}
		res.Chunks++
		text.WriteString(chunk.Delta)

		if res.ClientGone {
			continue
		}
		n, err := io.WriteString(w, chunk.Delta)
		res.BytesWritten += n
		if err != nil {
			res.ClientGone = true
			logger.Info("client stopped reading, draining model stream", "error", err)
			continue
		}
		if flusher != nil {
			flusher.Flush()
		}
	}
	res.Text = text.String()

	switch {
	case upstreamErr != nil:
		res.State = StateFailed
		err := &UpstreamError{Provider: req.Provider, Err: upstreamErr}
		res.Usage = r.recordUsage(ctx, req, res)
		r.trailer(w, res, "draft not created: "+err.Error())
		logger.Error("model stream failed",
			"error", upstreamErr,
			"chunks", res.Chunks,
			"duration", time.Since(start),
		)
		return res, err

	case ctx.Err() != nil:
		res.State = StateCancelled
		res.Usage = r.recordUsage(ctx, req, res)
		logger.Info("stream cancelled, no draft created",
			"chunks", res.Chunks,
			"duration", time.Since(start),
		)
		return res, ctx.Err()
	}

	section, extractErr := req.Section.Extract(res.Text)
	if extractErr != nil {
		res.State = StateCompleteWithoutSection
	} else {
		res.State = StateCompleteWithSection
		res.Section = section
	}
	res.Usage = r.recordUsage(ctx, req, res)

	if extractErr != nil {
		res.State = StateFailed
		if r.Metrics != nil {
			r.Metrics.RecordExtractionFailure(string(req.Mode))
			r.Metrics.RecordDraft("skipped")
		}
		r.trailer(w, res, "draft not created: "+extractErr.Error())
		logger.Warn("section not found in model output",
			"label", req.Section.Label,
			"output_length", len(res.Text),
		)
		return res, extractErr
	}

	draft := mail.NewReplyDraft(req.Thread, section)
	ref, err := r.Drafts.CreateDraft(ctx, draft)
	if err != nil {
		res.State = StateFailed
		if r.Metrics != nil {
			r.Metrics.RecordDraft("failed")
		}
		draftErr := &DraftError{ThreadID: draft.ThreadID, Err: err}
		r.trailer(w, res, "draft not created: "+draftErrReason(err))
		logger.Error("failed to create draft", "error", err, "to", draft.To)
		return res, draftErr
	}

	res.State = StateDraftCreated
	res.Draft = ref
	if r.Metrics != nil {
		r.Metrics.RecordDraft("created")
	}
	r.trailer(w, res, "draft created: "+ref.ID)
	logger.Info("draft created",
		"draft_id", ref.ID,
		"thread_id", draft.ThreadID,
		"to", draft.To,
		"chunks", res.Chunks,
		"duration", time.Since(start),
	)

	return res, nil
}

func (r *Relay) recordUsage(ctx context.Context, req Request, res *Result) usage.Record {
	if r.Usage == nil {
		return usage.Record{}
	}
	return r.Usage.RecordUsage(ctx, usage.Input{
		RequestID:     req.RequestID,
		Mode:          string(req.Mode),
		Provider:      req.Provider,
		Model:         req.Model,
		Prompt:        req.Prompt,
		Completion:    res.Text,
		ProviderUsage: res.ProviderUsage,
		Outcome:       string(res.State),
	})
}

// trailer reports the outcome after the streamed text. Nothing is written
// to a caller that is gone or that never received a byte; the latter still
// gets a proper status code from the handler.
func (r *Relay) trailer(w io.Writer, res *Result, status string) {
	if res.ClientGone || res.BytesWritten == 0 {
		return
	}
	if _, err := fmt.Fprintf(w, "\n\n[%s]", status); err != nil {
		res.ClientGone = true
		return
	}
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

func (r *Relay) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}

// draftErrReason keeps the trailer short for well-known failures.
func draftErrReason(err error) string {
	var authErr *mail.NotAuthorizedError
	if errors.As(err, &authErr) {
		return "mail account not authorized"
	}
	return err.Error()
}
