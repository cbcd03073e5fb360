package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"mercator-hq/tonecoach/pkg/coach"
	"mercator-hq/tonecoach/pkg/mail"
)

// Coach is the request orchestration behind the handlers.
// *coach.Service implements it.
type Coach interface {
	ListThreads(ctx context.Context, query string, max int64) ([]mail.ThreadSummary, error)
	ThreadText(ctx context.Context, threadID string) (string, error)
	Start(ctx context.Context, req coach.Request) (*coach.Stream, error)
}

// Metrics records request outcomes. *metrics.Collector implements it.
type Metrics interface {
	RecordRequest(mode, status string, duration time.Duration)
}

// Options holds the listing defaults.
type Options struct {
	// DefaultQuery is used when /api/threads has no q parameter.
	DefaultQuery string

	// MaxResults is used when /api/threads has no max parameter.
	MaxResults int64
}

// Handlers serves the tonecoach routes.
type Handlers struct {
	coach   Coach
	page    http.Handler
	opts    Options
	metrics Metrics
	logger  *slog.Logger
}

// New creates the handlers. page serves "/" and metrics may be nil.
func New(c Coach, page http.Handler, opts Options, metrics Metrics, logger *slog.Logger) *Handlers {
	if opts.DefaultQuery == "" {
		opts.DefaultQuery = "in:inbox"
	}
	if opts.MaxResults <= 0 {
		opts.MaxResults = 5
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{
		coach:   c,
		page:    page,
		opts:    opts,
		metrics: metrics,
		logger:  logger.With("component", "handlers"),
	}
}

// Register adds the routes to mux.
func (h *Handlers) Register(mux *http.ServeMux) {
	if h.page != nil {
		mux.Handle("GET /{$}", h.page)
	}
	mux.HandleFunc("GET /api/threads", h.Threads)
	mux.HandleFunc("GET /api/thread/{id}", h.Thread)
	mux.HandleFunc("POST /coach", h.Coach)
	mux.HandleFunc("POST /madlibs", h.Madlibs)
}

func (h *Handlers) recordRequest(mode, status string, start time.Time) {
	if h.metrics != nil {
		h.metrics.RecordRequest(mode, status, time.Since(start))
	}
}
