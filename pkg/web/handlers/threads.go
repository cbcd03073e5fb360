package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"mercator-hq/tonecoach/pkg/mail"
	"mercator-hq/tonecoach/pkg/telemetry/logging"
)

// maxListResults is the Gmail API limit for one listing page.
const maxListResults = 500

// threadResponse is the body of GET /api/thread/{id}.
type threadResponse struct {
	ID     string `json:"id"`
	Thread string `json:"thread"`
}

// Threads serves GET /api/threads.
func (h *Handlers) Threads(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		query = h.opts.DefaultQuery
	}

	max := h.opts.MaxResults
	if raw := r.URL.Query().Get("max"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n < 1 || n > maxListResults {
			writeText(w, http.StatusBadRequest, "max must be an integer between 1 and 500")
			return
		}
		max = n
	}

	threads, err := h.coach.ListThreads(ctx, query, max)
	if err != nil {
		code, _, message := classify(err)
		h.logger.WarnContext(ctx, "listing threads failed",
			"request_id", logging.GetRequestID(ctx),
			"status", code,
			"error", err,
		)
		writeText(w, code, message)
		return
	}
	if threads == nil {
		threads = []mail.ThreadSummary{}
	}

	if err := writeJSON(w, http.StatusOK, threads); err != nil {
		h.logger.ErrorContext(ctx, "failed to write thread listing", "error", err)
	}
}

// Thread serves GET /api/thread/{id}.
func (h *Handlers) Thread(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		writeText(w, http.StatusBadRequest, "missing required field: thread_id")
		return
	}
	ctx = logging.WithThreadID(ctx, id)

	text, err := h.coach.ThreadText(ctx, id)
	if err != nil {
		code, _, message := classify(err)
		h.logger.WarnContext(ctx, "loading thread failed",
			"request_id", logging.GetRequestID(ctx),
			"thread_id", id,
			"status", code,
			"error", err,
		)
		writeText(w, code, message)
		return
	}

	if err := writeJSON(w, http.StatusOK, threadResponse{ID: id, Thread: text}); err != nil {
		h.logger.ErrorContext(ctx, "failed to write thread", "error", err)
	}
}
