package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"mercator-hq/tonecoach/pkg/coach"
	"mercator-hq/tonecoach/pkg/prompt"
	"mercator-hq/tonecoach/pkg/relay"
	"mercator-hq/tonecoach/pkg/telemetry/logging"
)

// maxFormBytes bounds the form body. Drafts are short.
const maxFormBytes = 1 << 20

// Coach serves POST /coach.
func (h *Handlers) Coach(w http.ResponseWriter, r *http.Request) {
	h.serveStream(w, r, prompt.ModeCoach, "thread_id", "draft", "goal")
}

// Madlibs serves POST /madlibs.
func (h *Handlers) Madlibs(w http.ResponseWriter, r *http.Request) {
	h.serveStream(w, r, prompt.ModeInference, "thread_id")
}

// serveStream validates the form, opens the model stream and relays it.
// required lists the form fields checked in order.
func (h *Handlers) serveStream(w http.ResponseWriter, r *http.Request, mode prompt.Mode, required ...string) {
	start := time.Now()
	ctx := logging.WithMode(r.Context(), string(mode))
	requestID := logging.GetRequestID(ctx)

	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		writeText(w, http.StatusBadRequest, "invalid form: "+err.Error())
		h.recordRequest(string(mode), statusBadRequest, start)
		return
	}

	for _, field := range required {
		if strings.TrimSpace(r.PostForm.Get(field)) == "" {
			writeText(w, http.StatusBadRequest, "missing required field: "+field)
			h.recordRequest(string(mode), statusBadRequest, start)
			return
		}
	}

	req := coach.Request{
		RequestID: requestID,
		Mode:      mode,
		ThreadID:  strings.TrimSpace(r.PostForm.Get("thread_id")),
		Draft:     r.PostForm.Get("draft"),
		Goal:      r.PostForm.Get("goal"),
	}
	if raw, ok := r.PostForm["use_openai"]; ok {
		useHosted := parseFlag(raw[len(raw)-1])
		req.UseHosted = &useHosted
	}
	ctx = logging.WithThreadID(ctx, req.ThreadID)

	stream, err := h.coach.Start(ctx, req)
	if err != nil {
		code, label, message := classify(err)
		h.logger.WarnContext(ctx, "request failed before streaming",
			"request_id", requestID,
			"mode", string(mode),
			"thread_id", req.ThreadID,
			"status", code,
			"error", err,
		)
		writeText(w, code, message)
		h.recordRequest(string(mode), label, start)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Cache-Control", "no-cache")

	res, err := stream.Relay(ctx, w)
	if res != nil && res.BytesWritten == 0 && err != nil && !res.ClientGone {
		// Nothing reached the client, so the status line is still ours.
		code, label, message := classifyRelay(err)
		writeText(w, code, message)
		h.recordRequest(string(mode), label, start)
		return
	}

	status := statusInternal
	if res != nil {
		status = string(res.State)
	}
	h.recordRequest(string(mode), status, start)
}

// classifyRelay maps a relay failure that produced no output.
func classifyRelay(err error) (int, string, string) {
	var extractErr *prompt.ExtractionError
	var draftErr *relay.DraftError
	switch {
	case errors.As(err, &extractErr):
		return http.StatusBadGateway, string(relay.StateFailed), "model returned no output"
	case errors.As(err, &draftErr):
		return http.StatusBadGateway, string(relay.StateFailed), draftErr.Error()
	default:
		return classify(err)
	}
}

// parseFlag reads a checkbox style form value. Unrecognized values count as
// set, matching how browsers submit a checked box.
func parseFlag(v string) bool {
	v = strings.TrimSpace(v)
	switch strings.ToLower(v) {
	case "", "0", "off", "no":
		return false
	}
	if b, err := strconv.ParseBool(v); err == nil {
		return b
	}
	return true
}
