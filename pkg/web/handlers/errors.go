package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"mercator-hq/tonecoach/pkg/mail"
	"mercator-hq/tonecoach/pkg/prompt"
	"mercator-hq/tonecoach/pkg/providers"
	"mercator-hq/tonecoach/pkg/relay"
)

// Status labels used for request metrics when no stream was relayed.
const (
	statusBadRequest    = "bad_request"
	statusNotFound      = "not_found"
	statusUnauthorized  = "unauthorized"
	statusUpstreamError = "upstream_error"
	statusConfigError   = "config_error"
	statusCancelled     = "cancelled"
	statusInternal      = "internal_error"
)

// classify maps an error raised before streaming to an HTTP status code,
// a metrics label and the message shown to the user.
func classify(err error) (code int, label, message string) {
	var (
		missingErr  *prompt.MissingInputError
		notFoundErr *mail.NotFoundError
		authErr     *mail.NotAuthorizedError
		gatewayErr  *mail.GatewayError
		configErr   *providers.ConfigError
		upstreamErr *relay.UpstreamError
	)

	switch {
	case errors.As(err, &missingErr):
		return http.StatusBadRequest, statusBadRequest, "missing required field: " + missingErr.Field
	case errors.As(err, &notFoundErr):
		return http.StatusNotFound, statusNotFound, notFoundErr.Error()
	case errors.As(err, &authErr):
		return http.StatusServiceUnavailable, statusUnauthorized, authErr.Error()
	case errors.As(err, &gatewayErr):
		return http.StatusBadGateway, statusUpstreamError, gatewayErr.Error()
	case errors.As(err, &configErr):
		return http.StatusInternalServerError, statusConfigError, configErr.Error()
	case errors.As(err, &upstreamErr):
		return http.StatusBadGateway, statusUpstreamError, upstreamErr.Error()
	case isProviderError(err):
		return http.StatusBadGateway, statusUpstreamError, fmt.Sprintf("model request failed: %v", err)
	case errors.Is(err, context.Canceled):
		return 499, statusCancelled, "request cancelled"
	default:
		return http.StatusInternalServerError, statusInternal, "internal error"
	}
}

func isProviderError(err error) bool {
	var (
		provErr    *providers.ProviderError
		authErr    *providers.AuthError
		rateErr    *providers.RateLimitError
		timeoutErr *providers.TimeoutError
		parseErr   *providers.ParseError
		streamErr  *providers.StreamError
	)
	return errors.As(err, &provErr) ||
		errors.As(err, &authErr) ||
		errors.As(err, &rateErr) ||
		errors.As(err, &timeoutErr) ||
		errors.As(err, &parseErr) ||
		errors.As(err, &streamErr) ||
		errors.Is(err, context.DeadlineExceeded)
}

// writeText writes a plain-text error response.
func writeText(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(code)
	fmt.Fprintln(w, message)
}

// writeJSON writes data with the given status code.
func writeJSON(w http.ResponseWriter, code int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	return json.NewEncoder(w).Encode(data)
}
