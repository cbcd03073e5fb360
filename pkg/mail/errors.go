package mail

import "fmt"

// NotAuthorizedError means the account has no usable OAuth credentials or
// token.
type NotAuthorizedError struct {
	Reason string
	Cause  error
}

// Error implements the error interface.
func (e *NotAuthorizedError) Error() string {
	msg := "mail account not authorized"
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Cause != nil {
		msg += fmt.Sprintf(": %v", e.Cause)
	}
	return msg + " (run \"tonecoach auth\")"
}

// Unwrap returns the underlying cause error.
func (e *NotAuthorizedError) Unwrap() error {
	return e.Cause
}

// GatewayError is a failed mail API call.
type GatewayError struct {
	Op  string // "list_threads", "get_thread", "create_draft"
	Err error
}

// Error implements the error interface.
func (e *GatewayError) Error() string {
	return fmt.Sprintf("mail %s failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *GatewayError) Unwrap() error {
	return e.Err
}

// NotFoundError means the requested thread does not exist.
type NotFoundError struct {
	ThreadID string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("thread %q not found", e.ThreadID)
}
