package relay

import "fmt"

// UpstreamError is a failure reported by the model stream.
type UpstreamError struct {
	Provider string
	Err      error
}

// Error implements the error interface.
func (e *UpstreamError) Error() string {
	return fmt.Sprintf("model stream from %q failed: %v", e.Provider, e.Err)
}

// Unwrap returns the underlying error.
func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// DraftError is a failure to file the extracted section.
type DraftError struct {
	ThreadID string
	Err      error
}

// Error implements the error interface.
func (e *DraftError) Error() string {
	return fmt.Sprintf("draft for thread %q not created: %v", e.ThreadID, e.Err)
}

// Unwrap returns the underlying error.
func (e *DraftError) Unwrap() error {
	return e.Err
}
