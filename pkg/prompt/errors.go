package prompt

import "fmt"

// MissingInputError reports a required template input that was empty.
type MissingInputError struct {
	// Field is the name of the missing input (thread, draft, goal).
	Field string
}

// Error implements the error interface.
func (e *MissingInputError) Error() string {
	return fmt.Sprintf("missing required input: %s", e.Field)
}

// ExtractionError reports model output without the expected section.
// It is a content failure of the model, not a transport failure.
type ExtractionError struct {
	// Label is the section label that was not found.
	Label string
}

// Error implements the error interface.
func (e *ExtractionError) Error() string {
	return fmt.Sprintf("model output has no %q section", e.Label)
}
