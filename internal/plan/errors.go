package plan

import "fmt"

// ValidationError is fatal: the run aborts with no partial output.
// Provisional output is never built on top of unvalidated input.
type ValidationError struct {
	Stage string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed in %s: %s", e.Stage, e.Msg)
}

func validationErrorf(stage, format string, args ...any) error {
	return &ValidationError{Stage: stage, Msg: fmt.Sprintf(format, args...)}
}
