package engine

import (
	"errors"
	"fmt"
)

// RunError is a failure of the run itself, as opposed to the failure of one
// procedure (which is reported in its Result).
type RunError struct {
	// Code identifies the error category.
	Code RunErrorCode

	// Message is a human-readable description.
	Message string

	// RunID identifies the affected run, once one was assigned.
	RunID string

	// Err is the underlying cause, if any.
	Err error
}

// RunErrorCode categorizes run errors.
type RunErrorCode string

const (
	// ErrCodeUnknownProcedure indicates a requested procedure is not in the crate.
	ErrCodeUnknownProcedure RunErrorCode = "UNKNOWN_PROCEDURE"

	// ErrCodeCancelled indicates the context ended before every procedure
	// was dispatched.
	ErrCodeCancelled RunErrorCode = "CANCELLED"

	// ErrCodeStore indicates results could not be persisted.
	ErrCodeStore RunErrorCode = "STORE"
)

// Error implements the error interface.
func (e *RunError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.RunID != "" {
		msg += fmt.Sprintf(" (run=%s)", e.RunID)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *RunError) Unwrap() error { return e.Err }

// IsCancelled reports whether err is a cancelled-run error.
// Uses errors.As to handle wrapped errors.
func IsCancelled(err error) bool {
	var re *RunError
	if errors.As(err, &re) {
		return re.Code == ErrCodeCancelled
	}
	return false
}

func storeError(runID string, err error) *RunError {
	return &RunError{Code: ErrCodeStore, Message: "persist results", RunID: runID, Err: err}
}
