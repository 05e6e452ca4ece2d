package payslip

import (
	"errors"
	"fmt"
)

// Common extraction pipeline errors
var (
	// ErrEmptyDocument is returned when the input text is empty after cleaning.
	// This is the only error that aborts a pipeline run; everything else
	// degrades into warnings on the returned record.
	ErrEmptyDocument = errors.New("document contains no readable text")

	// ErrUnrecognizedDocument indicates the classifier scored the text below the
	// payslip threshold. The pipeline does not return it from Process — it is
	// folded into a low-confidence record — but OCR front-ends and callers may
	// use it to map results to a "try a clearer scan" message.
	ErrUnrecognizedDocument = errors.New("document not recognized as a payslip")
)

// PipelineError wraps errors with additional context about the stage that failed.
type PipelineError struct {
	// Op is the pipeline stage that failed (e.g., "CleanText", "Process").
	Op string

	// Err is the underlying error.
	Err error

	// Details provides additional context about the failure.
	Details string
}

// Error implements the error interface.
func (e *PipelineError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("payslip: %s failed: %s: %v", e.Op, e.Details, e.Err)
	}
	return fmt.Sprintf("payslip: %s failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *PipelineError) Unwrap() error {
	return e.Err
}

// Is implements error matching for Go 1.13+ error handling.
func (e *PipelineError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// WrapPipelineError wraps an error as a PipelineError if it isn't already one.
func WrapPipelineError(op string, err error, details string) error {
	if err == nil {
		return nil
	}

	var pErr *PipelineError
	if errors.As(err, &pErr) {
		return err // Already wrapped
	}

	return &PipelineError{Op: op, Err: err, Details: details}
}
