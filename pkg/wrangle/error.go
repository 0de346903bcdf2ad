// pkg/wrangle/error.go
package wrangle

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/David-Botos/property-wrangle/pkg/cleaner"
	"github.com/David-Botos/property-wrangle/pkg/model"
)

// Stage names of the runner that the cleaner does not own
const (
	StageAcquire = "acquire"
	StageSchema  = "schema"
	StageVerify  = "verify"
	StageWrite   = "write"
)

// Sentinel errors a caller can match with errors.Is
var (
	ErrMissingColumn = model.ErrColumnNotFound
	ErrEmptyTable    = cleaner.ErrEmptyTable
	ErrAllNull       = cleaner.ErrAllNull
)

// ErrorCategory defines categories of errors during a run
type ErrorCategory int

const (
	ErrorCategoryNone ErrorCategory = iota
	ErrorCategoryAcquisition
	ErrorCategorySchema
	ErrorCategoryData
	ErrorCategoryVerification
	ErrorCategoryOutput
	ErrorCategoryCanceled
)

// String returns a string representation of the error category
func (ec ErrorCategory) String() string {
	switch ec {
	case ErrorCategoryNone:
		return "None"
	case ErrorCategoryAcquisition:
		return "Acquisition"
	case ErrorCategorySchema:
		return "Schema"
	case ErrorCategoryData:
		return "Data"
	case ErrorCategoryVerification:
		return "Verification"
	case ErrorCategoryOutput:
		return "Output"
	case ErrorCategoryCanceled:
		return "Canceled"
	default:
		return fmt.Sprintf("Unknown(%d)", ec)
	}
}

// MarshalText lets categories key JSON maps by name
func (ec ErrorCategory) MarshalText() ([]byte, error) {
	return []byte(ec.String()), nil
}

// StageError records which stage failed and, when known, on which column
type StageError struct {
	Stage  string
	Column string
	Err    error
}

func (e *StageError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("%s stage failed on column %s: %v", e.Stage, e.Column, e.Err)
	}
	return fmt.Sprintf("%s stage failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Category classifies the failure by stage and cause
func (e *StageError) Category() ErrorCategory {
	return CategorizeError(e)
}

// wrapStage wraps err with the stage name. A nil error stays nil.
func wrapStage(stage string, err error) error {
	if err == nil {
		return nil
	}
	var se *StageError
	if errors.As(err, &se) {
		return err
	}
	return &StageError{Stage: stage, Column: columnOf(err), Err: err}
}

// columnOf extracts the column a sentinel error was raised for. The cleaner
// and the table wrap sentinels as "<sentinel>: <column>".
func columnOf(err error) string {
	for _, sentinel := range []error{ErrMissingColumn, ErrAllNull} {
		if !errors.Is(err, sentinel) {
			continue
		}
		msg := err.Error()
		i := strings.Index(msg, sentinel.Error()+": ")
		if i < 0 {
			return ""
		}
		rest := msg[i+len(sentinel.Error())+2:]
		if j := strings.IndexAny(rest, ": "); j >= 0 {
			rest = rest[:j]
		}
		return rest
	}
	return ""
}

// CategorizeError determines the category of an error
func CategorizeError(err error) ErrorCategory {
	if err == nil {
		return ErrorCategoryNone
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return ErrorCategoryCanceled
	}

	var se *StageError
	if errors.As(err, &se) {
		switch se.Stage {
		case StageAcquire:
			return ErrorCategoryAcquisition
		case StageSchema:
			return ErrorCategorySchema
		case StageVerify:
			return ErrorCategoryVerification
		case StageWrite:
			return ErrorCategoryOutput
		}
	}

	// everything past schema validation fails on the data itself
	return ErrorCategoryData
}
