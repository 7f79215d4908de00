package domain

import (
	"errors"
	"fmt"
)

var (
	// Upload and extraction errors
	ErrUnsupportedFormat = errors.New("unsupported statement format")
	ErrFileTooLarge      = errors.New("statement file exceeds size limit")
	ErrEmptyFile         = errors.New("statement file is empty")

	// Classification errors
	ErrExternalServiceFailure     = errors.New("classification service failure")
	ErrMalformedClassifierOutput  = errors.New("classifier output is not valid JSON")
	ErrInvalidClassificationShape = errors.New("classification result has no transactions sequence")
	ErrInvalidCandidate           = errors.New("invalid transaction candidate")
	ErrPersistenceFailure         = errors.New("failed to persist transaction")

	// Authorization errors
	ErrTeamAccessDenied = errors.New("you don't have access to this team")

	// Catalog and storage errors
	ErrStatementNotFound = errors.New("statement not found")
	ErrBlobNotFound      = errors.New("blob not found")
	ErrBulkDeleteFailed  = errors.New("failed to delete transactions")
)

// MalformedOutputError carries the raw classifier text that failed to decode.
type MalformedOutputError struct {
	Raw string
	Err error
}

func (e *MalformedOutputError) Error() string {
	return fmt.Sprintf("%s: %v", ErrMalformedClassifierOutput, e.Err)
}

// Unwrap exposes both the sentinel and the decoder error to errors.Is.
func (e *MalformedOutputError) Unwrap() []error {
	return []error{ErrMalformedClassifierOutput, e.Err}
}
