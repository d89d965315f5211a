package status

import (
	"errors"
	"fmt"
)

// Source failure kinds.
var (
	// ErrSourceUnavailable is returned when the status tool cannot be found, started or reached.
	ErrSourceUnavailable = errors.New("status source unavailable")

	// ErrSourceTimeout is returned when the status tool did not answer in time.
	ErrSourceTimeout = errors.New("status source timed out")
)

// SourceError describes a failed status query.
type SourceError struct {
	Source  string
	Message string // human readable, sent to clients as the error document data
	Kind    error
	Err     error
}

// Error implements the error interface
func (e *SourceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Source, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Source, e.Message)
}

// Unwrap exposes both the failure kind and the underlying cause.
func (e *SourceError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// Unavailable builds a SourceError of kind ErrSourceUnavailable.
func Unavailable(source, message string, err error) *SourceError {
	return &SourceError{Source: source, Message: message, Kind: ErrSourceUnavailable, Err: err}
}

// Timeout builds a SourceError of kind ErrSourceTimeout.
func Timeout(source, message string, err error) *SourceError {
	return &SourceError{Source: source, Message: message, Kind: ErrSourceTimeout, Err: err}
}
