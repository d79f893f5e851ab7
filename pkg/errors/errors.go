package errors

import (
	"errors"
	"fmt"
)

// Codes carried by errors that cross a resolution boundary.
const (
	CodeShortcodeNotFound      = "shortcode_not_found"
	CodeTokenAcquisitionFailed = "token_acquisition_failed"
	CodeUpstreamRequestFailed  = "upstream_request_failed"
	CodeUnsupportedContentType = "unsupported_content_type"
	CodeScoringDegraded        = "scoring_degraded"
	CodeUnknown                = "unknown"
)

// Error represents a custom error type
type Error struct {
	Code    string
	Message string
	Err     error
}

// Error returns the error message
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error carrying the same non-empty code, so a wrapped
// instance still satisfies errors.Is against the bare sentinel.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t.Code == "" {
		return false
	}
	return t.Code == e.Code
}

// New creates a new error with a message
func New(message string) error {
	return &Error{
		Message: message,
	}
}

// NewWithCode creates a sentinel error identified by code.
func NewWithCode(code, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// WrapWithCode wraps an error with a code and message
func WrapWithCode(err error, code, message string) error {
	if err == nil {
		return nil
	}
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// GetCode returns the first non-empty code in the chain.
func GetCode(err error) string {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return ""
		}
		if e.Code != "" {
			return e.Code
		}
		err = e.Err
	}
	return ""
}
