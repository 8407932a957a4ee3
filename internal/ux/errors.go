package ux

import (
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/felixgeelhaar/studydash/internal/errors"
)

// ErrorWithSuggestion wraps an error with helpful recovery suggestions
type ErrorWithSuggestion struct {
	Err        error
	Suggestion string
}

// Error implements the error interface
func (e *ErrorWithSuggestion) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("%v\n\n💡 Suggestion: %s", e.Err, e.Suggestion)
	}
	return e.Err.Error()
}

// Unwrap provides access to the underlying error
func (e *ErrorWithSuggestion) Unwrap() error {
	return e.Err
}

// NewErrorWithSuggestion creates a new error with a suggestion
func NewErrorWithSuggestion(err error, suggestion string) error {
	if err == nil {
		return nil
	}
	return &ErrorWithSuggestion{
		Err:        err,
		Suggestion: suggestion,
	}
}

// EnhanceError adds a suggestion to uncoded errors whose message is
// recognisable. Coded errors already carry their own suggestions.
func EnhanceError(err error) error {
	if err == nil {
		return nil
	}

	var se *errors.StudyError
	if stderrors.As(err, &se) {
		return err
	}

	errMsg := err.Error()

	if strings.Contains(errMsg, "connection refused") || strings.Contains(errMsg, "no such host") {
		return NewErrorWithSuggestion(err,
			"Check that the backend is running and api.url points at it ('studydash config get api.url')")
	}

	if strings.Contains(errMsg, "context deadline exceeded") || strings.Contains(errMsg, "Client.Timeout") {
		return NewErrorWithSuggestion(err,
			"The backend is slow to respond; raise api.timeout with 'studydash config set api.timeout 60s'")
	}

	if strings.Contains(errMsg, "permission denied") {
		return NewErrorWithSuggestion(err,
			"Check permissions on ~/.studydash and the session file")
	}

	return err
}

// FormatError renders err for the terminal, with suggestions and docs for
// coded errors and a best-effort hint for everything else.
func FormatError(err error) string {
	if err == nil {
		return ""
	}

	var se *errors.StudyError
	if stderrors.As(err, &se) {
		detailed := se.Detailed()
		if outer := err.Error(); outer != se.Error() {
			return strings.Replace(detailed, se.Error(), outer, 1)
		}
		return detailed
	}

	return EnhanceError(err).Error()
}
