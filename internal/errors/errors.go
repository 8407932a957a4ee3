package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// ErrorCode represents a unique error identifier
type ErrorCode string

// Error categories
const (
	// Authentication errors (AUTH-001 to AUTH-099)
	ErrCodeAuthInvalidCredentials ErrorCode = "AUTH-001"
	ErrCodeAuthNoSession          ErrorCode = "AUTH-002"
	ErrCodeAuthSessionExpired     ErrorCode = "AUTH-003"
	ErrCodeAuthNotReady           ErrorCode = "AUTH-004"

	// Quiz loading errors (QUIZ-001 to QUIZ-099)
	ErrCodeQuizLoadFailed ErrorCode = "QUIZ-001"
	ErrCodeQuizInvalid    ErrorCode = "QUIZ-002"

	// Exam attempt errors (EXAM-001 to EXAM-099)
	ErrCodeExamSubmitFailed    ErrorCode = "EXAM-001"
	ErrCodeExamSubmitting      ErrorCode = "EXAM-002"
	ErrCodeExamSubmitted       ErrorCode = "EXAM-003"
	ErrCodeExamClosed          ErrorCode = "EXAM-004"
	ErrCodeExamUnknownQuestion ErrorCode = "EXAM-005"
	ErrCodeExamNotActive       ErrorCode = "EXAM-006"
	ErrCodeExamIndexOutOfRange ErrorCode = "EXAM-007"

	// Backend API errors (API-001 to API-099)
	ErrCodeAPITransport       ErrorCode = "API-001"
	ErrCodeAPIStatus          ErrorCode = "API-002"
	ErrCodeAPIDecode          ErrorCode = "API-003"
	ErrCodeAPIInvalidResponse ErrorCode = "API-004"

	// Persisted storage errors (STORE-001 to STORE-099)
	ErrCodeStoreRead    ErrorCode = "STORE-001"
	ErrCodeStoreWrite   ErrorCode = "STORE-002"
	ErrCodeStoreCrypto  ErrorCode = "STORE-003"
	ErrCodeStoreCorrupt ErrorCode = "STORE-004"

	// Configuration errors (CONFIG-001 to CONFIG-099)
	ErrCodeConfigLoad       ErrorCode = "CONFIG-001"
	ErrCodeConfigSave       ErrorCode = "CONFIG-002"
	ErrCodeConfigUnknownKey ErrorCode = "CONFIG-003"

	// Command usage errors (USAGE-001 to USAGE-099)
	ErrCodeUsageInvalidFormat ErrorCode = "USAGE-001"
)

// StudyError is an error carrying a code, recovery suggestions and an optional cause
type StudyError struct {
	Code        ErrorCode
	Message     string
	Suggestions []string
	DocsURL     string
	Cause       error
}

// Error implements the error interface
func (e *StudyError) Error() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("[%s] %s", e.Code, e.Message))

	if e.Cause != nil {
		b.WriteString(fmt.Sprintf(": %v", e.Cause))
	}

	return b.String()
}

// Detailed renders the error with its suggestions and docs link, for terminal output
func (e *StudyError) Detailed() string {
	var b strings.Builder
	b.WriteString(e.Error())

	if len(e.Suggestions) > 0 {
		b.WriteString("\n\nSuggestions:")
		for _, suggestion := range e.Suggestions {
			b.WriteString(fmt.Sprintf("\n  • %s", suggestion))
		}
	}

	if e.DocsURL != "" {
		b.WriteString(fmt.Sprintf("\n\nDocumentation: %s", e.DocsURL))
	}

	return b.String()
}

// Unwrap implements error unwrapping for errors.Is and errors.As
func (e *StudyError) Unwrap() error {
	return e.Cause
}

// New creates a new StudyError
func New(code ErrorCode, message string) *StudyError {
	return &StudyError{
		Code:    code,
		Message: message,
	}
}

// Wrap creates a new StudyError wrapping an existing error
func Wrap(code ErrorCode, message string, cause error) *StudyError {
	return &StudyError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WithSuggestion adds a suggestion to the error
func (e *StudyError) WithSuggestion(suggestion string) *StudyError {
	e.Suggestions = append(e.Suggestions, suggestion)
	return e
}

// WithSuggestions adds multiple suggestions to the error
func (e *StudyError) WithSuggestions(suggestions ...string) *StudyError {
	e.Suggestions = append(e.Suggestions, suggestions...)
	return e
}

// WithDocs adds a documentation URL to the error
func (e *StudyError) WithDocs(url string) *StudyError {
	e.DocsURL = url
	return e
}

// CodeOf returns the code of the outermost StudyError in err's chain, or "" if there is none.
func CodeOf(err error) ErrorCode {
	var se *StudyError
	if stderrors.As(err, &se) {
		return se.Code
	}
	return ""
}

// HasCode reports whether any StudyError in err's chain carries code.
func HasCode(err error, code ErrorCode) bool {
	for err != nil {
		var se *StudyError
		if !stderrors.As(err, &se) {
			return false
		}
		if se.Code == code {
			return true
		}
		err = se.Cause
	}
	return false
}

// Family returns the prefix of a code, e.g. "AUTH" for "AUTH-003".
func (c ErrorCode) Family() string {
	if i := strings.IndexByte(string(c), '-'); i > 0 {
		return string(c)[:i]
	}
	return string(c)
}

// Common error constructors for frequently used errors

// NewNoSessionError is returned when a command needs a session and none exists
func NewNoSessionError() *StudyError {
	return New(ErrCodeAuthNoSession, "not logged in").
		WithSuggestion("Run 'studydash auth login' to sign in").
		WithSuggestion("Run 'studydash auth register' to create an account")
}

// NewInvalidCredentialsError wraps a rejected login or register call
func NewInvalidCredentialsError(message string, cause error) *StudyError {
	if message == "" {
		message = "authentication failed"
	}
	return Wrap(ErrCodeAuthInvalidCredentials, message, cause).
		WithSuggestion("Check your email and password")
}

// NewQuizLoadError is returned when a quiz cannot be fetched for an attempt
func NewQuizLoadError(quizID string, cause error) *StudyError {
	return Wrap(ErrCodeQuizLoadFailed, fmt.Sprintf("failed to load quiz %s", quizID), cause).
		WithSuggestion("Run 'studydash quiz list' to see available quizzes")
}

// NewSubmitFailedError is returned when the grading collaborator rejects or never receives a submission
func NewSubmitFailedError(quizID string, cause error) *StudyError {
	return Wrap(ErrCodeExamSubmitFailed, fmt.Sprintf("failed to submit quiz %s", quizID), cause).
		WithSuggestion("Your answers are kept; submit again to retry")
}
