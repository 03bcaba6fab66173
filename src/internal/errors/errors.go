// Package errors provides domain-specific error types for the ikuai-bridge application.
//
// This package defines structured errors with error codes, making it easier to handle
// and test different error conditions consistently across the application. Poll and
// action callers branch on the code with errors.Is against the sentinels below.
package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a category of error that can occur in the application.
type ErrorCode string

const (
	// ErrCodeConfig indicates a configuration-related error.
	ErrCodeConfig ErrorCode = "CONFIG_ERROR"

	// ErrCodeNetwork indicates a transport failure talking to the router.
	// It is transient: the next cycle retries.
	ErrCodeNetwork ErrorCode = "NETWORK_ERROR"

	// ErrCodeAuthExpired indicates the router reported the session key as expired.
	ErrCodeAuthExpired ErrorCode = "AUTH_EXPIRED"

	// ErrCodeAuthRejected indicates the router rejected the configured credentials.
	// It is terminal until the integration is reconfigured.
	ErrCodeAuthRejected ErrorCode = "AUTH_REJECTED"

	// ErrCodeMalformed indicates a response that could not be interpreted.
	ErrCodeMalformed ErrorCode = "MALFORMED_RESPONSE"

	// ErrCodeAction indicates a control command failed.
	ErrCodeAction ErrorCode = "ACTION_ERROR"

	// ErrCodeTimeout indicates a polling cycle did not finish in time.
	ErrCodeTimeout ErrorCode = "TIMEOUT"

	// ErrCodeValidation indicates a validation error.
	ErrCodeValidation ErrorCode = "VALIDATION_ERROR"

	// ErrCodeInternal indicates an unexpected internal error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// Sentinels for errors.Is. Matching is by code only.
var (
	ErrConfig       = New(ErrCodeConfig, "configuration error")
	ErrNetwork      = New(ErrCodeNetwork, "network error")
	ErrAuthExpired  = New(ErrCodeAuthExpired, "session expired")
	ErrAuthRejected = New(ErrCodeAuthRejected, "credentials rejected by router")
	ErrMalformed    = New(ErrCodeMalformed, "malformed response")
	ErrAction       = New(ErrCodeAction, "action failed")
	ErrTimeout      = New(ErrCodeTimeout, "cycle timed out")
	ErrValidation   = New(ErrCodeValidation, "validation failed")
)

// Error represents a domain-specific error with an error code and optional cause.
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error for errors.Is and errors.As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is checks if the error matches the target error code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// New creates a new domain error with the specified code and message.
func New(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   nil,
	}
}

// Wrap creates a new domain error wrapping an existing error.
func Wrap(code ErrorCode, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// CodeOf returns the code of the first *Error in err's chain, or "" if there is none.
func CodeOf(err error) ErrorCode {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsTransient reports whether err should simply be retried on the next cycle.
func IsTransient(err error) bool {
	switch CodeOf(err) {
	case ErrCodeNetwork, ErrCodeTimeout, ErrCodeAuthExpired, ErrCodeMalformed:
		return true
	}
	return false
}

// NewConfigError creates a new configuration error.
func NewConfigError(message string, cause error) *Error {
	return Wrap(ErrCodeConfig, message, cause)
}

// NewNetworkError creates a new transport error.
func NewNetworkError(message string, cause error) *Error {
	return Wrap(ErrCodeNetwork, message, cause)
}

// NewAuthExpiredError creates a new session-expired error.
func NewAuthExpiredError(message string) *Error {
	return New(ErrCodeAuthExpired, message)
}

// NewAuthRejectedError creates a new credentials-rejected error.
func NewAuthRejectedError(message string) *Error {
	return New(ErrCodeAuthRejected, message)
}

// NewMalformedError creates a new malformed-response error.
func NewMalformedError(message string, cause error) *Error {
	return Wrap(ErrCodeMalformed, message, cause)
}

// NewActionError creates a new action failure error.
func NewActionError(message string, cause error) *Error {
	return Wrap(ErrCodeAction, message, cause)
}

// NewTimeoutError creates a new cycle timeout error.
func NewTimeoutError(message string, cause error) *Error {
	return Wrap(ErrCodeTimeout, message, cause)
}

// NewValidationError creates a new validation error.
func NewValidationError(message string, cause error) *Error {
	return Wrap(ErrCodeValidation, message, cause)
}

// NewInternalError creates a new internal error.
func NewInternalError(message string, cause error) *Error {
	return Wrap(ErrCodeInternal, message, cause)
}
