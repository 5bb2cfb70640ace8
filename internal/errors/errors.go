// Package errors provides standardized domain errors with codes for the UTub API.
//
// Usage:
//
//	// In services - return typed errors
//	if tagged {
//	    return errors.Conflict("URL already has this tag.")
//	}
//
//	// In handlers - check with errors.Is
//	if errors.Is(err, errors.ErrNotFound) {
//	    ...
//	}
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Re-export standard library functions for convenience.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	Join   = errors.Join
)

// Code represents a machine-readable error code.
type Code string

// Error codes used throughout the application.
const (
	CodeNotFound           Code = "NOT_FOUND"
	CodeForbidden          Code = "FORBIDDEN"
	CodeValidation         Code = "VALIDATION"
	CodeConflict           Code = "CONFLICT"
	CodeInternal           Code = "INTERNAL"
	CodeInvalidURL         Code = "INVALID_URL"
	CodeURLWithCredentials Code = "URL_WITH_CREDENTIALS"
	CodeWaybackRateLimited Code = "WAYBACK_RATE_LIMITED"
	CodeNoChange           Code = "NO_CHANGE"
)

// HTTPStatus returns the appropriate HTTP status code for an error code.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	case CodeForbidden:
		return http.StatusForbidden
	case CodeValidation, CodeInvalidURL, CodeURLWithCredentials, CodeWaybackRateLimited:
		return http.StatusBadRequest
	case CodeNoChange:
		return http.StatusOK
	default:
		return http.StatusInternalServerError
	}
}

// Error is a domain error with a code, a user-facing message, the
// small-integer wire code the front-end binds to, and optional per-field
// detail for form failures.
type Error struct {
	Code     Code                `json:"code"`
	Message  string              `json:"message"`
	WireCode int                 `json:"error_code,omitempty"`
	Fields   map[string][]string `json:"fields,omitempty"`
	Payload  map[string]any      `json:"payload,omitempty"`
	cause    error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is reports whether target matches this error.
// Matches if target is an *Error with the same Code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// HTTPStatus returns the HTTP status code for this error.
func (e *Error) HTTPStatus() int {
	return e.Code.HTTPStatus()
}

// WithMessage returns a copy with a different user-facing message.
func (e *Error) WithMessage(msg string) *Error {
	clone := *e
	clone.Message = msg
	return &clone
}

// WithWireCode returns a copy carrying the endpoint's stable integer code.
func (e *Error) WithWireCode(code int) *Error {
	clone := *e
	clone.WireCode = code
	return &clone
}

// WithPayload returns a copy carrying extra envelope keys (e.g. echoing the
// canonical URL string on a uniqueness conflict).
func (e *Error) WithPayload(payload map[string]any) *Error {
	clone := *e
	clone.Payload = payload
	return &clone
}

// WithFields returns a copy carrying per-field validation messages.
func (e *Error) WithFields(fields map[string][]string) *Error {
	clone := *e
	clone.Fields = fields
	return &clone
}

// WithCause wraps an underlying error.
func (e *Error) WithCause(err error) *Error {
	clone := *e
	clone.cause = err
	return &clone
}

// Sentinel errors for use with errors.Is().
var (
	ErrNotFound           = &Error{Code: CodeNotFound, Message: "not found"}
	ErrForbidden          = &Error{Code: CodeForbidden, Message: "forbidden"}
	ErrValidation         = &Error{Code: CodeValidation, Message: "validation error"}
	ErrConflict           = &Error{Code: CodeConflict, Message: "conflict"}
	ErrInternal           = &Error{Code: CodeInternal, Message: "internal error"}
	ErrInvalidURL         = &Error{Code: CodeInvalidURL, Message: "invalid URL"}
	ErrURLWithCredentials = &Error{Code: CodeURLWithCredentials, Message: "URL contains credentials"}
	ErrWaybackRateLimited = &Error{Code: CodeWaybackRateLimited, Message: "URL validation rate limited"}
	ErrNoChange           = &Error{Code: CodeNoChange, Message: "no change"}
)

// Constructor functions for creating errors with custom messages.

// NotFound creates a not found error.
func NotFound(msg string) *Error {
	return &Error{Code: CodeNotFound, Message: msg}
}

// Forbidden creates a forbidden error.
func Forbidden(msg string) *Error {
	return &Error{Code: CodeForbidden, Message: msg}
}

// Validation creates a validation error.
func Validation(msg string) *Error {
	return &Error{Code: CodeValidation, Message: msg}
}

// Validationf creates a validation error with formatted message.
func Validationf(format string, args ...any) *Error {
	return &Error{Code: CodeValidation, Message: fmt.Sprintf(format, args...)}
}

// Conflict creates a conflict error.
func Conflict(msg string) *Error {
	return &Error{Code: CodeConflict, Message: msg}
}

// Internal creates an internal error.
func Internal(msg string) *Error {
	return &Error{Code: CodeInternal, Message: msg}
}

// NoChange creates a no-change result carrying the given message.
func NoChange(msg string) *Error {
	return &Error{Code: CodeNoChange, Message: msg}
}

// Wrap wraps an error with a code and message.
func Wrap(err error, code Code, msg string) *Error {
	return &Error{Code: code, Message: msg, cause: err}
}
