package store

import (
	"fmt"
	"net/http"
)

// Error is a store-level error with an HTTP status code.
type Error struct {
	Code    int    // HTTP status code
	Message string // User-facing message
	Err     error  // Underlying error (optional)
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches two store errors by code and message so a sentinel wrapped
// with WithCause still compares equal to the bare sentinel.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code && t.Message == e.Message
}

// HTTPCode returns the HTTP status code associated with this error.
func (e *Error) HTTPCode() int { return e.Code }

// WithCause wraps an underlying error.
func (e *Error) WithCause(err error) *Error {
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		Err:     err,
	}
}

// Sentinel errors. NotFound variants collapse "absent" and "in a different
// UTub than the path names" so existence is never leaked.
var (
	ErrUserNotFound    = &Error{Code: http.StatusNotFound, Message: "user not found"}
	ErrSessionNotFound = &Error{Code: http.StatusNotFound, Message: "session not found"}
	ErrUTubNotFound    = &Error{Code: http.StatusNotFound, Message: "UTub not found"}
	ErrURLNotFound     = &Error{Code: http.StatusNotFound, Message: "URL not found"}
	ErrUTubURLNotFound = &Error{Code: http.StatusNotFound, Message: "URL not found in UTub"}
	ErrTagNotFound     = &Error{Code: http.StatusNotFound, Message: "tag not found in UTub"}
	ErrURLTagNotFound  = &Error{Code: http.StatusNotFound, Message: "tag not on URL"}
	ErrMemberNotFound  = &Error{Code: http.StatusNotFound, Message: "member not found"}

	ErrNotMember    = &Error{Code: http.StatusForbidden, Message: "caller is not a member of this UTub"}
	ErrNotPermitted = &Error{Code: http.StatusForbidden, Message: "caller may not modify this resource"}

	ErrURLInUTub    = &Error{Code: http.StatusConflict, Message: "URL already in UTub"}
	ErrTagInUTub    = &Error{Code: http.StatusBadRequest, Message: "tag already in UTub"}
	ErrTagOnURL     = &Error{Code: http.StatusBadRequest, Message: "tag already on URL"}
	ErrTooManyTags  = &Error{Code: http.StatusBadRequest, Message: "URL already carries the maximum number of tags"}
	ErrMemberExists = &Error{Code: http.StatusConflict, Message: "user is already a member"}

	ErrAlreadyExists = &Error{Code: http.StatusConflict, Message: "resource already exists"}
	ErrInvalidInput  = &Error{Code: http.StatusBadRequest, Message: "invalid input"}
)
