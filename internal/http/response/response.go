// Package response builds the uniform JSON envelope every UTub endpoint
// returns. The envelope is the one surface the front-end binds to: changing a
// key or an error code is a breaking change.
package response

import (
	"encoding/json/v2"
	"log/slog"
	"net/http"

	apperrors "github.com/utubapp/utub-server/internal/errors"
)

// Status values the front-end switches on.
const (
	StatusSuccess  = "Success"
	StatusFailure  = "Failure"
	StatusNoChange = "No change"
)

// Envelope is the response object. Beyond the fixed keys, success payloads
// merge their data in under domain keys ("URL", "UTubTag", "utubUrlTagIDs").
type Envelope map[string]any

// New creates an envelope with the fixed status and message keys.
func New(status, message string) Envelope {
	return Envelope{
		"status":  status,
		"message": message,
	}
}

// With adds a payload key and returns the envelope for chaining.
func (e Envelope) With(key string, value any) Envelope {
	e[key] = value
	return e
}

// Write serializes the envelope with the given HTTP status using json/v2.
func Write(w http.ResponseWriter, httpStatus int, e Envelope, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(httpStatus)

	if err := json.MarshalWrite(w, e); err != nil {
		if logger != nil {
			logger.Error("Failed to encode JSON response", "error", err)
		}
	}
}

// Success writes a 200 envelope with status "Success".
func Success(w http.ResponseWriter, message string, payload Envelope, logger *slog.Logger) {
	e := New(StatusSuccess, message)
	for k, v := range payload {
		e[k] = v
	}
	Write(w, http.StatusOK, e, logger)
}

// NoChange writes a 200 envelope with status "No change". Idempotent
// mutations land here; the watermark is untouched.
func NoChange(w http.ResponseWriter, message string, payload Envelope, logger *slog.Logger) {
	e := New(StatusNoChange, message)
	for k, v := range payload {
		e[k] = v
	}
	Write(w, http.StatusOK, e, logger)
}

// Failure writes a failure envelope. errorCode is the endpoint's stable
// integer; fields carries per-field validation messages when present.
func Failure(w http.ResponseWriter, httpStatus int, message string, errorCode int, fields map[string][]string, logger *slog.Logger) {
	e := New(StatusFailure, message)
	if errorCode != 0 {
		e["errorCode"] = errorCode
	}
	if len(fields) > 0 {
		e["errors"] = fields
	}
	Write(w, httpStatus, e, logger)
}

// Forbidden writes a 403 failure envelope.
func Forbidden(w http.ResponseWriter, message string, logger *slog.Logger) {
	Failure(w, http.StatusForbidden, message, 0, nil, logger)
}

// NotFound writes a 404 failure envelope.
func NotFound(w http.ResponseWriter, message string, logger *slog.Logger) {
	Failure(w, http.StatusNotFound, message, 0, nil, logger)
}

// InternalError writes a 500 failure envelope.
func InternalError(w http.ResponseWriter, message string, logger *slog.Logger) {
	Failure(w, http.StatusInternalServerError, message, 0, nil, logger)
}

// NotFoundPage writes the HTML not-found page served to direct browser hits.
// AJAX callers get the JSON envelope instead.
func NotFoundPage(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	w.Write([]byte("<!DOCTYPE html><html><head><title>Not Found</title></head><body><h1>404 Not Found</h1></body></html>\n"))
}

// MissingCSRF writes the legacy HTML body the front-end detects when the
// CSRF token is absent from a write request.
func MissingCSRF(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusBadRequest)
	w.Write([]byte("<p>The CSRF token is missing.</p>"))
}

// HandleError maps a domain error onto the envelope. Unknown errors become a
// 500 and are logged; domain denials are surfaced without logging.
func HandleError(w http.ResponseWriter, err error, logger *slog.Logger) {
	var domainErr *apperrors.Error
	if apperrors.As(err, &domainErr) {
		if domainErr.Code == apperrors.CodeNoChange {
			NoChange(w, domainErr.Message, nil, logger)
			return
		}
		e := New(StatusFailure, domainErr.Message)
		if domainErr.WireCode != 0 {
			e["errorCode"] = domainErr.WireCode
		}
		if len(domainErr.Fields) > 0 {
			e["errors"] = domainErr.Fields
		}
		for k, v := range domainErr.Payload {
			e[k] = v
		}
		Write(w, domainErr.HTTPStatus(), e, logger)
		return
	}

	if logger != nil {
		logger.Error("Unhandled error", "error", err)
	}
	InternalError(w, "internal server error", logger)
}
