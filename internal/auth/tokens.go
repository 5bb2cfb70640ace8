// Package auth resolves session cookies to users and verifies CSRF tokens.
// Registration, login, and session issuance belong to the external account
// component; the core only consumes what it minted.
package auth

import (
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Token lengths. Session tokens are opaque bearer credentials; CSRF tokens
// are bound to a session and echoed back on every write request.
const (
	sessionTokenLength = 32
	csrfTokenLength    = 24
)

// NewSessionToken generates an opaque session token.
func NewSessionToken() (string, error) {
	return gonanoid.New(sessionTokenLength)
}

// NewCSRFToken generates a CSRF token to pair with a session.
func NewCSRFToken() (string, error) {
	return gonanoid.New(csrfTokenLength)
}
