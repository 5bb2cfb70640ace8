package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"time"

	"github.com/utubapp/utub-server/internal/domain"
	"github.com/utubapp/utub-server/internal/store"
)

// SessionCookieName is the cookie the external login component sets.
const SessionCookieName = "session"

// CSRFHeaderName is the header write requests echo the CSRF token in.
const CSRFHeaderName = "X-CSRFToken"

// Resolution failures. Handlers treat all three as "not logged in".
var (
	ErrNoSession      = errors.New("no session token")
	ErrSessionExpired = errors.New("session expired")
	ErrMissingCSRF    = errors.New("CSRF token missing")
	ErrBadCSRF        = errors.New("CSRF token mismatch")
)

// Service resolves session tokens to users.
type Service struct {
	store  store.Store
	logger *slog.Logger
}

// NewService creates a session resolver.
func NewService(st store.Store, logger *slog.Logger) *Service {
	return &Service{store: st, logger: logger}
}

// Issue creates a session for a user. This is the seam the external login
// component calls through after it has verified credentials; tests use it to
// build authenticated fixtures.
func (s *Service) Issue(ctx context.Context, userID int64, ttl time.Duration) (*domain.Session, error) {
	token, err := NewSessionToken()
	if err != nil {
		return nil, err
	}
	csrf, err := NewCSRFToken()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	session := &domain.Session{
		Token:     token,
		UserID:    userID,
		CSRFToken: csrf,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}
	if err := s.store.CreateSession(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// Resolve maps a session token to its user, rejecting expired sessions.
func (s *Service) Resolve(ctx context.Context, token string) (*domain.User, *domain.Session, error) {
	if token == "" {
		return nil, nil, ErrNoSession
	}

	session, err := s.store.GetSessionByToken(ctx, token)
	if err != nil {
		if errors.Is(err, store.ErrSessionNotFound) {
			return nil, nil, ErrNoSession
		}
		return nil, nil, err
	}
	if session.Expired(time.Now()) {
		return nil, nil, ErrSessionExpired
	}

	user, err := s.store.GetUserByID(ctx, session.UserID)
	if err != nil {
		return nil, nil, err
	}
	return user, session, nil
}

// VerifyCSRF checks the submitted token against the session's in constant
// time. An empty submission is a distinct condition: the front-end probes
// for the missing-token HTML body.
func VerifyCSRF(session *domain.Session, submitted string) error {
	if submitted == "" {
		return ErrMissingCSRF
	}
	if subtle.ConstantTimeCompare([]byte(session.CSRFToken), []byte(submitted)) != 1 {
		return ErrBadCSRF
	}
	return nil
}
