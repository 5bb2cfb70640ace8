package domain

import "time"

// User is an authenticated account. Registration and login live outside the
// core; every other entity references users by id.
type User struct {
	ID             int64     `json:"id"`
	Email          string    `json:"email"`
	EmailValidated bool      `json:"email_validated"`
	CreatedAt      time.Time `json:"created_at"`
}

// Session binds a session token to a user. Issued by the external login
// component; the core only resolves it.
type Session struct {
	Token     string    `json:"token"`
	UserID    int64     `json:"user_id"`
	CSRFToken string    `json:"csrf_token"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// Expired reports whether the session is past its expiry.
func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
