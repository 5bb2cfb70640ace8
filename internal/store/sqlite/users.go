package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/utubapp/utub-server/internal/domain"
	"github.com/utubapp/utub-server/internal/store"
)

// CreateUser inserts a user and assigns its id.
// Returns store.ErrAlreadyExists on a duplicate email.
func (s *Store) CreateUser(ctx context.Context, u *domain.User) error {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO users (email, email_validated, created_at)
		VALUES (?, ?, ?)`,
		u.Email,
		boolToInt(u.EmailValidated),
		formatTime(u.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrAlreadyExists
		}
		return err
	}
	u.ID, err = res.LastInsertId()
	return err
}

// GetUserByID retrieves a user by id.
// Returns store.ErrUserNotFound if the user does not exist.
func (s *Store) GetUserByID(ctx context.Context, id int64) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, email, email_validated, created_at
		FROM users WHERE id = ?`, id)

	var (
		u         domain.User
		validated int
		createdAt string
	)
	err := row.Scan(&u.ID, &u.Email, &validated, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	u.EmailValidated = validated != 0
	u.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateSession inserts a session row. Sessions are issued externally; the
// store only keeps them resolvable.
func (s *Store) CreateSession(ctx context.Context, sess *domain.Session) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (token, user_id, csrf_token, expires_at, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		sess.Token,
		sess.UserID,
		sess.CSRFToken,
		formatTime(sess.ExpiresAt),
		formatTime(sess.CreatedAt),
	)
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists
	}
	return err
}

// GetSessionByToken retrieves a session by its token.
// Returns store.ErrSessionNotFound if the session does not exist.
func (s *Store) GetSessionByToken(ctx context.Context, token string) (*domain.Session, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT token, user_id, csrf_token, expires_at, created_at
		FROM sessions WHERE token = ?`, token)

	var (
		sess      domain.Session
		expiresAt string
		createdAt string
	)
	err := row.Scan(&sess.Token, &sess.UserID, &sess.CSRFToken, &expiresAt, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}

	if sess.ExpiresAt, err = parseTime(expiresAt); err != nil {
		return nil, err
	}
	if sess.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &sess, nil
}
