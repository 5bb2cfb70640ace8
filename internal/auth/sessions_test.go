package auth

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utubapp/utub-server/internal/domain"
	"github.com/utubapp/utub-server/internal/store/sqlite"
)

func newTestService(t *testing.T) (*Service, *sqlite.Store) {
	t.Helper()

	log := slog.New(slog.DiscardHandler)
	st, err := sqlite.Open(filepath.Join(t.TempDir(), "utub.db"), log)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = st.Close()
	})
	return NewService(st, log), st
}

func seedUser(t *testing.T, st *sqlite.Store) *domain.User {
	t.Helper()

	u := &domain.User{
		Email:          "u1@example.com",
		EmailValidated: true,
		CreatedAt:      time.Now().UTC(),
	}
	require.NoError(t, st.CreateUser(context.Background(), u))
	return u
}

func TestIssueAndResolve(t *testing.T) {
	svc, st := newTestService(t)
	u := seedUser(t, st)

	sess, err := svc.Issue(context.Background(), u.ID, time.Hour)
	require.NoError(t, err)
	assert.Len(t, sess.Token, 32)
	assert.Len(t, sess.CSRFToken, 24)
	assert.NotEqual(t, sess.Token, sess.CSRFToken)

	user, resolved, err := svc.Resolve(context.Background(), sess.Token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, user.ID)
	assert.Equal(t, sess.CSRFToken, resolved.CSRFToken)
}

func TestResolve_Failures(t *testing.T) {
	svc, st := newTestService(t)
	u := seedUser(t, st)

	_, _, err := svc.Resolve(context.Background(), "")
	assert.ErrorIs(t, err, ErrNoSession)

	_, _, err = svc.Resolve(context.Background(), "unknown-token")
	assert.ErrorIs(t, err, ErrNoSession)

	expired, err := svc.Issue(context.Background(), u.ID, -time.Minute)
	require.NoError(t, err)
	_, _, err = svc.Resolve(context.Background(), expired.Token)
	assert.ErrorIs(t, err, ErrSessionExpired)
}

func TestVerifyCSRF(t *testing.T) {
	sess := &domain.Session{CSRFToken: "expected-token"}

	assert.NoError(t, VerifyCSRF(sess, "expected-token"))
	assert.ErrorIs(t, VerifyCSRF(sess, ""), ErrMissingCSRF)
	assert.ErrorIs(t, VerifyCSRF(sess, "something-else"), ErrBadCSRF)
}

func TestTokensAreUnique(t *testing.T) {
	seen := make(map[string]bool)
	for range 32 {
		tok, err := NewSessionToken()
		require.NoError(t, err)
		assert.False(t, seen[tok])
		seen[tok] = true
	}
}
