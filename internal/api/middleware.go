package api

import (
	"context"
	"net/http"

	"github.com/utubapp/utub-server/internal/auth"
	"github.com/utubapp/utub-server/internal/domain"
	"github.com/utubapp/utub-server/internal/http/response"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	contextKeyUser    contextKey = "user"
	contextKeySession contextKey = "session"
)

// emailConfirmPath is where unvalidated users are redirected.
const emailConfirmPath = "/confirm-email"

// requireSession resolves the session cookie and attaches the user to the
// request context. Anonymous or expired sessions are turned away before any
// handler runs.
func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := ""
		if cookie, err := r.Cookie(auth.SessionCookieName); err == nil {
			token = cookie.Value
		}

		user, session, err := s.sessions.Resolve(r.Context(), token)
		if err != nil {
			response.Failure(w, http.StatusUnauthorized, "Login required.", 0, nil, s.logger)
			return
		}

		ctx := context.WithValue(r.Context(), contextKeyUser, user)
		ctx = context.WithValue(ctx, contextKeySession, session)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireValidatedEmail redirects users who have not confirmed their email
// address. Must run after requireSession.
func (s *Server) requireValidatedEmail(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := getUser(r.Context())
		if user == nil || !user.EmailValidated {
			http.Redirect(w, r, emailConfirmPath, http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requireCSRF checks the CSRF token on every write request. A missing token
// produces the legacy HTML body the front-end sniffs for; a wrong token is a
// plain 400 envelope. Must run after requireSession.
func (s *Server) requireCSRF(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			next.ServeHTTP(w, r)
			return
		}

		session := getSession(r.Context())
		if session == nil {
			response.MissingCSRF(w)
			return
		}

		submitted := r.Header.Get(auth.CSRFHeaderName)
		if submitted == "" {
			submitted = r.PostFormValue("csrf_token")
		}

		if err := auth.VerifyCSRF(session, submitted); err != nil {
			if err == auth.ErrMissingCSRF {
				response.MissingCSRF(w)
				return
			}
			response.Failure(w, http.StatusBadRequest, "Invalid CSRF token.", 0, nil, s.logger)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// isAJAX reports whether the request came from the front-end's fetch layer.
// Direct browser hits on JSON endpoints get HTML responses instead.
func isAJAX(r *http.Request) bool {
	return r.Header.Get("X-Requested-With") == "XMLHttpRequest"
}

// getUser extracts the authenticated user from request context.
func getUser(ctx context.Context) *domain.User {
	if user, ok := ctx.Value(contextKeyUser).(*domain.User); ok {
		return user
	}
	return nil
}

// getSession extracts the session from request context.
func getSession(ctx context.Context) *domain.Session {
	if session, ok := ctx.Value(contextKeySession).(*domain.Session); ok {
		return session
	}
	return nil
}
