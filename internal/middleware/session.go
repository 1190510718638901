package middleware

import (
	"context"
	"net/http"

	"evantra-web/internal/identity"
)

type contextKey string

const (
	SessionContextKey contextKey = "session"
)

// SessionLoader resolves the identity session once per request and puts it
// on the context for handlers and the route guard.
type SessionLoader struct {
	manager *identity.Manager
}

// NewSessionLoader creates a session loading middleware
func NewSessionLoader(manager *identity.Manager) *SessionLoader {
	return &SessionLoader{manager: manager}
}

// LoadSession middleware attaches the resolved session to the request
// context. Every request gets a session, anonymous included.
func (l *SessionLoader) LoadSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session := l.manager.Load(w, r)
		ctx := context.WithValue(r.Context(), SessionContextKey, session)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetSessionFromContext retrieves the session from request context. Returns
// an anonymous session when the loader did not run.
func GetSessionFromContext(ctx context.Context) *identity.Session {
	session, ok := ctx.Value(SessionContextKey).(*identity.Session)
	if !ok {
		return identity.Anonymous()
	}
	return session
}

// SetSessionContext sets the session in the context (for testing)
func SetSessionContext(ctx context.Context, session *identity.Session) context.Context {
	return context.WithValue(ctx, SessionContextKey, session)
}
