package middleware

import (
	"context"
	"net/http"

	"github.com/gorilla/sessions"
)

type sessionContextKey struct{}

// SessionName is the name of the session cookie.
const SessionName = "waitlist-session"

// SessionKeyAttemptID pins the in-flight authorization attempt to the
// initiating browser. The callback rejects attempts started elsewhere.
const SessionKeyAttemptID = "attempt_id"

// SessionMaxAge is the maximum age of a session cookie (24 hours).
const SessionMaxAge = 86400

// NewSessionStore creates a cookie-backed session store.
func NewSessionStore(secret string, secureCookie bool) sessions.Store {
	store := sessions.NewCookieStore([]byte(secret))

	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   SessionMaxAge,
		HttpOnly: true,
		Secure:   secureCookie,
		SameSite: http.SameSiteLaxMode,
	}

	return store
}

// Session returns a middleware that manages sessions.
func Session(store sessions.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, _ := store.Get(r, SessionName)
			ctx := context.WithValue(r.Context(), sessionContextKey{}, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetSession retrieves the session from the request context.
func GetSession(r *http.Request) *sessions.Session {
	session, ok := r.Context().Value(sessionContextKey{}).(*sessions.Session)
	if !ok {
		return nil
	}
	return session
}

// SaveSession saves the session to the response.
func SaveSession(r *http.Request, w http.ResponseWriter) error {
	session := GetSession(r)
	if session == nil {
		return nil
	}
	return session.Save(r, w)
}
