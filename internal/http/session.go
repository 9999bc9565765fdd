package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"ledger/internal/auth"
	applog "ledger/internal/log"
)

const (
	sessionCookie = "ledger_session"
	stateCookie   = "ledger_oauth_state"
	stateTTL      = 10 * time.Minute
)

type claimsKey struct{}

// sessionToken returns the session token from the cookie, falling back to an
// Authorization bearer header.
func sessionToken(r *http.Request) string {
	if c, err := r.Cookie(sessionCookie); err == nil && c.Value != "" {
		return c.Value
	}
	if h := r.Header.Get("Authorization"); len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

// requireSession rejects requests without a valid session and stores the
// session claims in the request context.
func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := sessionToken(r)
		if token == "" {
			UnauthorizedError().Write(w)
			return
		}
		claims, err := s.deps.Sessions.Parse(token)
		if err != nil {
			applog.FromContext(r.Context()).DebugContext(r.Context(), "Rejected session", applog.FieldError, err)
			UnauthorizedError().Write(w)
			return
		}

		ctx := context.WithValue(r.Context(), claimsKey{}, claims)
		logger := applog.FromContext(ctx).With(applog.FieldUserID, claims.UserID)
		ctx = context.WithValue(ctx, applog.LoggerContextKey, logger)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// userID returns the authenticated user's id, or "" outside requireSession.
func userID(r *http.Request) string {
	if c, ok := r.Context().Value(claimsKey{}).(*auth.Claims); ok {
		return c.UserID
	}
	return ""
}

func (s *Server) newSessionCookie(token string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		MaxAge:   int(time.Until(expires).Seconds()),
		HttpOnly: true,
		Secure:   s.opts.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	}
}

func (s *Server) clearCookie(name, path string) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     path,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.opts.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	}
}
