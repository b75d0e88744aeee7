package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/inkpost/inkpost/internal/auth"
	"github.com/inkpost/inkpost/internal/model"
)

// SessionResolver maps a session token to the signed-in user.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (*model.CurrentUser, bool)
}

// AuthConfig holds configuration for the authenticate middleware.
type AuthConfig struct {
	Logger     *slog.Logger
	Resolver   SessionResolver
	CookieName string
}

// Authenticate resolves the session token on every request and, when it
// resolves, stores the current user in the request context. It never
// rejects a request; guards decide what anonymous callers may do.
func Authenticate(cfg AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractSessionToken(r, cfg.CookieName)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			user, ok := cfg.Resolver.Resolve(r.Context(), token)
			if !ok {
				cfg.Logger.Debug("session not resolved",
					slog.String("ip", r.RemoteAddr),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				next.ServeHTTP(w, r)
				return
			}

			setLoggedUser(r.Context(), user.ID)
			ctx := auth.ContextWithUser(r.Context(), user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractSessionToken reads the session cookie.
// API clients may instead send "Authorization: Bearer <token>".
func extractSessionToken(r *http.Request, cookieName string) string {
	if c, err := r.Cookie(cookieName); err == nil && c.Value != "" {
		return c.Value
	}

	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}

	return ""
}
