// Package middleware provides HTTP middleware components.
package middleware

import (
	"context"
	"net/http"
	"sync"

	"github.com/google/uuid"

	"github.com/inkpost/inkpost/internal/auth"
)

// contextKey is a type for context keys to avoid collisions.
type contextKey string

const (
	// RequestIDKey is the context key for request ID.
	RequestIDKey contextKey = "request_id"

	requestLogKey contextKey = "request_log"
)

// RequestIDHeader is the HTTP header for request ID.
const RequestIDHeader = "X-Request-ID"

// maxRequestIDLength caps an incoming X-Request-ID.
const maxRequestIDLength = 64

// requestLog carries what inner middleware learn about a request back to
// the access log and the recoverer, which only see the outer request.
type requestLog struct {
	mu     sync.Mutex
	userID string
}

// RequestID injects a request ID into each request.
// A well-formed incoming X-Request-ID is kept; anything else is replaced
// with a new UUID so client input cannot forge log lines.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(RequestIDHeader)
		if !validRequestID(requestID) {
			requestID = uuid.New().String()
		}

		ctx := context.WithValue(r.Context(), RequestIDKey, requestID)
		ctx = context.WithValue(ctx, requestLogKey, &requestLog{})

		w.Header().Set(RequestIDHeader, requestID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLength {
		return false
	}
	for _, c := range id {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case c == '-', c == '_', c == '.':
		default:
			return false
		}
	}
	return true
}

// GetRequestID retrieves the request ID from context.
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}

// setLoggedUser records the resolved user for the request's log lines.
func setLoggedUser(ctx context.Context, userID string) {
	if rl, ok := ctx.Value(requestLogKey).(*requestLog); ok {
		rl.mu.Lock()
		rl.userID = userID
		rl.mu.Unlock()
	}
}

// loggedUserID returns the user resolved for this request, or "" when
// the request is anonymous.
func loggedUserID(ctx context.Context) string {
	if rl, ok := ctx.Value(requestLogKey).(*requestLog); ok {
		rl.mu.Lock()
		defer rl.mu.Unlock()
		if rl.userID != "" {
			return rl.userID
		}
	}
	return auth.UserIDFromContext(ctx)
}
