package auth

import (
	"context"

	"github.com/inkpost/inkpost/internal/model"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// userContextKey is the context key for storing the current user.
	userContextKey contextKey = "current_user"
)

// ContextWithUser adds the resolved user to the context.
func ContextWithUser(ctx context.Context, user *model.CurrentUser) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// UserFromContext retrieves the current user from the context.
// Returns nil for anonymous requests.
func UserFromContext(ctx context.Context) *model.CurrentUser {
	user, ok := ctx.Value(userContextKey).(*model.CurrentUser)
	if !ok {
		return nil
	}
	return user
}

// MustUserFromContext retrieves the current user from the context.
// Panics if not present (use only behind RequireAuthentication).
func MustUserFromContext(ctx context.Context) *model.CurrentUser {
	user := UserFromContext(ctx)
	if user == nil {
		panic("current user not found - ensure RequireAuthentication guard is applied")
	}
	return user
}

// UserIDFromContext returns the current user ID, or "" when anonymous.
func UserIDFromContext(ctx context.Context) string {
	user := UserFromContext(ctx)
	if user == nil {
		return ""
	}
	return user.ID
}
