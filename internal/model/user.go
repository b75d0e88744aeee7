// Package model defines domain entities for the application.
package model

import (
	"strings"
	"time"
)

// User is an account that can sign in and own posts.
type User struct {
	ID             string    `json:"id"`
	EmailAddress   string    `json:"email_address"`
	PasswordDigest string    `json:"-"` // Never serialize
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NormalizeEmail trims surrounding whitespace and lower-cases the address.
// Registration and login must both go through it so lookups agree.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CurrentUser is the identity resolved from a session for one request.
// This is injected into the request context by the authenticate middleware.
type CurrentUser struct {
	ID            string
	EmailAddress  string
	SessionID     string
	SessionDigest string
}
