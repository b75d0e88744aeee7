// Package service holds the application's business rules: signing in and
// out, resolving sessions, and the post lifecycle behind the ownership gate.
package service

import (
	"errors"
	"sort"
	"strings"
)

// Service errors.
var (
	ErrUnauthenticated      = errors.New("authentication required")
	ErrNotAuthorized        = errors.New("not authorized")
	ErrInvalidCredentials   = errors.New("invalid email address or password")
	ErrPostNotFound         = errors.New("post not found")
	ErrUserNotFound         = errors.New("user not found")
	ErrEmailTaken           = errors.New("email address has already been taken")
	ErrSessionCacheRequired = errors.New("session cache is required to revoke sessions")
	ErrSessionsNotRevoked   = errors.New("cached sessions were not revoked")
)

// Validation messages.
const (
	msgBlank    = "can't be blank"
	msgInvalid  = "is invalid"
	msgTaken    = "has already been taken"
	msgTooLong  = "is too long (maximum is %d characters)"
	msgTooShort = "is too short (minimum is %d characters)"
)

// ValidationError lists the problems found per field.
type ValidationError struct {
	Fields map[string][]string
	cause  error
}

// Unwrap exposes the sentinel behind the failure, if any.
func (e *ValidationError) Unwrap() error {
	return e.cause
}

func (e *ValidationError) add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[field] = append(e.Fields[field], msg)
}

func (e *ValidationError) empty() bool {
	return len(e.Fields) == 0
}

// Error renders the messages as "field message" pairs in field order.
func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		for _, msg := range e.Fields[name] {
			parts = append(parts, name+" "+msg)
		}
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// IsValidationError reports whether err is a *ValidationError and returns it.
func IsValidationError(err error) (*ValidationError, bool) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}
