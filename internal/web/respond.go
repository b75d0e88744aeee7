// Package web holds the response conventions shared by handlers and guards:
// content negotiation, redirects, flash messages and session cookies.
package web

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/inkpost/inkpost/internal/handler/dto"
)

// Well-known paths.
const (
	RootPath  = "/"
	LoginPath = "/login"
	PostsPath = "/posts"
)

// Flash texts.
const (
	AlertNotAuthorized      = "Not authorized."
	AlertInvalidCredentials = "Try another email address or password."
	AlertTooManyAttempts    = "Try again later."
)

// WantsJSON reports whether the client asked for a JSON response.
func WantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteError writes an error envelope.
func WriteError(w http.ResponseWriter, status int, code, message string) {
	WriteJSON(w, status, dto.ErrorResponse{Error: message, Code: code})
}

// WriteValidationError writes a 422 with per-field messages.
func WriteValidationError(w http.ResponseWriter, fields map[string][]string) {
	WriteJSON(w, http.StatusUnprocessableEntity, dto.ErrorResponse{
		Error:  "Validation failed",
		Code:   "VALIDATION_FAILED",
		Fields: fields,
	})
}

// Redirect sends a 303 See Other so the browser follows with GET.
func Redirect(w http.ResponseWriter, r *http.Request, location string) {
	http.Redirect(w, r, location, http.StatusSeeOther)
}

// NotFound renders the static not-found response.
func NotFound(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusNotFound, map[string]string{
		"error": "resource not found",
	})
}

// MethodNotAllowed renders the static 405 response.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusMethodNotAllowed, map[string]string{
		"error": "method not allowed",
	})
}

// Unauthenticated sends the caller to sign in. API clients get a 401.
func Unauthenticated(w http.ResponseWriter, r *http.Request) {
	if WantsJSON(r) {
		WriteError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "Authentication required")
		return
	}
	if r.Method == http.MethodGet {
		SetReturnTo(w, r.URL.RequestURI())
	}
	Redirect(w, r, LoginPath)
}

// NotAuthorized sends the caller back to the post list with an alert.
// API clients get a 403.
func NotAuthorized(w http.ResponseWriter, r *http.Request) {
	if WantsJSON(r) {
		WriteError(w, http.StatusForbidden, "NOT_AUTHORIZED", AlertNotAuthorized)
		return
	}
	SetAlert(w, AlertNotAuthorized)
	Redirect(w, r, PostsPath)
}
