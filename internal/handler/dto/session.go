package dto

import "time"

// LoginRequest is the body for POST /login.
type LoginRequest struct {
	EmailAddress string `json:"email_address"`
	Password     string `json:"password"`
}

// LoginResponse is returned to API clients after signing in.
// The token may be sent back as "Authorization: Bearer <token>".
type LoginResponse struct {
	SessionID string    `json:"session_id"`
	UserID    string    `json:"user_id"`
	Token     string    `json:"token"`
	CreatedAt time.Time `json:"created_at"`
}

// LoginFormResponse is the shell for the login form.
type LoginFormResponse struct {
	Form  Form   `json:"form"`
	Flash *Flash `json:"flash,omitempty"`
}

// LoginFields are the names the login form submits.
var LoginFields = []string{"email_address", "password"}
