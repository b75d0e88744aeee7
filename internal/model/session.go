package model

import "time"

// Session is one signed-in browser or client.
// Only the SHA-256 digest of the token is stored; the plaintext lives in the cookie.
type Session struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	TokenDigest string    `json:"-"`
	IPAddress   string    `json:"ip_address,omitempty"`
	UserAgent   string    `json:"user_agent,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
