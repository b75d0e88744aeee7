package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"regexp"
)

// SessionTokenBytes is the amount of entropy in a session token.
const SessionTokenBytes = 32

// tokenFormatRegex matches 32 random bytes in unpadded base64url.
var tokenFormatRegex = regexp.MustCompile(`^[A-Za-z0-9_-]{43}$`)

// GeneratedToken contains a newly minted session token.
type GeneratedToken struct {
	Plaintext string // Goes into the cookie, never stored
	Digest    string // SHA-256 hex, stored and used as cache key
}

// GenerateSessionToken creates an opaque, unguessable session token.
func GenerateSessionToken() (*GeneratedToken, error) {
	b := make([]byte, SessionTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("generate session token: %w", err)
	}

	plaintext := base64.RawURLEncoding.EncodeToString(b)

	return &GeneratedToken{
		Plaintext: plaintext,
		Digest:    TokenDigest(plaintext),
	}, nil
}

// ValidateTokenFormat checks if the token looks like one we issued.
func ValidateTokenFormat(token string) bool {
	return tokenFormatRegex.MatchString(token)
}

// TokenDigest returns the SHA-256 hex digest of a session token.
// Tokens carry full entropy so a fast hash is sufficient for lookup.
func TokenDigest(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
