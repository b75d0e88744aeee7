package web

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/inkpost/inkpost/internal/handler/dto"
)

const (
	flashCookieName    = "flash"
	returnToCookieName = "return_to"
)

// Flash is a one-shot message carried to the next request.
type Flash = dto.Flash

// CookieConfig controls the session cookie.
type CookieConfig struct {
	SessionName string
	Secure      bool
}

// SetSessionCookie stores the session token in an HttpOnly cookie.
func (c CookieConfig) SetSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.SessionName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie expires the session cookie.
func (c CookieConfig) ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.SessionName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// SetNotice queues a notice for the next request.
func SetNotice(w http.ResponseWriter, msg string) {
	setFlash(w, Flash{Notice: msg})
}

// SetAlert queues an alert for the next request.
func SetAlert(w http.ResponseWriter, msg string) {
	setFlash(w, Flash{Alert: msg})
}

func setFlash(w http.ResponseWriter, f Flash) {
	data, err := json.Marshal(f)
	if err != nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    base64.RawURLEncoding.EncodeToString(data),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// PopFlash returns the pending flash, if any, and clears it.
func PopFlash(w http.ResponseWriter, r *http.Request) *Flash {
	c, err := r.Cookie(flashCookieName)
	if err != nil || c.Value == "" {
		return nil
	}
	expire(w, flashCookieName)

	data, err := base64.RawURLEncoding.DecodeString(c.Value)
	if err != nil {
		return nil
	}
	var f Flash
	if err := json.Unmarshal(data, &f); err != nil {
		return nil
	}
	if f.Notice == "" && f.Alert == "" {
		return nil
	}
	return &f
}

// SetReturnTo remembers where to send the user after signing in.
func SetReturnTo(w http.ResponseWriter, path string) {
	if !isLocalPath(path) {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     returnToCookieName,
		Value:    base64.RawURLEncoding.EncodeToString([]byte(path)),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// PopReturnTo returns the remembered path, or fallback, and clears it.
func PopReturnTo(w http.ResponseWriter, r *http.Request, fallback string) string {
	c, err := r.Cookie(returnToCookieName)
	if err != nil || c.Value == "" {
		return fallback
	}
	expire(w, returnToCookieName)

	data, err := base64.RawURLEncoding.DecodeString(c.Value)
	if err != nil || !isLocalPath(string(data)) {
		return fallback
	}
	return string(data)
}

// isLocalPath accepts only same-origin absolute paths.
func isLocalPath(path string) bool {
	return strings.HasPrefix(path, "/") &&
		!strings.HasPrefix(path, "//") &&
		!strings.HasPrefix(path, "/\\") &&
		!strings.ContainsAny(path, "\r\n")
}

func expire(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
