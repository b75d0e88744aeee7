package service

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/inkpost/inkpost/internal/model"
)

const (
	maxEmailLength    = 255
	minPasswordLength = 8
	maxPasswordLength = 72
	maxTitleLength    = 255
	maxBodyLength     = 100000
)

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func validEmailShape(email string) bool {
	local, domain, ok := strings.Cut(email, "@")
	if !ok || local == "" || domain == "" {
		return false
	}
	return !strings.Contains(domain, "@") && !strings.ContainsAny(email, " \t\r\n")
}

// validateCredentials checks a normalized email and a raw password.
func validateCredentials(email, password string) *ValidationError {
	verr := &ValidationError{}

	switch {
	case email == "":
		verr.add("email_address", msgBlank)
	case utf8.RuneCountInString(email) > maxEmailLength:
		verr.add("email_address", fmt.Sprintf(msgTooLong, maxEmailLength))
	case !validEmailShape(email):
		verr.add("email_address", msgInvalid)
	}

	switch {
	case password == "":
		verr.add("password", msgBlank)
	case utf8.RuneCountInString(password) < minPasswordLength:
		verr.add("password", fmt.Sprintf(msgTooShort, minPasswordLength))
	case utf8.RuneCountInString(password) > maxPasswordLength:
		verr.add("password", fmt.Sprintf(msgTooLong, maxPasswordLength))
	}

	if verr.empty() {
		return nil
	}
	return verr
}

// validatePost checks the user-editable fields of a post.
func validatePost(post *model.Post) *ValidationError {
	verr := &ValidationError{}

	switch {
	case isBlank(post.Title):
		verr.add("title", msgBlank)
	case utf8.RuneCountInString(post.Title) > maxTitleLength:
		verr.add("title", fmt.Sprintf(msgTooLong, maxTitleLength))
	}

	switch {
	case isBlank(post.Body):
		verr.add("body", msgBlank)
	case utf8.RuneCountInString(post.Body) > maxBodyLength:
		verr.add("body", fmt.Sprintf(msgTooLong, maxBodyLength))
	}

	if verr.empty() {
		return nil
	}
	return verr
}
