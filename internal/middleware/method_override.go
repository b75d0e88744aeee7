package middleware

import (
	"net/http"
	"strings"
)

// methodOverrideField is the form field HTML forms use to send PATCH, PUT
// and DELETE through a POST.
const methodOverrideField = "_method"

var overridableMethods = map[string]string{
	"PATCH":  http.MethodPatch,
	"PUT":    http.MethodPut,
	"DELETE": http.MethodDelete,
}

// MethodOverride rewrites form POSTs carrying _method=patch|put|delete.
// Must run before routing; JSON bodies are left untouched.
func MethodOverride(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost && isFormRequest(r) {
			if m, ok := overridableMethods[strings.ToUpper(r.PostFormValue(methodOverrideField))]; ok {
				r.Method = m
			}
		}
		next.ServeHTTP(w, r)
	})
}

func isFormRequest(r *http.Request) bool {
	ct := r.Header.Get("Content-Type")
	return strings.HasPrefix(ct, "application/x-www-form-urlencoded") ||
		strings.HasPrefix(ct, "multipart/form-data")
}
