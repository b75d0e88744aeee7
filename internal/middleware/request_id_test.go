package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestRequestID(t *testing.T) {
	t.Parallel()

	t.Run("generates uuid", func(t *testing.T) {
		t.Parallel()

		var got string
		h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got = GetRequestID(r.Context())
		}))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		if _, err := uuid.Parse(got); err != nil {
			t.Errorf("request id %q is not a uuid: %v", got, err)
		}
		if rec.Header().Get(RequestIDHeader) != got {
			t.Error("response header should echo the request id")
		}
	})

	t.Run("keeps a well-formed incoming id", func(t *testing.T) {
		t.Parallel()

		var got string
		h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got = GetRequestID(r.Context())
		}))
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, "req-1.edge_7")
		h.ServeHTTP(httptest.NewRecorder(), req)

		if got != "req-1.edge_7" {
			t.Errorf("request id = %q, want req-1.edge_7", got)
		}
	})

	for name, incoming := range map[string]string{
		"control characters": "req-1\n{\"user_id\":\"forged\"}",
		"spaces":             "req 1",
		"too long":           strings.Repeat("a", maxRequestIDLength+1),
	} {
		name, incoming := name, incoming
		t.Run("replaces id with "+name, func(t *testing.T) {
			t.Parallel()

			var got string
			h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = GetRequestID(r.Context())
			}))
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set(RequestIDHeader, incoming)
			h.ServeHTTP(httptest.NewRecorder(), req)

			if _, err := uuid.Parse(got); err != nil {
				t.Errorf("request id %q should have been replaced with a uuid", got)
			}
		})
	}
}
