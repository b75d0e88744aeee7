// Package handler provides HTTP request handlers.
package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/inkpost/inkpost/internal/middleware"
	"github.com/inkpost/inkpost/internal/service"
	"github.com/inkpost/inkpost/internal/web"
)

// Handler serves the static fallback responses.
type Handler struct{}

// New creates a new Handler instance.
func New() *Handler {
	return &Handler{}
}

// NotFound handles 404 responses.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	web.NotFound(w, r)
}

// MethodNotAllowed handles 405 responses.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	web.MethodNotAllowed(w, r)
}

// handleServiceError maps service errors to HTTP responses.
func handleServiceError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	if verr, ok := service.IsValidationError(err); ok {
		web.WriteValidationError(w, verr.Fields)
		return
	}

	switch {
	case errors.Is(err, service.ErrPostNotFound):
		web.NotFound(w, r)
	case errors.Is(err, service.ErrNotAuthorized):
		web.NotAuthorized(w, r)
	case errors.Is(err, service.ErrUnauthenticated):
		web.Unauthenticated(w, r)
	default:
		logger.Error("internal error",
			slog.String("error", err.Error()),
			slog.String("request_id", middleware.GetRequestID(r.Context())),
		)
		web.WriteError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}

// writeBadRequest writes a 400 error.
func writeBadRequest(w http.ResponseWriter, message string) {
	web.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", message)
}
