package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strings"

	"github.com/inkpost/inkpost/internal/auth"
	"github.com/inkpost/inkpost/internal/handler/dto"
	"github.com/inkpost/inkpost/internal/middleware"
	"github.com/inkpost/inkpost/internal/service"
	"github.com/inkpost/inkpost/internal/web"
)

// SessionHandler handles sign in and sign out.
type SessionHandler struct {
	service *service.AuthService
	cookies web.CookieConfig
	logger  *slog.Logger
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(svc *service.AuthService, cookies web.CookieConfig, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{service: svc, cookies: cookies, logger: logger}
}

// New handles GET /login.
func (h *SessionHandler) New(w http.ResponseWriter, r *http.Request) {
	web.WriteJSON(w, http.StatusOK, dto.LoginFormResponse{
		Form: dto.Form{
			Action: web.LoginPath,
			Method: "post",
			Fields: dto.LoginFields,
		},
		Flash: web.PopFlash(w, r),
	})
}

// Create handles POST /login.
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	req, err := decodeLoginRequest(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	session, token, err := h.service.Login(r.Context(), service.LoginInput{
		EmailAddress: req.EmailAddress,
		Password:     req.Password,
		IPAddress:    clientIP(r),
		UserAgent:    r.UserAgent(),
	})
	if err != nil {
		if !errors.Is(err, service.ErrInvalidCredentials) {
			handleServiceError(w, r, h.logger, err)
			return
		}

		h.logger.Info("login_failed",
			"ip", clientIP(r),
			"request_id", middleware.GetRequestID(r.Context()),
		)
		if web.WantsJSON(r) {
			web.WriteError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", web.AlertInvalidCredentials)
			return
		}
		web.SetAlert(w, web.AlertInvalidCredentials)
		web.Redirect(w, r, web.LoginPath)
		return
	}

	h.logger.Info("login_succeeded",
		"user_id", session.UserID,
		"session_id", session.ID,
		"request_id", middleware.GetRequestID(r.Context()),
	)

	h.cookies.SetSessionCookie(w, token)

	if web.WantsJSON(r) {
		web.WriteJSON(w, http.StatusOK, dto.LoginResponse{
			SessionID: session.ID,
			UserID:    session.UserID,
			Token:     token,
			CreatedAt: session.CreatedAt,
		})
		return
	}
	web.Redirect(w, r, web.PopReturnTo(w, r, web.RootPath))
}

// Destroy handles DELETE /logout.
func (h *SessionHandler) Destroy(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())

	if err := h.service.Logout(r.Context(), user); err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	h.logger.Info("logout",
		"user_id", user.ID,
		"session_id", user.SessionID,
		"request_id", middleware.GetRequestID(r.Context()),
	)

	h.cookies.ClearSessionCookie(w)

	if web.WantsJSON(r) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	web.Redirect(w, r, web.LoginPath)
}

func decodeLoginRequest(r *http.Request) (dto.LoginRequest, error) {
	var req dto.LoginRequest
	if isJSONBody(r) {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return req, errInvalidJSON
		}
		return req, nil
	}

	if err := r.ParseForm(); err != nil {
		return req, errors.New("invalid form body")
	}
	req.EmailAddress = r.PostForm.Get("email_address")
	req.Password = r.PostForm.Get("password")
	return req, nil
}

// clientIP returns the caller address without the port.
// RealIP has already applied X-Forwarded-For.
func clientIP(r *http.Request) string {
	addr := strings.TrimSpace(r.RemoteAddr)
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}
