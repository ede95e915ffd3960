package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/jaekwang-park/vici/internal/cognito"
	"github.com/jaekwang-park/vici/internal/service"
)

// AuthHandler serves the Cognito session endpoints under /api/v1/auth/.
type AuthHandler struct {
	svc *service.AuthService
}

func NewAuthHandler(svc *service.AuthService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

func (h *AuthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.svc == nil {
		WriteError(w, http.StatusServiceUnavailable, "AUTH_UNAVAILABLE", "authentication is not configured")
		return
	}
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	switch strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/v1/auth/"), "/") {
	case "login":
		h.handleLogin(w, r)
	case "refresh":
		h.handleRefresh(w, r)
	case "logout":
		h.handleLogout(w, r)
	default:
		WriteError(w, http.StatusNotFound, "NOT_FOUND", "endpoint not found")
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	Email        string `json:"email"`
	RefreshToken string `json:"refresh_token"`
}

type logoutRequest struct {
	AccessToken string `json:"access_token"`
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	out, err := h.svc.Login(r.Context(), service.LoginInput{Email: req.Email, Password: req.Password})
	if err != nil {
		handleAuthError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, out)
}

func (h *AuthHandler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if !decodeBody(w, r, &req) {
		return
	}

	out, err := h.svc.Refresh(r.Context(), service.RefreshInput{Email: req.Email, RefreshToken: req.RefreshToken})
	if err != nil {
		handleAuthError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, out)
}

func (h *AuthHandler) handleLogout(w http.ResponseWriter, r *http.Request) {
	var req logoutRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.svc.Logout(r.Context(), req.AccessToken); err != nil {
		handleAuthError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"message": "signed out"})
}

// handleAuthError answers with fixed messages and logs the detail.
func handleAuthError(w http.ResponseWriter, r *http.Request, err error) {
	if info, ok := cognito.LookupError(err); ok {
		slog.WarnContext(r.Context(), "auth error", "code", info.Code, "detail", err.Error())
		WriteError(w, info.Status, info.Code, cognitoMessages[info.Code])
		return
	}
	if errors.Is(err, service.ErrInvalidInput) {
		WriteError(w, http.StatusBadRequest, "INVALID_INPUT", err.Error())
		return
	}

	slog.ErrorContext(r.Context(), "auth internal error", "error", err)
	WriteError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
}

var cognitoMessages = map[string]string{
	"USER_NOT_FOUND":          "user not found",
	"USER_NOT_CONFIRMED":      "email address not confirmed",
	"NOT_AUTHORIZED":          "incorrect email or password",
	"PASSWORD_RESET_REQUIRED": "password reset is required",
	"TOO_MANY_REQUESTS":       "too many requests, please try again later",
	"INVALID_PARAMETER":       "invalid request parameter",
}
