package http

import (
	"log/slog"
	"net/http"

	"github.com/zahek/todo-platform/internal/auth"
	"github.com/zahek/todo-platform/internal/service"
	"github.com/zahek/todo-platform/pkg/httputil"
	"github.com/zahek/todo-platform/pkg/validator"
)

// AuthHandler handles HTTP requests for account and session endpoints.
type AuthHandler struct {
	users        *service.UserService
	sessions     *service.SessionService
	cookieSecure bool
	logger       *slog.Logger
}

// NewAuthHandler creates a new auth HTTP handler.
func NewAuthHandler(users *service.UserService, sessions *service.SessionService, cookieSecure bool, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		users:        users,
		sessions:     sessions,
		cookieSecure: cookieSecure,
		logger:       logger,
	}
}

// --- Request DTOs ---

// RegisterRequest is the JSON request body for registration.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,max=72"`
	Name     string `json:"name" validate:"omitempty,max=100"`
}

// LoginRequest is the JSON request body for login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// --- Response types ---

// AccessTokenResponse carries a freshly minted access token. The refresh
// token only ever travels in the cookie.
type AccessTokenResponse struct {
	AccessToken string `json:"accessToken"`
}

// OKResponse acknowledges an operation with no payload.
type OKResponse struct {
	OK bool `json:"ok"`
}

// --- Handlers ---

// Register handles POST /auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, r, err)
		return
	}

	_, err := h.users.Register(r.Context(), service.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
	})
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusCreated, OKResponse{OK: true})
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, r, err)
		return
	}

	_, tokens, err := h.users.Login(r.Context(), service.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	setRefreshCookie(w, tokens.RefreshToken, h.sessions.CookieMaxAge(), h.cookieSecure)
	httputil.WriteData(w, http.StatusOK, AccessTokenResponse{AccessToken: tokens.AccessToken})
}

// Refresh handles POST /auth/refresh. The refresh token is read from the
// cookie and is not rotated.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	accessToken, err := h.sessions.Refresh(r.Context(), refreshCookie(r))
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, AccessTokenResponse{AccessToken: accessToken})
}

// Logout handles POST /auth/logout. It always succeeds and always clears
// the cookie.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.Revoke(r.Context(), refreshCookie(r))
	clearRefreshCookie(w, h.cookieSecure)
	httputil.WriteData(w, http.StatusOK, OKResponse{OK: true})
}

// Me handles GET /auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, r, auth.ErrUnauthenticated, h.logger)
		return
	}

	user, err := h.users.Me(r.Context(), principal)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, user)
}
