// Package handler contains the JSON HTTP handlers for the sdview API.
package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/DukeRupert/sdview/internal/auth"
	"github.com/DukeRupert/sdview/internal/domain"
	"github.com/DukeRupert/sdview/internal/service"
	"github.com/google/uuid"
)

// AuthHandler serves registration, login, logout and the current user.
type AuthHandler struct {
	users  service.UserService
	logger *slog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(users service.UserService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		users:  users,
		logger: logger,
	}
}

// UserResponse is the public representation of a user.
type UserResponse struct {
	ID        uuid.UUID     `json:"id"`
	Email     string        `json:"email"`
	Name      string        `json:"name"`
	Roles     []domain.Role `json:"roles"`
	CreatedAt time.Time     `json:"created_at"`
}

func newUserResponse(u *domain.User) UserResponse {
	roles := u.Roles
	if roles == nil {
		roles = []domain.Role{}
	}
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Roles:     roles,
		CreatedAt: u.CreatedAt,
	}
}

// LoginResponse is returned by a successful login.
type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates an account.
// POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, "AuthHandler.Register", &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	user, err := h.users.Register(r.Context(), domain.RegisterParams{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
	})
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, newUserResponse(user))
}

// Login exchanges credentials for a bearer token.
// POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, "AuthHandler.Login", &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	result, err := h.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, LoginResponse{
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
		User:      newUserResponse(result.User),
	})
}

// Logout revokes the presented token.
// POST /api/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetClaims(r.Context())
	if claims == nil {
		UnauthorizedResponse(w, r, h.logger)
		return
	}

	if err := h.users.Logout(r.Context(), claims); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Me returns the authenticated user.
// GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUser(r.Context())
	if user == nil {
		UnauthorizedResponse(w, r, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, newUserResponse(user))
}

// RegisterRoutes registers the auth routes. limitRegister and limitLogin
// wrap the public endpoints; requireUser wraps the authenticated ones.
func (h *AuthHandler) RegisterRoutes(
	mux *http.ServeMux,
	limitRegister, limitLogin, requireUser func(http.Handler) http.Handler,
) {
	mux.Handle("POST /api/auth/register", limitRegister(http.HandlerFunc(h.Register)))
	mux.Handle("POST /api/auth/login", limitLogin(http.HandlerFunc(h.Login)))
	mux.Handle("POST /api/auth/logout", requireUser(http.HandlerFunc(h.Logout)))
	mux.Handle("GET /api/auth/me", requireUser(http.HandlerFunc(h.Me)))
}
