package handler

import (
	"log/slog"
	"net/http"

	"github.com/msomdec/devconnector/internal/service"
)

// AuthHandler handles registration, login, and the current-user lookup.
type AuthHandler struct {
	auth   *service.AuthService
	logger *slog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(auth *service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, logger: logger}
}

// HandleRegister processes a JSON registration request.
// POST /api/users
// Request:  {"name":"...","email":"...","password":"..."}
// Response: {"token":"..."}
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "invalid request body")
		return
	}

	token, err := h.auth.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		writeServiceError(w, h.logger, "register user", err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, tokenResponse{Token: token})
}

// HandleLogin processes a JSON login request.
// POST /api/auth
// Request:  {"email":"...","password":"..."}
// Response: {"token":"..."}
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, h.logger, http.StatusBadRequest, "email and password are required")
		return
	}

	token, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, h.logger, "login user", err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, tokenResponse{Token: token})
}

// HandleMe returns the currently authenticated user.
// GET /api/auth
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		writeError(w, h.logger, http.StatusUnauthorized, "not authenticated")
		return
	}
	writeJSON(w, h.logger, http.StatusOK, toUserDTO(user))
}
