package server

import (
	"net/http"
	"strings"

	"djradar/apperr"
	"djradar/core/auth"
	"djradar/logger"
	"djradar/model"
)

// RegisterHandler creates a new account.
func (h *APIHandler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Email == "" || len(req.Password) < 6 {
		writeError(w, apperr.InvalidArgumentf("username, email and a password of at least 6 characters are required"))
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	user := model.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
	}
	if err := h.users.CreateUser(r.Context(), &user); err != nil {
		writeError(w, apperr.Remote("users.insert", err))
		return
	}

	logger.Info("user registered", logger.String("username", user.Username))
	writeJSON(w, http.StatusCreated, user)
}

// LoginHandler verifies credentials and issues a token.
func (h *APIHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	user, err := h.users.GetUserByUsername(r.Context(), req.Username)
	if err != nil {
		writeError(w, apperr.Remote("users.select", err))
		return
	}
	if user == nil || !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		writeError(w, apperr.ErrNotAuthenticated)
		return
	}

	token, err := auth.GenerateToken(user.ID, h.cfg.JWTSecret)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"token": token,
		"user":  user,
	})
}

// LogoutHandler drops the caller's library store; the next sign-in
// bootstraps a fresh one.
func (h *APIHandler) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	h.registry.Deactivate(userID)
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// MeHandler returns the authenticated account.
func (h *APIHandler) MeHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	user, err := h.users.GetUserByID(r.Context(), userID)
	if err != nil {
		writeError(w, apperr.Remote("users.select", err))
		return
	}
	if user == nil {
		writeError(w, apperr.ErrNotAuthenticated)
		return
	}
	writeJSON(w, http.StatusOK, user)
}
