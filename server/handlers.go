package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"djradar/apperr"
	"djradar/config"
	"djradar/core/auth"
	"djradar/core/discovery"
	"djradar/core/launcher"
	"djradar/core/store"
	"djradar/logger"
	"djradar/repository"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

type contextKey string

const userIDKey contextKey = "userID"

// APIHandler carries the collaborators every HTTP handler needs.
type APIHandler struct {
	cfg      *config.Config
	registry *store.Registry
	users    repository.UserRepository
	djs      repository.DJRepository
	pipeline discovery.Discoverer
	launch   *launcher.Launcher
	upgrader websocket.Upgrader
}

// NewAPIHandler creates the handler set.
func NewAPIHandler(cfg *config.Config, registry *store.Registry, users repository.UserRepository, djs repository.DJRepository, pipeline discovery.Discoverer, launch *launcher.Launcher) *APIHandler {
	return &APIHandler{
		cfg:      cfg,
		registry: registry,
		users:    users,
		djs:      djs,
		pipeline: pipeline,
		launch:   launch,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// AuthMiddleware validates the bearer token and stores the user id in
// the request context.
func (h *APIHandler) AuthMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			writeError(w, apperr.ErrNotAuthenticated)
			return
		}

		userID, err := auth.ParseToken(token, h.cfg.JWTSecret)
		if err != nil {
			logger.Debug("rejected token", logger.ErrorField(err))
			writeError(w, apperr.ErrNotAuthenticated)
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, userID)
		next(w, r.WithContext(ctx))
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		// Websocket clients cannot set headers from browsers; accept a
		// query parameter there.
		return r.URL.Query().Get("token")
	}
	return strings.TrimPrefix(header, "Bearer ")
}

// GetUserIDFromContext extracts the authenticated user id.
func GetUserIDFromContext(ctx context.Context) (int64, error) {
	userID, ok := ctx.Value(userIDKey).(int64)
	if !ok || userID <= 0 {
		return 0, apperr.ErrNotAuthenticated
	}
	return userID, nil
}

// libraryFor resolves the caller's library store, bootstrapping it on
// first access.
func (h *APIHandler) libraryFor(r *http.Request) (*store.Handle, error) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		return nil, err
	}
	return h.registry.Activate(r.Context(), userID)
}

// RequestIDMiddleware tags every request with an id and logs it.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := uuid.NewString()
		w.Header().Set("X-Request-ID", reqID)
		logger.Debug("http request",
			logger.String("id", reqID),
			logger.String("method", r.Method),
			logger.String("path", r.URL.Path))
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			logger.Error("failed to encode response", logger.ErrorField(err))
		}
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	var remoteErr *apperr.RemoteError

	switch {
	case errors.Is(err, apperr.ErrNotAuthenticated):
		status = http.StatusUnauthorized
	case errors.Is(err, apperr.ErrInvalidArgument):
		status = http.StatusBadRequest
	case errors.As(err, &remoteErr):
		status = http.StatusBadGateway
	}

	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func decodeBody(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: malformed request body", apperr.ErrInvalidArgument)
	}
	return nil
}
