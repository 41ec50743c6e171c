package store

import (
	"context"
	"sync"
	"time"

	"djradar/core/auth"
	"djradar/core/discovery"
	"djradar/logger"
)

// Handle bundles one session's library with its bootstrap and refresh
// engine.
type Handle struct {
	Library   *Library
	Bootstrap *Bootstrap
	Engine    *discovery.RefreshEngine
}

// Registry keeps exactly one library per active identity. Sign-in
// creates and bootstraps the store; sign-out discards it, which resets
// all in-memory state for that identity.
type Registry struct {
	mu      sync.Mutex
	handles map[int64]*Handle

	repos        Repos
	pipeline     discovery.Discoverer
	perDJTimeout time.Duration
	windowDays   int
}

// NewRegistry creates a registry building stores from the given
// collaborators.
func NewRegistry(repos Repos, pipeline discovery.Discoverer, perDJTimeout time.Duration, windowDays int) *Registry {
	return &Registry{
		handles:      make(map[int64]*Handle),
		repos:        repos,
		pipeline:     pipeline,
		perDJTimeout: perDJTimeout,
		windowDays:   windowDays,
	}
}

// Activate returns the handle for userID, bootstrapping a fresh store on
// first access. A failed bootstrap is not cached, so the next request
// retries from scratch.
func (r *Registry) Activate(ctx context.Context, userID int64) (*Handle, error) {
	r.mu.Lock()
	if h, ok := r.handles[userID]; ok {
		r.mu.Unlock()
		return h, nil
	}
	r.mu.Unlock()

	lib := NewLibrary(auth.StaticSession(userID), r.repos)
	engine := discovery.NewRefreshEngine(r.pipeline, lib, r.perDJTimeout, r.windowDays)

	h := &Handle{Library: lib, Engine: engine}
	h.Bootstrap = NewBootstrap(lib, func() {
		// The one automatic refresh after a successful bootstrap.
		refreshCtx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		engine.Refresh(refreshCtx, lib.TrackedDJs(), nil)
	})

	if err := h.Bootstrap.Run(ctx); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	// Another request may have bootstrapped the same identity while we
	// were loading; the one already registered wins.
	if existing, ok := r.handles[userID]; ok {
		return existing, nil
	}
	r.handles[userID] = h
	logger.Info("library store activated", logger.Int64("user", userID))
	return h, nil
}

// Deactivate discards the store for userID, e.g. on sign-out.
func (r *Registry) Deactivate(userID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.handles[userID]; ok {
		delete(r.handles, userID)
		logger.Info("library store deactivated", logger.Int64("user", userID))
	}
}
