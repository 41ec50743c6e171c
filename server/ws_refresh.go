package server

import (
	"net/http"

	"djradar/core/discovery"
	"djradar/logger"
)

// RefreshStreamHandler upgrades to a websocket, runs the tracking
// refresh and streams one progress frame per DJ, then a final summary
// frame before closing.
func (h *APIHandler) RefreshStreamHandler(w http.ResponseWriter, r *http.Request) {
	handle, err := h.libraryFor(r)
	if err != nil {
		writeError(w, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("websocket upgrade failed", logger.ErrorField(err))
		return
	}
	defer conn.Close()

	handle.Engine.Refresh(r.Context(), handle.Library.TrackedDJs(), func(p discovery.RefreshProgress) {
		if err := conn.WriteJSON(p); err != nil {
			logger.Debug("refresh stream write failed", logger.ErrorField(err))
		}
	})

	summary := map[string]interface{}{
		"done":       true,
		"discovered": len(handle.Library.DiscoveryLibrary()),
		"newSets":    len(handle.Library.NewSets()),
	}
	if err := conn.WriteJSON(summary); err != nil {
		logger.Debug("refresh stream summary write failed", logger.ErrorField(err))
	}
}
