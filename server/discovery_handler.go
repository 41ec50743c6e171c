package server

import (
	"net/http"

	"djradar/apperr"
)

// RefreshHandler runs the tracking refresh synchronously and reports
// the resulting collection sizes.
func (h *APIHandler) RefreshHandler(w http.ResponseWriter, r *http.Request) {
	handle, err := h.libraryFor(r)
	if err != nil {
		writeError(w, err)
		return
	}

	handle.Engine.Refresh(r.Context(), handle.Library.TrackedDJs(), nil)

	writeJSON(w, http.StatusOK, map[string]int{
		"discovered": len(handle.Library.DiscoveryLibrary()),
		"newSets":    len(handle.Library.NewSets()),
	})
}

// GetDiscoveryLibraryHandler returns every set surfaced this session,
// newest first.
func (h *APIHandler) GetDiscoveryLibraryHandler(w http.ResponseWriter, r *http.Request) {
	handle, err := h.libraryFor(r)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"sets": handle.Library.DiscoveryLibrary()})
}

// GetNewSetsHandler returns the new-sets list, newest first.
func (h *APIHandler) GetNewSetsHandler(w http.ResponseWriter, r *http.Request) {
	handle, err := h.libraryFor(r)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"sets": handle.Library.NewSets()})
}

// SearchHandler runs a one-off discovery for a DJ name without touching
// the caller's collections.
func (h *APIHandler) SearchHandler(w http.ResponseWriter, r *http.Request) {
	djName := r.URL.Query().Get("dj")
	if djName == "" {
		writeError(w, apperr.InvalidArgumentf("query parameter dj is required"))
		return
	}

	if _, err := GetUserIDFromContext(r.Context()); err != nil {
		writeError(w, err)
		return
	}

	sets, err := h.pipeline.Discover(r.Context(), djName)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"sets": sets})
}
