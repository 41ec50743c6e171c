package server

import (
	"net/http"
	"strconv"

	"djradar/apperr"
	"djradar/core/store"

	"github.com/gorilla/mux"
)

// GetPlaylistsHandler lists the caller's playlists with their clips.
func (h *APIHandler) GetPlaylistsHandler(w http.ResponseWriter, r *http.Request) {
	handle, err := h.libraryFor(r)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"playlists": handle.Library.Playlists()})
}

// CreatePlaylistHandler upserts a playlist by name.
func (h *APIHandler) CreatePlaylistHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	handle, err := h.libraryFor(r)
	if err != nil {
		writeError(w, err)
		return
	}
	pl, err := handle.Library.UpsertPlaylistByName(r.Context(), req.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, pl)
}

// DeletePlaylistHandler removes a playlist (and, via cascade, its clips).
func (h *APIHandler) DeletePlaylistHandler(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	handle, err := h.libraryFor(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := handle.Library.RemovePlaylist(r.Context(), name); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"playlists": handle.Library.Playlists()})
}

// AddClipHandler inserts a clip, optionally filing it into a playlist
// (created on the fly when the name is new).
func (h *APIHandler) AddClipHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PlaylistName string `json:"playlistName"`
		store.ClipInput
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	handle, err := h.libraryFor(r)
	if err != nil {
		writeError(w, err)
		return
	}
	clip, err := handle.Library.AddClip(r.Context(), req.PlaylistName, req.ClipInput)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, clip)
}

// RemoveClipHandler deletes a clip. The playlist query parameter names
// the playlist holding it; omitted means an unfiled clip.
func (h *APIHandler) RemoveClipHandler(w http.ResponseWriter, r *http.Request) {
	clipID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeError(w, apperr.InvalidArgumentf("invalid clip id"))
		return
	}

	handle, err := h.libraryFor(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := handle.Library.RemoveClip(r.Context(), r.URL.Query().Get("playlist"), clipID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// GetLeaksHandler lists the caller's unfiled clips.
func (h *APIHandler) GetLeaksHandler(w http.ResponseWriter, r *http.Request) {
	handle, err := h.libraryFor(r)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"clips": handle.Library.Leaks()})
}

// ClearAllHandler wipes every collection the caller owns, remote rows
// included.
func (h *APIHandler) ClearAllHandler(w http.ResponseWriter, r *http.Request) {
	handle, err := h.libraryFor(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := handle.Library.ClearAll(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
