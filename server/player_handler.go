package server

import (
	"net/http"

	"djradar/apperr"
	"djradar/core/timecode"
	"djradar/model"
)

// GetPlayerHandler returns the transient player state.
func (h *APIHandler) GetPlayerHandler(w http.ResponseWriter, r *http.Request) {
	handle, err := h.libraryFor(r)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, handle.Library.Player())
}

// UpdatePlayerHandler applies a player action: set a track, play, pause
// or clear.
func (h *APIHandler) UpdatePlayerHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Action string          `json:"action"` // set | play | pause | clear
		Track  *model.TrackRef `json:"track"`
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

	lib := handle.Library
	switch req.Action {
	case "set":
		if req.Track == nil {
			writeError(w, apperr.InvalidArgumentf("track is required for action set"))
			return
		}
		lib.SetCurrent(*req.Track)
	case "play":
		lib.Play()
	case "pause":
		lib.Pause()
	case "clear":
		lib.ClearPlayer()
	default:
		writeError(w, apperr.InvalidArgumentf("unknown player action %q", req.Action))
		return
	}

	writeJSON(w, http.StatusOK, lib.Player())
}

// OpenHandler hands the video off to a native or web player at the
// requested offset. Start accepts seconds or "mm:ss"; an unparsable
// value degrades to 0 here since the handoff is best-effort.
func (h *APIHandler) OpenHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		VideoID string `json:"videoId"`
		Start   string `json:"start"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if _, err := GetUserIDFromContext(r.Context()); err != nil {
		writeError(w, err)
		return
	}

	startSec, ok := timecode.ParseSeconds(req.Start)
	if !ok {
		startSec = 0
	}

	if err := h.launch.OpenAt(req.VideoID, startSec); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
