package server

import (
	"net/http"
	"time"

	"djradar/model"

	"github.com/gorilla/mux"
)

// GetSavedSetsHandler lists the caller's saved sets, newest save first.
func (h *APIHandler) GetSavedSetsHandler(w http.ResponseWriter, r *http.Request) {
	handle, err := h.libraryFor(r)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"sets": handle.Library.SavedSets()})
}

// SaveSetHandler saves a discovered set.
func (h *APIHandler) SaveSetHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID          string  `json:"id"`
		VideoID     string  `json:"videoId"`
		Title       string  `json:"title"`
		Thumbnail   *string `json:"thumbnail"`
		DJName      string  `json:"djName"`
		PublishDate string  `json:"publishDate"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	set := model.DiscoveredSet{
		ID:        req.ID,
		VideoID:   req.VideoID,
		Title:     req.Title,
		Thumbnail: req.Thumbnail,
		DJName:    req.DJName,
	}
	if req.PublishDate != "" {
		if t, err := time.Parse(time.RFC3339, req.PublishDate); err == nil {
			set.PublishDate = t
		}
	}

	handle, err := h.libraryFor(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := handle.Library.SaveSet(r.Context(), set); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"sets": handle.Library.SavedSets()})
}

// UnsaveSetHandler removes a saved set by video id.
func (h *APIHandler) UnsaveSetHandler(w http.ResponseWriter, r *http.Request) {
	videoID := mux.Vars(r)["videoId"]

	handle, err := h.libraryFor(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := handle.Library.UnsaveSet(r.Context(), videoID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"sets": handle.Library.SavedSets()})
}
