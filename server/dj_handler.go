package server

import (
	"net/http"

	"djradar/apperr"
	"djradar/model"
	"djradar/storage"

	"github.com/gorilla/mux"
)

// GetTrackedDJsHandler lists the caller's tracked DJs.
func (h *APIHandler) GetTrackedDJsHandler(w http.ResponseWriter, r *http.Request) {
	handle, err := h.libraryFor(r)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"djs":     handle.Library.TrackedDJs(),
		"loading": handle.Library.Loading(),
	})
}

// SubscribeHandler starts tracking a DJ.
func (h *APIHandler) SubscribeHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string  `json:"name"`
		ImageURL *string `json:"imageUrl"`
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
	if err := handle.Library.Subscribe(r.Context(), req.Name, req.ImageURL); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"djs": handle.Library.TrackedDJs()})
}

// UnsubscribeHandler stops tracking a DJ.
func (h *APIHandler) UnsubscribeHandler(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	handle, err := h.libraryFor(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := handle.Library.Unsubscribe(r.Context(), name); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"djs": handle.Library.TrackedDJs()})
}

// UploadDJImageHandler stores an avatar for a tracked DJ in object
// storage and records its URL on the shared dj row.
func (h *APIHandler) UploadDJImageHandler(w http.ResponseWriter, r *http.Request) {
	name := model.CanonicalName(mux.Vars(r)["name"])

	handle, err := h.libraryFor(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var djID int64
	for _, dj := range handle.Library.TrackedDJs() {
		if dj.Name == name {
			djID = dj.DJID
			break
		}
	}
	if djID == 0 {
		writeError(w, apperr.InvalidArgumentf("dj %q is not tracked", name))
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, apperr.InvalidArgumentf("missing image file"))
		return
	}
	defer file.Close()

	imageURL, err := storage.UploadDJImage(r.Context(), name, header.Filename,
		header.Header.Get("Content-Type"), file, header.Size)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.djs.UpdateImageURL(r.Context(), djID, imageURL); err != nil {
		writeError(w, apperr.Remote("djs.update", err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"imageUrl": imageURL})
}
