package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"postboard/app/storage"

	"github.com/gorilla/mux"
)

// MediaController serves uploaded images
type MediaController struct {
	responder
	media storage.MediaStore
}

// NewMediaController creates a new MediaController
func NewMediaController(renderer Renderer, media storage.MediaStore) *MediaController {
	return &MediaController{responder: responder{renderer: renderer}, media: media}
}

// Serve writes the stored object named by {key}.
func (mc *MediaController) Serve(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]
	if !storage.ValidKey(key) {
		mc.notFound(w, r)
		return
	}

	obj, err := mc.media.Open(r.Context(), key)
	if errors.Is(err, storage.ErrNotFound) {
		mc.notFound(w, r)
		return
	}
	if err != nil {
		mc.serverError(w, r, err)
		return
	}

	h := w.Header()
	h.Set("Content-Type", obj.ContentType)
	h.Set("Content-Length", strconv.Itoa(len(obj.Data)))
	h.Set("Cache-Control", "public, max-age=86400")
	h.Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)
	if r.Method != http.MethodHead {
		w.Write(obj.Data)
	}
}
