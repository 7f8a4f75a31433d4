package controllers

import (
	"context"
	"net/http"
	"testing"

	"postboard/app/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMediaServe(t *testing.T) {
	h := newHarness(t)
	data := pngBytes(t)
	key, err := h.media.Save(context.Background(), &storage.Upload{
		Filename:    "a.png",
		ContentType: "image/png",
		Extension:   ".png",
		Data:        data,
	})
	require.NoError(t, err)

	rec := h.get("/media/"+key, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, data, rec.Body.Bytes())

	for _, path := range []string{"/media/posts/missing.png", "/media/other/file.png"} {
		rec := h.get(path, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
	}
}
