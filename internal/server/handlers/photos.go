package handlers

import (
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"planets-api/internal/shared/response"
)

// PhotoFileHandler serves stored planet photos as raw bytes. An unknown or
// unsafe filename falls through to the generic 404, same as any unmatched
// route.
type PhotoFileHandler struct {
	dir string
}

func NewPhotoFileHandler(dir string) *PhotoFileHandler {
	return &PhotoFileHandler{dir: dir}
}

func (h *PhotoFileHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "planet_photo_file")

	filename := r.PathValue("filename")
	if filename == "" || filename != filepath.Base(filename) {
		response.RouteNotFound(w, r.Method, r.URL.Path)
		return
	}

	path := filepath.Join(h.dir, filename)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		logger.Debug("Photo file not found", "filename", filename)
		response.RouteNotFound(w, r.Method, r.URL.Path)
		return
	}

	http.ServeFile(w, r, path)
}
