package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"planets-api/internal/planet"
	"planets-api/internal/shared/errors"
	"planets-api/internal/shared/response"
	"planets-api/internal/upload"
)

// PhotoHandler serves the photo attach route: the upload guard validates and
// stores the file before the planet record is touched.
type PhotoHandler struct {
	service *planet.Service
	guard   *upload.Guard
}

func NewPhotoHandler(service *planet.Service, guard *upload.Guard) *PhotoHandler {
	return &PhotoHandler{
		service: service,
		guard:   guard,
	}
}

func (h *PhotoHandler) Attach(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := slog.With("handler", "attach_planet_photo")

	filename, err := h.guard.ProcessPhoto(r, "photo")
	if err != nil {
		if err == upload.ErrNoFile {
			logger.Debug("No photo attached to request")
			response.Text(w, http.StatusBadRequest, "No photo uploaded")
			return
		}
		if errors.GetType(err) == errors.ErrorTypeUploadRejected {
			// Clients depend on the bare 500 with the guard's exact text.
			logger.Info("Upload rejected by guard", "error", err)
			response.Text(w, http.StatusInternalServerError, err.Error())
			return
		}
		response.Error(w, r, logger, err)
		return
	}

	id, _ := strconv.Atoi(r.PathValue("id"))

	if _, err := h.service.AttachPhoto(ctx, id, filename); err != nil {
		logger.Debug("Photo attach failed after upload", "planet_id", id, "error", err)
		response.RouteNotFound(w, r.Method, r.URL.Path)
		return
	}

	logger.Info("Photo attached to planet", "planet_id", id, "photo_filename", filename)
	response.Success(w, http.StatusCreated, map[string]string{"photoFilename": filename})
}
