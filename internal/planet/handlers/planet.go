package handlers

import (
	"bytes"
	stderrors "errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"planets-api/internal/middleware"
	"planets-api/internal/planet"
	"planets-api/internal/schema"
	"planets-api/internal/shared/errors"
	"planets-api/internal/shared/response"
)

// PlanetHandler serves the planet CRUD routes. Each route is a short linear
// pipeline: validate, call the service, map the outcome to a status.
type PlanetHandler struct {
	service   *planet.Service
	validator *schema.Object
}

func NewPlanetHandler(service *planet.Service, validator *schema.Object) *PlanetHandler {
	return &PlanetHandler{
		service:   service,
		validator: validator,
	}
}

func (h *PlanetHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := slog.With("handler", "list_planets")
	logger.Debug("Planet list requested")

	planets, err := h.service.ListAll(ctx)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	if planets == nil {
		planets = []planet.Planet{}
	}

	response.Success(w, http.StatusOK, planets)
}

func (h *PlanetHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := slog.With("handler", "get_planet")

	id, _ := strconv.Atoi(r.PathValue("id"))

	p, err := h.service.GetByID(ctx, id)
	if err != nil {
		if errors.IsNotFound(err) {
			logger.Debug("Planet not found", "planet_id", id)
			response.RouteNotFound(w, r.Method, r.URL.Path)
			return
		}
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, p)
}

func (h *PlanetHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := slog.With("handler", "create_planet")

	data, ok := h.validateBody(w, r, logger)
	if !ok {
		return
	}

	identity := middleware.IdentityFromContext(r)
	if identity == nil {
		response.Error(w, r, logger, errors.Unauthorized("authentication required"))
		return
	}

	p, err := h.service.Create(ctx, data, identity.Username)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	logger.Info("Planet created", "planet_id", p.ID, "name", p.Name, "created_by", identity.Username)
	response.Success(w, http.StatusCreated, p)
}

func (h *PlanetHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := slog.With("handler", "update_planet")

	data, ok := h.validateBody(w, r, logger)
	if !ok {
		return
	}

	identity := middleware.IdentityFromContext(r)
	if identity == nil {
		response.Error(w, r, logger, errors.Unauthorized("authentication required"))
		return
	}

	id, _ := strconv.Atoi(r.PathValue("id"))

	// Every update failure collapses into the path-specific 404, whatever
	// the underlying cause.
	p, err := h.service.UpdateByID(ctx, id, data, identity.Username)
	if err != nil {
		logger.Debug("Planet update failed", "planet_id", id, "error", err)
		response.RouteNotFound(w, r.Method, r.URL.Path)
		return
	}

	logger.Info("Planet updated", "planet_id", p.ID, "updated_by", identity.Username)
	response.Success(w, http.StatusOK, p)
}

func (h *PlanetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := slog.With("handler", "delete_planet")

	id, _ := strconv.Atoi(r.PathValue("id"))

	if err := h.service.DeleteByID(ctx, id); err != nil {
		logger.Debug("Planet delete failed", "planet_id", id, "error", err)
		response.RouteNotFound(w, r.Method, r.URL.Path)
		return
	}

	logger.Info("Planet deleted", "planet_id", id)
	w.WriteHeader(http.StatusNoContent)
}

// validateBody reads and validates the request body against the planet
// schema. It writes the terminal 422 or 400 itself and reports whether the
// caller may proceed.
func (h *PlanetHandler) validateBody(w http.ResponseWriter, r *http.Request, logger *slog.Logger) (planet.Data, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1 MB
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		response.Error(w, r, logger, errors.WrapValidation("failed to read request body", err))
		return planet.Data{}, false
	}

	// An empty body validates as an empty object, so the client gets the
	// per-field violations rather than a decode error.
	if len(bytes.TrimSpace(raw)) == 0 {
		raw = []byte("{}")
	}

	normalized, err := h.validator.ValidateJSON(raw)
	if err != nil {
		var validationErr *schema.ValidationError
		if stderrors.As(err, &validationErr) {
			response.ValidationFailed(w, r, logger, validationErr.Violations)
			return planet.Data{}, false
		}
		response.Error(w, r, logger, errors.WrapValidation("invalid JSON in request body", err))
		return planet.Data{}, false
	}

	return planet.DataFromNormalized(normalized), true
}
