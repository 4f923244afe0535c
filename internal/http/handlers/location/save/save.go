// Package save добавляет локацию в список пользователя.
package save

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/astraweather/internal/http/middlewarectx"
	"github.com/magabrotheeeer/astraweather/internal/http/response"
	"github.com/magabrotheeeer/astraweather/internal/lib/sl"
	"github.com/magabrotheeeer/astraweather/internal/models"
	services "github.com/magabrotheeeer/astraweather/internal/services/location"
	"github.com/magabrotheeeer/astraweather/internal/storage/repository"
)

// Request новая локация. Координаты указателями, чтобы отличить 0 от отсутствия.
type Request struct {
	Name      string   `json:"name" validate:"required,max=200"`
	Latitude  *float64 `json:"latitude" validate:"required,min=-90,max=90"`
	Longitude *float64 `json:"longitude" validate:"required,min=-180,max=180"`
}

// Service добавляет локацию.
type Service interface {
	Add(ctx context.Context, userUID, name string, latitude, longitude float64) (*models.Location, error)
}

// Handler обрабатывает POST /locations.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создаёт Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Сохранить локацию
// @Tags Locations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body Request true "Локация"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.ErrorResponse "Нет полей или координаты вне диапазона"
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Router /locations [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.location.save"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	uid, ok := middlewarectx.UserUIDFrom(r.Context())
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		log.Info("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	loc, err := h.service.Add(r.Context(), uid, req.Name, *req.Latitude, *req.Longitude)
	switch {
	case errors.Is(err, services.ErrValidation):
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error(services.ErrValidation.Error()))
		return
	case errors.Is(err, repository.ErrUserNotFound):
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("user not found"))
		return
	case err != nil:
		log.Error("failed to save location", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to save location"))
		return
	}

	log.Info("location saved", slog.String("location_id", loc.ID))
	w.WriteHeader(http.StatusCreated)
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"location": loc,
	}))
}
