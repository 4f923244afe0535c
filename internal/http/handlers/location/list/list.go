// Package list отдаёт сохранённые локации пользователя.
package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/astraweather/internal/http/middlewarectx"
	"github.com/magabrotheeeer/astraweather/internal/http/response"
	"github.com/magabrotheeeer/astraweather/internal/lib/sl"
	"github.com/magabrotheeeer/astraweather/internal/models"
)

// Service читает локации.
type Service interface {
	List(ctx context.Context, userUID string) ([]models.Location, error)
}

// Handler обрабатывает GET /locations.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создаёт Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Список локаций
// @Description Локации в порядке добавления, isDefault отмечает локацию по умолчанию.
// @Tags Locations
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /locations [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.location.list"

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

	locations, err := h.service.List(r.Context(), uid)
	if err != nil {
		log.Error("failed to list locations", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to list locations"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"locations": locations,
	}))
}
