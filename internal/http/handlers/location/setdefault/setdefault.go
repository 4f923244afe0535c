// Package setdefault выбирает локацию по умолчанию.
package setdefault

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/astraweather/internal/http/middlewarectx"
	"github.com/magabrotheeeer/astraweather/internal/http/response"
	"github.com/magabrotheeeer/astraweather/internal/lib/sl"
	"github.com/magabrotheeeer/astraweather/internal/storage/repository"
)

// Service меняет локацию по умолчанию.
type Service interface {
	SetDefault(ctx context.Context, userUID, locationID string) error
}

// Handler обрабатывает PUT /locations/{id}/default.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создаёт Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Локация по умолчанию
// @Tags Locations
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID локации"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse "Пользователь или локация не найдены"
// @Router /locations/{id}/default [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.location.setdefault"

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

	id := chi.URLParam(r, "id")
	err := h.service.SetDefault(r.Context(), uid, id)
	switch {
	case errors.Is(err, repository.ErrUserNotFound):
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("user not found"))
		return
	case errors.Is(err, repository.ErrLocationNotFound):
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("location not found"))
		return
	case err != nil:
		log.Error("failed to set default location", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to set default location"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"defaultLocationId": id,
	}))
}
