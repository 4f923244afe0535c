// Package remove удаляет локацию пользователя.
package remove

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

// Service удаляет локацию и возвращает новый defaultLocationId.
type Service interface {
	Remove(ctx context.Context, userUID, locationID string) (*string, error)
}

// Handler обрабатывает DELETE /locations/{id}.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создаёт Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Удалить локацию
// @Description Если удалена локация по умолчанию, ей становится самая ранняя из оставшихся.
// @Tags Locations
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID локации"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Router /locations/{id} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.location.remove"

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
	if id == "" {
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("location id is required"))
		return
	}

	defaultID, err := h.service.Remove(r.Context(), uid, id)
	if errors.Is(err, repository.ErrUserNotFound) {
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("user not found"))
		return
	}
	if err != nil {
		log.Error("failed to remove location", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to remove location"))
		return
	}

	log.Info("location removed", slog.String("location_id", id))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"defaultLocationId": defaultID,
	}))
}
