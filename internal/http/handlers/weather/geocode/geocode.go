// Package geocode ищет координаты места по названию.
package geocode

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/astraweather/internal/http/response"
	"github.com/magabrotheeeer/astraweather/internal/lib/sl"
	"github.com/magabrotheeeer/astraweather/internal/models"
	"github.com/magabrotheeeer/astraweather/internal/openweather"
	services "github.com/magabrotheeeer/astraweather/internal/services/weather"
)

// Service геокодирует запрос.
type Service interface {
	Geocode(ctx context.Context, query string) (*models.GeoLocation, error)
}

// Handler обрабатывает GET /weather/location.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создаёт Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Поиск места
// @Tags Weather
// @Produce json
// @Security BearerAuth
// @Param q query string false "Название"
// @Param query query string false "Название (синоним q)"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /weather/location [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.weather.geocode"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	query := r.URL.Query().Get("q")
	if query == "" {
		query = r.URL.Query().Get("query")
	}

	loc, err := h.service.Geocode(r.Context(), query)
	switch {
	case errors.Is(err, services.ErrMissingQuery):
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error(services.ErrMissingQuery.Error()))
		return
	case errors.Is(err, openweather.ErrLocationNotFound):
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("location not found"))
		return
	case err != nil:
		log.Error("failed to geocode", slog.String("query", query), sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to search location"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(loc))
}
