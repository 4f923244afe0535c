// Package insights отдаёт премиум-подписчикам рекомендации по прогнозу.
package insights

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/astraweather/internal/http/handlers/weather/forecast"
	"github.com/magabrotheeeer/astraweather/internal/http/response"
	"github.com/magabrotheeeer/astraweather/internal/lib/sl"
	"github.com/magabrotheeeer/astraweather/internal/models"
	services "github.com/magabrotheeeer/astraweather/internal/services/weather"
)

// Service строит рекомендации.
type Service interface {
	Insights(ctx context.Context, lat, lon float64, activity string) ([]models.Insight, error)
}

// Handler обрабатывает GET /weather/insights.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создаёт Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Рекомендации по погоде
// @Description Не больше шести рекомендаций. activity: commute, outdoor, sports, travel, indoor.
// @Tags Weather
// @Produce json
// @Security BearerAuth
// @Param lat query number true "Широта"
// @Param lon query number true "Долгота"
// @Param activity query string false "Вид активности"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Failure 403 {object} response.ErrorResponse "Нужна премиум-подписка"
// @Router /weather/insights [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.weather.insights"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	lat, lon, ok, err := forecast.Coordinates(r)
	if err != nil || !ok {
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("latitude and longitude are required"))
		return
	}

	list, err := h.service.Insights(r.Context(), lat, lon, r.URL.Query().Get("activity"))
	switch {
	case errors.Is(err, services.ErrUnknownActivity):
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error(services.ErrUnknownActivity.Error()))
		return
	case errors.Is(err, services.ErrInvalidCoordinates):
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error(services.ErrInvalidCoordinates.Error()))
		return
	case err != nil:
		log.Error("failed to build insights", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to build insights"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"insights": list,
	}))
}
