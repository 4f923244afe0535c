// Package forecast проксирует прогноз погоды по координатам или названию места.
package forecast

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/astraweather/internal/http/response"
	"github.com/magabrotheeeer/astraweather/internal/lib/sl"
	"github.com/magabrotheeeer/astraweather/internal/models"
	"github.com/magabrotheeeer/astraweather/internal/openweather"
	services "github.com/magabrotheeeer/astraweather/internal/services/weather"
)

// Service получает прогноз.
type Service interface {
	Forecast(ctx context.Context, lat, lon float64) (*models.Forecast, error)
	ForecastByName(ctx context.Context, name string) (*models.Forecast, error)
}

// Handler обрабатывает GET /weather.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создаёт Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Прогноз погоды
// @Description Пятидневный прогноз с шагом три часа. Нужны lat и lon либо location.
// @Tags Weather
// @Produce json
// @Security BearerAuth
// @Param lat query number false "Широта"
// @Param lon query number false "Долгота"
// @Param location query string false "Название места"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse "Место не найдено"
// @Failure 500 {object} response.ErrorResponse
// @Router /weather [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.weather.forecast"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	q := r.URL.Query()
	var (
		forecast *models.Forecast
		err      error
	)
	lat, lon, hasCoords, parseErr := Coordinates(r)
	switch {
	case parseErr != nil:
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error(services.ErrInvalidCoordinates.Error()))
		return
	case hasCoords:
		forecast, err = h.service.Forecast(r.Context(), lat, lon)
	case strings.TrimSpace(q.Get("location")) != "":
		forecast, err = h.service.ForecastByName(r.Context(), q.Get("location"))
	default:
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error(services.ErrMissingCoordinates.Error()))
		return
	}

	switch {
	case errors.Is(err, services.ErrInvalidCoordinates):
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error(services.ErrInvalidCoordinates.Error()))
		return
	case errors.Is(err, openweather.ErrLocationNotFound):
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("location not found"))
		return
	case err != nil:
		log.Error("failed to fetch forecast", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to fetch weather data"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(forecast))
}

// Coordinates читает lat и lon из query. ok=false, если хотя бы одного нет.
func Coordinates(r *http.Request) (lat, lon float64, ok bool, err error) {
	q := r.URL.Query()
	rawLat, rawLon := q.Get("lat"), q.Get("lon")
	if rawLat == "" || rawLon == "" {
		return 0, 0, false, nil
	}
	lat, err = strconv.ParseFloat(rawLat, 64)
	if err != nil {
		return 0, 0, false, err
	}
	lon, err = strconv.ParseFloat(rawLon, 64)
	if err != nil {
		return 0, 0, false, err
	}
	return lat, lon, true, nil
}
