// Package services проксирует погодный API: прогноз с кешированием в Redis,
// геокодирование и персональные рекомендации для премиум-подписчиков.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/magabrotheeeer/astraweather/internal/lib/sl"
	"github.com/magabrotheeeer/astraweather/internal/models"
	"github.com/magabrotheeeer/astraweather/internal/openweather"
)

var (
	// ErrMissingCoordinates не заданы ни координаты, ни название места.
	ErrMissingCoordinates = errors.New("latitude and longitude or location are required")
	// ErrInvalidCoordinates координаты вне допустимого диапазона.
	ErrInvalidCoordinates = errors.New("invalid coordinates")
	// ErrMissingQuery пустой поисковый запрос.
	ErrMissingQuery = errors.New("query is required")
)

// Provider источник погодных данных.
type Provider interface {
	Forecast(ctx context.Context, lat, lon float64) (*openweather.ForecastResponse, error)
	Geocode(ctx context.Context, query string) (*models.GeoLocation, error)
}

// Cache кеш прогнозов.
type Cache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
}

// WeatherService отдаёт прогнозы и рекомендации.
type WeatherService struct {
	log      *slog.Logger
	provider Provider
	cache    Cache
	cacheTTL time.Duration
	now      func() time.Time
}

// NewWeatherService создает новый экземпляр WeatherService.
func NewWeatherService(log *slog.Logger, provider Provider, cache Cache, cacheTTL time.Duration) *WeatherService {
	return &WeatherService{
		log:      log,
		provider: provider,
		cache:    cache,
		cacheTTL: cacheTTL,
		now:      time.Now,
	}
}

func forecastCacheKey(lat, lon float64) string {
	return fmt.Sprintf("weather:forecast:%.2f:%.2f", lat, lon)
}

func validCoordinates(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

// Forecast возвращает прогноз по координатам. Ответ кешируется по координатам,
// округлённым до двух знаков. Ошибки кеша не прерывают запрос.
func (s *WeatherService) Forecast(ctx context.Context, lat, lon float64) (*models.Forecast, error) {
	const op = "services.WeatherService.Forecast"
	log := s.log.With(slog.String("op", op))

	if !validCoordinates(lat, lon) {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidCoordinates)
	}

	key := forecastCacheKey(lat, lon)
	if s.cache != nil {
		var cached models.Forecast
		found, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			log.Warn("failed to read forecast from cache", sl.Err(err))
		}
		if found {
			return &cached, nil
		}
	}

	resp, err := s.provider.Forecast(ctx, lat, lon)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	forecast := &models.Forecast{
		List: resp.List,
		City: resp.City,
	}
	if len(resp.List) > 0 {
		forecast.Current = currentFromEntry(resp.List[0])
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, forecast, s.cacheTTL); err != nil {
			log.Warn("failed to store forecast in cache", sl.Err(err))
		}
	}
	return forecast, nil
}

// ForecastByName геокодирует название и возвращает прогноз для найденной точки.
func (s *WeatherService) ForecastByName(ctx context.Context, name string) (*models.Forecast, error) {
	const op = "services.WeatherService.ForecastByName"
	loc, err := s.Geocode(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	forecast, err := s.Forecast(ctx, loc.Latitude, loc.Longitude)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return forecast, nil
}

// Geocode ищет место и форматирует имя как "Name[, State], Country".
func (s *WeatherService) Geocode(ctx context.Context, query string) (*models.GeoLocation, error) {
	const op = "services.WeatherService.Geocode"
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrMissingQuery)
	}
	loc, err := s.provider.Geocode(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	result := *loc
	result.Name = formatPlaceName(loc)
	return &result, nil
}

func formatPlaceName(loc *models.GeoLocation) string {
	parts := []string{loc.Name}
	if loc.State != "" {
		parts = append(parts, loc.State)
	}
	if loc.Country != "" {
		parts = append(parts, loc.Country)
	}
	return strings.Join(parts, ", ")
}

func currentFromEntry(e models.ForecastEntry) models.CurrentWeather {
	return models.CurrentWeather{
		Temp:       e.Main.Temp,
		FeelsLike:  e.Main.FeelsLike,
		Humidity:   e.Main.Humidity,
		Pressure:   e.Main.Pressure,
		WindSpeed:  e.Wind.Speed,
		WindDeg:    e.Wind.Deg,
		Clouds:     e.Clouds.All,
		Visibility: e.Visibility,
		Weather:    e.Weather,
	}
}

// DailySummary сводка прогноза за календарный день в часовом поясе места.
type DailySummary struct {
	Date          string
	TempMin       float64
	TempMax       float64
	Precipitation int
}

// Daily группирует трёхчасовые точки по дням с учётом смещения часового пояса в секундах.
func Daily(list []models.ForecastEntry, tzOffset int) []DailySummary {
	zone := time.FixedZone("", tzOffset)
	days := make([]DailySummary, 0, 6)
	for _, e := range list {
		date := time.Unix(e.Dt, 0).In(zone).Format(time.DateOnly)
		pop := int(math.Round(e.Pop * 100))
		n := len(days)
		if n == 0 || days[n-1].Date != date {
			days = append(days, DailySummary{
				Date:          date,
				TempMin:       e.Main.TempMin,
				TempMax:       e.Main.TempMax,
				Precipitation: pop,
			})
			continue
		}
		d := &days[n-1]
		d.TempMin = math.Min(d.TempMin, e.Main.TempMin)
		d.TempMax = math.Max(d.TempMax, e.Main.TempMax)
		if pop > d.Precipitation {
			d.Precipitation = pop
		}
	}
	return days
}
