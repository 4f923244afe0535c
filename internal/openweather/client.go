// Package openweather реализует клиент OpenWeather API 2.5: прогноз на пять
// дней с шагом 3 часа и прямое геокодирование.
package openweather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/magabrotheeeer/astraweather/internal/models"
)

// ErrLocationNotFound геокодер не нашёл место.
var ErrLocationNotFound = errors.New("location not found")

// APIError ответ OpenWeather с кодом не 2xx.
type APIError struct {
	StatusCode int    `json:"-"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("openweather: status %d", e.StatusCode)
	}
	return fmt.Sprintf("openweather: status %d: %s", e.StatusCode, e.Message)
}

// ForecastResponse тело ответа /data/2.5/forecast.
type ForecastResponse struct {
	List []models.ForecastEntry `json:"list"`
	City models.City            `json:"city"`
}

// Client клиент OpenWeather.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient создаёт клиент.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Forecast возвращает 40 точек прогноза (5 дней) в метрических единицах.
func (c *Client) Forecast(ctx context.Context, lat, lon float64) (*ForecastResponse, error) {
	const op = "openweather.Forecast"
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("appid", c.apiKey)
	q.Set("units", "metric")
	q.Set("cnt", "40")

	var resp ForecastResponse
	if err := c.get(ctx, "/data/2.5/forecast", q, &resp); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &resp, nil
}

// Geocode ищет место по названию и возвращает первое совпадение.
func (c *Client) Geocode(ctx context.Context, query string) (*models.GeoLocation, error) {
	const op = "openweather.Geocode"
	q := url.Values{}
	q.Set("q", query)
	q.Set("limit", "1")
	q.Set("appid", c.apiKey)

	var found []models.GeoLocation
	if err := c.get(ctx, "/geo/1.0/direct", q, &found); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if len(found) == 0 {
		return nil, fmt.Errorf("%s: %w", op, ErrLocationNotFound)
	}
	return &found[0], nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		_ = json.Unmarshal(raw, apiErr)
		return apiErr
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
