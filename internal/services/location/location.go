// Package services управляет списком сохранённых локаций пользователя.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/astraweather/internal/models"
)

// ErrValidation некорректные данные локации.
var ErrValidation = errors.New("missing required fields")

// LocationRepository атомарные операции над списком локаций.
type LocationRepository interface {
	AddLocation(ctx context.Context, userUID string, loc models.Location) error
	ListLocations(ctx context.Context, userUID string) ([]models.Location, error)
	RemoveLocation(ctx context.Context, userUID, locationID string, now time.Time) (*string, error)
	SetDefaultLocation(ctx context.Context, userUID, locationID string, now time.Time) error
}

// LocationService добавляет, удаляет и выбирает локацию по умолчанию.
type LocationService struct {
	repo LocationRepository
	now  func() time.Time
}

// NewLocationService создает новый экземпляр LocationService.
func NewLocationService(repo LocationRepository) *LocationService {
	return &LocationService{repo: repo, now: time.Now}
}

// Add сохраняет новую локацию с UUID и текущим временем создания.
func (s *LocationService) Add(ctx context.Context, userUID, name string, latitude, longitude float64) (*models.Location, error) {
	const op = "services.LocationService.Add"
	name = strings.TrimSpace(name)
	if name == "" || latitude < -90 || latitude > 90 || longitude < -180 || longitude > 180 {
		return nil, fmt.Errorf("%s: %w", op, ErrValidation)
	}

	loc := models.Location{
		ID:        uuid.NewString(),
		Name:      name,
		Latitude:  latitude,
		Longitude: longitude,
		CreatedAt: s.now().UTC(),
	}
	if err := s.repo.AddLocation(ctx, userUID, loc); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &loc, nil
}

// List возвращает локации в порядке добавления.
func (s *LocationService) List(ctx context.Context, userUID string) ([]models.Location, error) {
	const op = "services.LocationService.List"
	locations, err := s.repo.ListLocations(ctx, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return locations, nil
}

// Remove удаляет локацию и возвращает актуальный defaultLocationId.
func (s *LocationService) Remove(ctx context.Context, userUID, locationID string) (*string, error) {
	const op = "services.LocationService.Remove"
	defaultID, err := s.repo.RemoveLocation(ctx, userUID, locationID, s.now().UTC())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return defaultID, nil
}

// SetDefault делает локацию локацией по умолчанию.
func (s *LocationService) SetDefault(ctx context.Context, userUID, locationID string) error {
	const op = "services.LocationService.SetDefault"
	if err := s.repo.SetDefaultLocation(ctx, userUID, locationID, s.now().UTC()); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
