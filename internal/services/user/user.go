// Package services содержит чтение записи пользователя и изменение настроек.
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/magabrotheeeer/astraweather/internal/models"
)

// UserRepository описывает доступ к записи пользователя.
type UserRepository interface {
	GetUser(ctx context.Context, userUID string) (*models.User, error)
	ListLocations(ctx context.Context, userUID string) ([]models.Location, error)
	UpdatePreferences(ctx context.Context, userUID string, patch models.PreferencesPatch, now time.Time) (*models.Preferences, error)
}

// UserService отдаёт запись пользователя вместе с сохранёнными локациями.
type UserService struct {
	repo UserRepository
	now  func() time.Time
}

// NewUserService создает новый экземпляр UserService.
func NewUserService(repo UserRepository) *UserService {
	return &UserService{repo: repo, now: time.Now}
}

// Get возвращает пользователя с локациями в порядке добавления.
func (s *UserService) Get(ctx context.Context, userUID string) (*models.User, error) {
	const op = "services.UserService.Get"
	user, err := s.repo.GetUser(ctx, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	locations, err := s.repo.ListLocations(ctx, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	user.SavedLocations = locations
	return user, nil
}

// UpdatePreferences применяет частичное обновление настроек.
func (s *UserService) UpdatePreferences(ctx context.Context, userUID string, patch models.PreferencesPatch) (*models.Preferences, error) {
	const op = "services.UserService.UpdatePreferences"
	prefs, err := s.repo.UpdatePreferences(ctx, userUID, patch, s.now().UTC())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return prefs, nil
}
