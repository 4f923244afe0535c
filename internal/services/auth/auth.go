// Package services содержит регистрацию и вход пользователей.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/astraweather/internal/lib/jwt"
	"github.com/magabrotheeeer/astraweather/internal/lib/password"
	"github.com/magabrotheeeer/astraweather/internal/models"
	"github.com/magabrotheeeer/astraweather/internal/storage/repository"
)

// ErrInvalidCredentials неверный email или пароль.
var ErrInvalidCredentials = errors.New("invalid credentials")

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	CreateUser(ctx context.Context, user models.User) (string, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// AuthService отвечает за регистрацию и выдачу токенов.
type AuthService struct {
	users    UserRepository
	jwtMaker jwt.Maker
	now      func() time.Time
}

// NewAuthService создает новый экземпляр AuthService.
func NewAuthService(users UserRepository, jwtMaker jwt.Maker) *AuthService {
	return &AuthService{
		users:    users,
		jwtMaker: jwtMaker,
		now:      time.Now,
	}
}

// Register создаёт пользователя с ролью user, настройками по умолчанию
// и без подписки. Возвращает UID нового пользователя.
func (s *AuthService) Register(ctx context.Context, email, name, rawPassword string) (string, error) {
	const op = "services.AuthService.Register"
	hashed, err := password.GetHash(rawPassword)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	user := models.User{
		UID:          uuid.NewString(),
		Email:        normalizeEmail(email),
		Name:         strings.TrimSpace(name),
		Role:         models.RoleUser,
		PasswordHash: hashed,
		IsPremium:    false,
		Preferences:  models.DefaultPreferences(),
		CreatedAt:    s.now().UTC(),
	}
	uid, err := s.users.CreateUser(ctx, user)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return uid, nil
}

// Login проверяет пароль и выпускает токен доступа.
func (s *AuthService) Login(ctx context.Context, email, rawPassword string) (string, *models.User, error) {
	const op = "services.AuthService.Login"
	user, err := s.users.GetUserByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, repository.ErrUserNotFound) {
		return "", nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		return "", nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}
	token, err := s.jwtMaker.GenerateToken(user.UID, user.Role)
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}
	return token, user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
