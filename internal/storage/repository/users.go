package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/magabrotheeeer/astraweather/internal/models"
)

const userColumns = `uid, email, name, role, password_hash, is_premium,
			      subscription_status, paypal_subscription_id, subscription_start,
			      subscription_end, default_location_id, preferences, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	var (
		u                 models.User
		start, end        sql.NullTime
		defaultLocationID sql.NullString
		rawPreferences    []byte
	)
	if err := row.Scan(&u.UID, &u.Email, &u.Name, &u.Role, &u.PasswordHash, &u.IsPremium,
		&u.SubscriptionStatus, &u.PaypalSubscriptionID, &start,
		&end, &defaultLocationID, &rawPreferences, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	u.SubscriptionStart = timePtr(start)
	u.SubscriptionEnd = timePtr(end)
	if defaultLocationID.Valid {
		u.DefaultLocationID = &defaultLocationID.String
	}
	if err := json.Unmarshal(rawPreferences, &u.Preferences); err != nil {
		return nil, fmt.Errorf("preferences: %w", err)
	}
	return &u, nil
}

// CreateUser сохраняет нового пользователя и возвращает его UID.
func (s *Storage) CreateUser(ctx context.Context, user models.User) (string, error) {
	const op = "storage.CreateUser"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	prefs, err := json.Marshal(user.Preferences)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	var newUID string
	query := `INSERT INTO users (uid, email, name, role, password_hash, is_premium,
			      subscription_status, preferences, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
			  RETURNING uid;`
	if err := s.DB.QueryRowContext(ctx, query,
		user.UID, user.Email, user.Name, user.Role, user.PasswordHash, user.IsPremium,
		user.SubscriptionStatus, string(prefs), user.CreatedAt).Scan(&newUID); err != nil {
		if pgCode(err) == pgUniqueViolation {
			return "", fmt.Errorf("%s: %w", op, ErrUserExists)
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newUID, nil
}

// GetUserByEmail возвращает пользователя по email.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.GetUserByEmail"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + `
			  FROM users
			  WHERE email = $1`
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// GetUser возвращает пользователя по его UID.
func (s *Storage) GetUser(ctx context.Context, userUID string) (*models.User, error) {
	const op = "storage.GetUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + `
			  FROM users
			  WHERE uid = $1`
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, userUID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// UpdatePreferences объединяет переданные настройки с сохранёнными
// одним UPDATE и возвращает итоговые настройки.
func (s *Storage) UpdatePreferences(ctx context.Context, userUID string, patch models.PreferencesPatch, now time.Time) (*models.Preferences, error) {
	const op = "storage.UpdatePreferences"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	rawPatch, err := json.Marshal(patch)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	query := `UPDATE users
			  SET preferences = preferences || $2::jsonb,
			      updated_at = $3
			  WHERE uid = $1
			  RETURNING preferences`
	var raw []byte
	err = s.DB.QueryRowContext(ctx, query, userUID, string(rawPatch), now).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var prefs models.Preferences
	if err := json.Unmarshal(raw, &prefs); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &prefs, nil
}
