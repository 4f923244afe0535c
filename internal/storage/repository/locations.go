package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/magabrotheeeer/astraweather/internal/models"
)

// AddLocation добавляет локацию в список пользователя одним запросом.
func (s *Storage) AddLocation(ctx context.Context, userUID string, loc models.Location) error {
	const op = "storage.AddLocation"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `WITH owner AS (
			      UPDATE users SET updated_at = $6 WHERE uid = $2 RETURNING uid
			  )
			  INSERT INTO saved_locations (id, user_uid, name, latitude, longitude, created_at)
			  SELECT $1, owner.uid, $3, $4, $5, $6 FROM owner`
	res, err := s.DB.ExecContext(ctx, query,
		loc.ID, userUID, loc.Name, loc.Latitude, loc.Longitude, loc.CreatedAt)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: %w", op, ErrUserNotFound)
	}
	return nil
}

// ListLocations возвращает локации пользователя в порядке добавления.
func (s *Storage) ListLocations(ctx context.Context, userUID string) ([]models.Location, error) {
	const op = "storage.ListLocations"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT l.id, l.name, l.latitude, l.longitude, l.created_at,
			      COALESCE(u.default_location_id = l.id, FALSE)
			  FROM saved_locations l
			  JOIN users u ON u.uid = l.user_uid
			  WHERE l.user_uid = $1
			  ORDER BY l.created_at, l.id`
	rows, err := s.DB.QueryContext(ctx, query, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := make([]models.Location, 0)
	for rows.Next() {
		var l models.Location
		if err := rows.Scan(&l.ID, &l.Name, &l.Latitude, &l.Longitude, &l.CreatedAt, &l.IsDefault); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// RemoveLocation удаляет локацию в транзакции. Если удалена локация по умолчанию,
// по умолчанию становится самая ранняя из оставшихся или NULL.
// Возвращает новый defaultLocationId. Удаление отсутствующей локации не ошибка.
func (s *Storage) RemoveLocation(ctx context.Context, userUID, locationID string, now time.Time) (*string, error) {
	const op = "storage.RemoveLocation"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var current sql.NullString
	err = tx.QueryRowContext(ctx,
		`SELECT default_location_id FROM users WHERE uid = $1 FOR UPDATE`, userUID).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM saved_locations WHERE id = $1 AND user_uid = $2`, locationID, userUID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var newDefault sql.NullString
	if current.Valid && current.String == locationID {
		query := `UPDATE users
				  SET default_location_id = (
				      SELECT id FROM saved_locations
				      WHERE user_uid = $1
				      ORDER BY created_at, id
				      LIMIT 1
				  ),
				      updated_at = $2
				  WHERE uid = $1
				  RETURNING default_location_id`
		if err := tx.QueryRowContext(ctx, query, userUID, now).Scan(&newDefault); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	} else {
		newDefault = current
		if _, err := tx.ExecContext(ctx,
			`UPDATE users SET updated_at = $2 WHERE uid = $1`, userUID, now); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if !newDefault.Valid {
		return nil, nil
	}
	return &newDefault.String, nil
}

// SetDefaultLocation делает локацию локацией по умолчанию.
// Обновление выполняется, только если локация принадлежит пользователю.
func (s *Storage) SetDefaultLocation(ctx context.Context, userUID, locationID string, now time.Time) error {
	const op = "storage.SetDefaultLocation"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET default_location_id = $2,
			      updated_at = $3
			  WHERE uid = $1
			    AND EXISTS (SELECT 1 FROM saved_locations WHERE id = $2 AND user_uid = $1)`
	res, err := s.DB.ExecContext(ctx, query, userUID, locationID, now)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected > 0 {
		return nil
	}

	var exists bool
	if err := s.DB.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE uid = $1)`, userUID).Scan(&exists); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if !exists {
		return fmt.Errorf("%s: %w", op, ErrUserNotFound)
	}
	return fmt.Errorf("%s: %w", op, ErrLocationNotFound)
}
