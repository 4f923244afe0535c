package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/magabrotheeeer/astraweather/internal/models"
)

const supportColumns = `id, user_uid, sender, message, timestamp, resolved,
			      has_admin_response, responded_at, admin_email`

func scanSupportMessage(row rowScanner) (models.SupportMessage, error) {
	var m models.SupportMessage
	var respondedAt sql.NullTime
	if err := row.Scan(&m.ID, &m.UserID, &m.Sender, &m.Message, &m.Timestamp, &m.Resolved,
		&m.HasAdminResponse, &respondedAt, &m.AdminEmail); err != nil {
		return m, err
	}
	m.RespondedAt = timePtr(respondedAt)
	return m, nil
}

// CreateSupportMessage сохраняет сообщение чата поддержки.
func (s *Storage) CreateSupportMessage(ctx context.Context, m models.SupportMessage) error {
	const op = "storage.CreateSupportMessage"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO support_messages (id, user_uid, sender, message, timestamp, resolved,
			      has_admin_response, admin_email)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := s.DB.ExecContext(ctx, query,
		m.ID, m.UserID, m.Sender, m.Message, m.Timestamp, m.Resolved, m.HasAdminResponse, m.AdminEmail)
	if err != nil {
		if pgCode(err) == pgForeignKeyViolation {
			return fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ListSupportMessages возвращает переписку пользователя от старых сообщений к новым.
func (s *Storage) ListSupportMessages(ctx context.Context, userUID string) ([]models.SupportMessage, error) {
	const op = "storage.ListSupportMessages"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + supportColumns + `
			  FROM support_messages
			  WHERE user_uid = $1
			  ORDER BY timestamp ASC, id`
	return s.querySupportMessages(ctx, op, query, userUID)
}

// ListAllSupportMessages возвращает все сообщения, новые первыми.
func (s *Storage) ListAllSupportMessages(ctx context.Context, limit, offset int) ([]models.SupportMessage, error) {
	const op = "storage.ListAllSupportMessages"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + supportColumns + `
			  FROM support_messages
			  ORDER BY timestamp DESC, id
			  LIMIT $1 OFFSET $2`
	return s.querySupportMessages(ctx, op, query, limit, offset)
}

func (s *Storage) querySupportMessages(ctx context.Context, op, query string, args ...any) ([]models.SupportMessage, error) {
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := make([]models.SupportMessage, 0)
	for rows.Next() {
		m, err := scanSupportMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// RespondToSupportMessage отмечает сообщение отвеченным и сохраняет ответ поддержки
// в одной транзакции.
func (s *Storage) RespondToSupportMessage(ctx context.Context, messageID string, reply models.SupportMessage, now time.Time) error {
	const op = "storage.RespondToSupportMessage"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	res, err := tx.ExecContext(ctx, `UPDATE support_messages
			  SET has_admin_response = TRUE,
			      responded_at = $3,
			      admin_email = $4
			  WHERE id = $1 AND user_uid = $2`,
		messageID, reply.UserID, now, reply.AdminEmail)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: %w", op, ErrMessageNotFound)
	}

	_, err = tx.ExecContext(ctx, `INSERT INTO support_messages (id, user_uid, sender, message, timestamp,
			      resolved, has_admin_response, admin_email)
			  VALUES ($1, $2, $3, $4, $5, $6, FALSE, $7)`,
		reply.ID, reply.UserID, reply.Sender, reply.Message, reply.Timestamp, reply.Resolved, reply.AdminEmail)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
