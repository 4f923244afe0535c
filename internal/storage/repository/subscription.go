package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/magabrotheeeer/astraweather/internal/models"
)

// UpdateSubscription применяет изменения подписки к записи пользователя одним UPDATE.
// Меняются только непустые поля upd и всегда updated_at.
func (s *Storage) UpdateSubscription(ctx context.Context, userUID string, upd models.SubscriptionUpdate) error {
	const op = "storage.UpdateSubscription"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	sets := make([]string, 0, 6)
	args := make([]any, 0, 7)
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if upd.IsPremium != nil {
		add("is_premium", *upd.IsPremium)
	}
	if upd.PaypalSubscriptionID != nil {
		add("paypal_subscription_id", *upd.PaypalSubscriptionID)
	}
	if upd.SubscriptionStatus != nil {
		add("subscription_status", *upd.SubscriptionStatus)
	}
	if upd.SubscriptionStart != nil {
		add("subscription_start", *upd.SubscriptionStart)
	}
	if upd.SubscriptionEnd != nil {
		add("subscription_end", *upd.SubscriptionEnd)
	}
	updatedAt := upd.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}
	add("updated_at", updatedAt)

	args = append(args, userUID)
	query := fmt.Sprintf(`UPDATE users SET %s WHERE uid = $%d`, strings.Join(sets, ", "), len(args))

	res, err := s.DB.ExecContext(ctx, query, args...)
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

// SetPendingSubscription запоминает созданную в PayPal подписку до её подтверждения.
func (s *Storage) SetPendingSubscription(ctx context.Context, userUID, paypalSubscriptionID string, now time.Time) error {
	status := models.StatusPending
	return s.UpdateSubscription(ctx, userUID, models.SubscriptionUpdate{
		PaypalSubscriptionID: &paypalSubscriptionID,
		SubscriptionStatus:   &status,
		UpdatedAt:            now,
	})
}

// ExpireLapsedSubscriptions переводит в expired подписки, срок которых истёк,
// и возвращает затронутых пользователей.
func (s *Storage) ExpireLapsedSubscriptions(ctx context.Context, now time.Time) ([]models.SubscriptionExpiredNotification, error) {
	const op = "storage.ExpireLapsedSubscriptions"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET subscription_status = $2,
			      is_premium = FALSE,
			      updated_at = $1
			  WHERE subscription_end < $1
			    AND (LOWER(subscription_status) = 'active' OR is_premium)
			  RETURNING uid, email, name, paypal_subscription_id, subscription_end`
	rows, err := s.DB.QueryContext(ctx, query, now, models.StatusExpired)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []models.SubscriptionExpiredNotification
	for rows.Next() {
		var n models.SubscriptionExpiredNotification
		var end time.Time
		if err := rows.Scan(&n.UID, &n.Email, &n.Name, &n.PaypalSubscriptionID, &end); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		n.SubscriptionEnd = &end
		result = append(result, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
