// Package services содержит периодическую проверку подписок с истёкшим сроком.
package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/astraweather/internal/lib/sl"
	"github.com/magabrotheeeer/astraweather/internal/models"
	"github.com/magabrotheeeer/astraweather/internal/rabbitmq"
)

// SubscriptionRepository снимает премиум-доступ с истёкших подписок.
type SubscriptionRepository interface {
	ExpireLapsedSubscriptions(ctx context.Context, now time.Time) ([]models.SubscriptionExpiredNotification, error)
}

// Publisher публикует уведомления в брокер.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, message any) error
}

// SchedulerService периодически переводит истёкшие подписки в expired.
type SchedulerService struct {
	repo      SubscriptionRepository
	publisher Publisher
	log       *slog.Logger
	now       func() time.Time
}

// NewSchedulerService создает новый экземпляр SchedulerService.
func NewSchedulerService(repo SubscriptionRepository, publisher Publisher, log *slog.Logger) *SchedulerService {
	return &SchedulerService{
		repo:      repo,
		publisher: publisher,
		log:       log,
		now:       time.Now,
	}
}

// ExpireLapsedSubscriptions запускает проверку сразу и затем с интервалом interval
// до отмены ctx.
func (s *SchedulerService) ExpireLapsedSubscriptions(ctx context.Context, interval time.Duration) {
	s.runExpireLapsedSubscriptions(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("expiry sweep stopped")
			return
		case <-ticker.C:
			s.runExpireLapsedSubscriptions(ctx)
		}
	}
}

// runExpireLapsedSubscriptions возвращает число опубликованных уведомлений.
func (s *SchedulerService) runExpireLapsedSubscriptions(ctx context.Context) int {
	s.log.Info("starting expiry sweep")
	expired, err := s.repo.ExpireLapsedSubscriptions(ctx, s.now().UTC())
	if err != nil {
		s.log.Error("failed to expire subscriptions", sl.Err(err))
		return 0
	}
	if len(expired) == 0 {
		s.log.Info("no lapsed subscriptions found")
		return 0
	}
	s.log.Info("expired subscriptions", slog.Int("count", len(expired)))

	published := 0
	for _, n := range expired {
		if err := s.publisher.Publish(ctx, rabbitmq.RoutingSubscriptionExpired, n); err != nil {
			s.log.Error("failed to publish message", slog.String("user_uid", n.UID), sl.Err(err))
			continue
		}
		published++
	}
	return published
}
