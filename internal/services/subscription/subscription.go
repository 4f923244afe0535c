// Package services содержит оформление подписки через PayPal и чтение её состояния.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/magabrotheeeer/astraweather/internal/lib/sl"
	"github.com/magabrotheeeer/astraweather/internal/models"
	"github.com/magabrotheeeer/astraweather/internal/paypal"
	"github.com/magabrotheeeer/astraweather/internal/subscription"
)

var (
	// ErrMissingFields не передан planId или userId.
	ErrMissingFields = errors.New("missing planId or userId")
	// ErrForbidden подписку оформляют не за себя.
	ErrForbidden = errors.New("cannot create a subscription for another user")
)

// SubscriptionRepository хранит состояние подписки в записи пользователя.
type SubscriptionRepository interface {
	GetUser(ctx context.Context, userUID string) (*models.User, error)
	SetPendingSubscription(ctx context.Context, userUID, paypalSubscriptionID string, now time.Time) error
	UpdateSubscription(ctx context.Context, userUID string, upd models.SubscriptionUpdate) error
}

// Provider создаёт подписку у платёжного провайдера.
type Provider interface {
	CreateSubscription(ctx context.Context, req paypal.CreateSubscriptionRequest, requestID string) (*paypal.Subscription, error)
}

// CheckoutConfig параметры страницы подтверждения.
type CheckoutConfig struct {
	BrandName string
	AppURL    string
}

// SubscriptionService оформляет подписку и отдаёт её состояние.
type SubscriptionService struct {
	log      *slog.Logger
	repo     SubscriptionRepository
	provider Provider
	cfg      CheckoutConfig
	now      func() time.Time
}

// NewSubscriptionService создает новый экземпляр SubscriptionService.
func NewSubscriptionService(log *slog.Logger, repo SubscriptionRepository, provider Provider, cfg CheckoutConfig) *SubscriptionService {
	return &SubscriptionService{
		log:      log,
		repo:     repo,
		provider: provider,
		cfg:      cfg,
		now:      time.Now,
	}
}

// Checkout создаёт подписку на план planID для пользователя userUID.
// callerUID пользователь из токена, оформить подписку можно только за себя.
// После ответа провайдера подписка запоминается в статусе pending.
func (s *SubscriptionService) Checkout(ctx context.Context, callerUID, userUID, planID string) (*paypal.Subscription, error) {
	const op = "services.SubscriptionService.Checkout"
	log := s.log.With(slog.String("op", op), slog.String("user_uid", userUID))

	if strings.TrimSpace(planID) == "" || strings.TrimSpace(userUID) == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrMissingFields)
	}
	if userUID != callerUID {
		return nil, fmt.Errorf("%s: %w", op, ErrForbidden)
	}

	now := s.now()
	appURL := strings.TrimRight(s.cfg.AppURL, "/")
	req := paypal.CreateSubscriptionRequest{
		PlanID:   planID,
		CustomID: userUID,
		ApplicationContext: paypal.ApplicationContext{
			BrandName:  s.cfg.BrandName,
			Locale:     "en-US",
			UserAction: "SUBSCRIBE_NOW",
			ReturnURL:  appURL + "/success",
			CancelURL:  appURL + "/pricing",
		},
	}
	requestID := fmt.Sprintf("%s-%d", userUID, now.UnixMilli())

	sub, err := s.provider.CreateSubscription(ctx, req, requestID)
	if err != nil {
		log.Error("failed to create paypal subscription", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.repo.SetPendingSubscription(ctx, userUID, sub.ID, now.UTC()); err != nil {
		log.Error("failed to record pending subscription",
			slog.String("paypal_subscription_id", sub.ID), sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("subscription created", slog.String("paypal_subscription_id", sub.ID))
	return sub, nil
}

// Status возвращает состояние подписки и вычисленное право на премиум.
func (s *SubscriptionService) Status(ctx context.Context, userUID string) (*models.SubscriptionInfo, error) {
	const op = "services.SubscriptionService.Status"
	user, err := s.repo.GetUser(ctx, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &models.SubscriptionInfo{
		IsPremium:            user.IsPremium,
		Entitled:             user.Entitled(s.now()),
		SubscriptionStatus:   user.SubscriptionStatus,
		PaypalSubscriptionID: user.PaypalSubscriptionID,
		SubscriptionStart:    user.SubscriptionStart,
		SubscriptionEnd:      user.SubscriptionEnd,
	}, nil
}

// SimulateActivation применяет изменение ACTIVATED без обращения к провайдеру.
// Используется тестовым вебхуком вне продакшена.
func (s *SubscriptionService) SimulateActivation(ctx context.Context, userUID string) error {
	const op = "services.SubscriptionService.SimulateActivation"
	if strings.TrimSpace(userUID) == "" {
		return fmt.Errorf("%s: %w", op, ErrMissingFields)
	}
	upd := subscription.Activation(s.now().UTC(), models.StatusActiveAPI)
	if err := s.repo.UpdateSubscription(ctx, userUID, upd); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("test activation applied", slog.String("op", op), slog.String("user_uid", userUID))
	return nil
}
