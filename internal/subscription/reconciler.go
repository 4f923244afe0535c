package subscription

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/astraweather/internal/lib/sl"
	"github.com/magabrotheeeer/astraweather/internal/metrics"
	"github.com/magabrotheeeer/astraweather/internal/models"
	"github.com/magabrotheeeer/astraweather/internal/paypal"
)

// Period длительность оплаченного периода, отсчитывается от момента обработки события.
const Period = 30 * 24 * time.Hour

// ErrInvalidSignature PayPal не подтвердил подлинность события.
var ErrInvalidSignature = errors.New("invalid webhook signature")

// Verifier проверяет подпись вебхука через PayPal API.
type Verifier interface {
	VerifyWebhookSignature(ctx context.Context, req paypal.VerifyWebhookSignatureRequest) (*paypal.VerifyWebhookSignatureResponse, error)
}

// Store применяет изменения подписки к записи пользователя одним запросом.
type Store interface {
	UpdateSubscription(ctx context.Context, userUID string, upd models.SubscriptionUpdate) error
}

// Recorder учитывает исходы обработки событий.
type Recorder interface {
	EventProcessed(eventType, outcome string)
}

// Config параметры сверки, которые задаются при запуске.
type Config struct {
	WebhookID string
	// SkipVerification отключает проверку подписи. Только для локальной разработки.
	SkipVerification bool
}

// Reconciler проверяет подлинность события и переносит его в запись пользователя.
type Reconciler struct {
	log      *slog.Logger
	verifier Verifier
	store    Store
	recorder Recorder
	cfg      Config
	now      func() time.Time
}

// NewReconciler создаёт Reconciler. recorder может быть nil.
func NewReconciler(log *slog.Logger, verifier Verifier, store Store, recorder Recorder, cfg Config) *Reconciler {
	return &Reconciler{
		log:      log,
		verifier: verifier,
		store:    store,
		recorder: recorder,
		cfg:      cfg,
		now:      time.Now,
	}
}

// Handle обрабатывает одну доставку вебхука.
//
// Возвращает ErrMalformedEvent, если тело нельзя разобрать, ErrInvalidSignature,
// если подпись не подтверждена, и ошибку хранилища, если запись не обновилась.
// События неизвестных типов и события без custom_id подтверждаются без изменений.
func (r *Reconciler) Handle(ctx context.Context, t paypal.Transmission, body []byte) error {
	const op = "subscription.Reconciler.Handle"
	log := r.log.With(
		slog.String("op", op),
		slog.String("transmission_id", t.TransmissionID),
	)

	if !json.Valid(body) {
		log.Warn("webhook body is not valid json")
		r.record("", metrics.OutcomeMalformed)
		return fmt.Errorf("%s: %w", op, ErrMalformedEvent)
	}

	if r.cfg.SkipVerification {
		log.Warn("webhook signature verification is disabled")
	} else if err := r.verify(ctx, t, body); err != nil {
		log.Warn("webhook signature rejected", sl.Err(err))
		r.record("", metrics.OutcomeInvalidSignature)
		return fmt.Errorf("%s: %w", op, ErrInvalidSignature)
	}

	ev, err := ParseEvent(body)
	if err != nil {
		log.Warn("failed to parse webhook event", sl.Err(err))
		r.record("", metrics.OutcomeMalformed)
		return fmt.Errorf("%s: %w", op, err)
	}

	label := metricLabel(ev)
	res := ev.Subscription()
	log = log.With(
		slog.String("event_type", ev.Type()),
		slog.String("subscription_id", res.ID),
	)

	upd, ok := Mutation(ev, r.now())
	if !ok {
		log.Info("unhandled webhook event type")
		r.record(label, metrics.OutcomeIgnored)
		return nil
	}
	if res.CustomID == "" {
		log.Warn("no custom_id in webhook event")
		r.record(label, metrics.OutcomeMissingCustomID)
		return nil
	}

	if err := r.store.UpdateSubscription(ctx, res.CustomID, upd); err != nil {
		log.Error("failed to apply webhook event", slog.String("user_uid", res.CustomID), sl.Err(err))
		r.record(label, metrics.OutcomeStoreError)
		return fmt.Errorf("%s: %w", op, err)
	}

	log.Info("webhook event applied", slog.String("user_uid", res.CustomID))
	r.record(label, metrics.OutcomeApplied)
	return nil
}

func (r *Reconciler) verify(ctx context.Context, t paypal.Transmission, body []byte) error {
	req := paypal.NewVerifyRequest(t, r.cfg.WebhookID, json.RawMessage(body))
	resp, err := r.verifier.VerifyWebhookSignature(ctx, req)
	if err != nil {
		return err
	}
	if resp.VerificationStatus != paypal.VerificationSuccess {
		return fmt.Errorf("verification_status %q", resp.VerificationStatus)
	}
	return nil
}

func (r *Reconciler) record(eventType, outcome string) {
	if r.recorder != nil {
		r.recorder.EventProcessed(eventType, outcome)
	}
}

func metricLabel(ev Event) string {
	if _, ok := ev.(UnknownEvent); ok {
		return "other"
	}
	return ev.Type()
}

// Activation изменения записи при активации подписки со статусом status.
func Activation(now time.Time, status string) models.SubscriptionUpdate {
	end := now.Add(Period)
	return models.SubscriptionUpdate{
		IsPremium:          ptr(true),
		SubscriptionStatus: ptr(status),
		SubscriptionStart:  ptr(now),
		SubscriptionEnd:    &end,
		UpdatedAt:          now,
	}
}

// Mutation переводит событие в изменения записи пользователя.
// Второе значение false для событий, которые запись не меняют.
func Mutation(ev Event, now time.Time) (models.SubscriptionUpdate, bool) {
	res := ev.Subscription()

	switch ev.(type) {
	case SubscriptionCreated:
		upd := Activation(now, models.StatusActive)
		if res.ID != "" {
			upd.PaypalSubscriptionID = ptr(res.ID)
		}
		return upd, true
	case SubscriptionActivated:
		upd := Activation(now, models.StatusActiveAPI)
		if res.ID != "" {
			upd.PaypalSubscriptionID = ptr(res.ID)
		}
		return upd, true
	case SubscriptionUpdated:
		end := now.Add(Period)
		return models.SubscriptionUpdate{
			IsPremium:          ptr(res.Status == models.StatusActiveAPI),
			SubscriptionStatus: ptr(res.Status),
			SubscriptionEnd:    &end,
			UpdatedAt:          now,
		}, true
	case SubscriptionCancelled:
		return models.SubscriptionUpdate{
			IsPremium:          ptr(false),
			SubscriptionStatus: ptr(models.StatusCancelled),
			UpdatedAt:          now,
		}, true
	default:
		return models.SubscriptionUpdate{}, false
	}
}

func ptr[T any](v T) *T {
	return &v
}
