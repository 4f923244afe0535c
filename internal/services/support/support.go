// Package services содержит чат поддержки: сообщения пользователей,
// срочные обращения премиум-подписчиков и ответы администраторов.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/astraweather/internal/lib/sl"
	"github.com/magabrotheeeer/astraweather/internal/models"
	"github.com/magabrotheeeer/astraweather/internal/rabbitmq"
)

// Имена отправителей в ленте пользователя.
const (
	SenderNameUser    = "You"
	SenderNameSupport = "Support Team"
)

const defaultAdminPageSize = 100

var (
	// ErrEmptyMessage пустой текст сообщения.
	ErrEmptyMessage = errors.New("message is required")
	// ErrMissingFields в ответе администратора не хватает полей.
	ErrMissingFields = errors.New("missing messageId, userId or response")
)

// SupportRepository хранит сообщения чата поддержки.
type SupportRepository interface {
	GetUser(ctx context.Context, userUID string) (*models.User, error)
	CreateSupportMessage(ctx context.Context, m models.SupportMessage) error
	ListSupportMessages(ctx context.Context, userUID string) ([]models.SupportMessage, error)
	ListAllSupportMessages(ctx context.Context, limit, offset int) ([]models.SupportMessage, error)
	RespondToSupportMessage(ctx context.Context, messageID string, reply models.SupportMessage, now time.Time) error
}

// Publisher публикует уведомления в брокер.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, message any) error
}

// SupportService реализует чат поддержки.
type SupportService struct {
	log       *slog.Logger
	repo      SupportRepository
	publisher Publisher
	now       func() time.Time
}

// NewSupportService создает новый экземпляр SupportService.
func NewSupportService(log *slog.Logger, repo SupportRepository, publisher Publisher) *SupportService {
	return &SupportService{
		log:       log,
		repo:      repo,
		publisher: publisher,
		now:       time.Now,
	}
}

func (s *SupportService) newUserMessage(userUID, text string, ts *time.Time) (models.SupportMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return models.SupportMessage{}, ErrEmptyMessage
	}
	timestamp := s.now().UTC()
	if ts != nil && !ts.IsZero() {
		timestamp = ts.UTC()
	}
	return models.SupportMessage{
		ID:        uuid.NewString(),
		UserID:    userUID,
		Sender:    models.SenderUser,
		Message:   text,
		Timestamp: timestamp,
	}, nil
}

// Send сохраняет сообщение пользователя. Если ts не задан, берётся текущее время.
func (s *SupportService) Send(ctx context.Context, userUID, text string, ts *time.Time) (*models.SupportMessage, error) {
	const op = "services.SupportService.Send"
	msg, err := s.newUserMessage(userUID, text, ts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.repo.CreateSupportMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	msg.SenderName = SenderNameUser
	return &msg, nil
}

// List возвращает переписку пользователя от старых сообщений к новым.
func (s *SupportService) List(ctx context.Context, userUID string) ([]models.SupportMessage, error) {
	const op = "services.SupportService.List"
	messages, err := s.repo.ListSupportMessages(ctx, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	for i := range messages {
		if messages[i].Sender == models.SenderSupport {
			messages[i].SenderName = SenderNameSupport
		} else {
			messages[i].SenderName = SenderNameUser
		}
	}
	return messages, nil
}

// Urgent сохраняет срочное обращение и отправляет его в очередь support.urgent,
// откуда оно уходит письмом в поддержку.
func (s *SupportService) Urgent(ctx context.Context, userUID, text string, ts *time.Time) (*models.SupportMessage, error) {
	const op = "services.SupportService.Urgent"
	log := s.log.With(slog.String("op", op), slog.String("user_uid", userUID))

	msg, err := s.newUserMessage(userUID, text, ts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	user, err := s.repo.GetUser(ctx, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.repo.CreateSupportMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	notification := models.UrgentSupportNotification{
		UserID:    userUID,
		Email:     user.Email,
		Name:      user.Name,
		Message:   msg.Message,
		Timestamp: msg.Timestamp,
	}
	if err := s.publisher.Publish(ctx, rabbitmq.RoutingSupportUrgent, notification); err != nil {
		log.Error("failed to publish urgent support message", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("urgent support message queued", slog.String("message_id", msg.ID))
	msg.SenderName = SenderNameUser
	return &msg, nil
}

// Respond сохраняет ответ поддержки от имени администратора adminUID и помечает
// исходное сообщение отвеченным.
func (s *SupportService) Respond(ctx context.Context, adminUID, messageID, userUID, response string) (*models.SupportMessage, error) {
	const op = "services.SupportService.Respond"
	response = strings.TrimSpace(response)
	if messageID == "" || userUID == "" || response == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrMissingFields)
	}

	admin, err := s.repo.GetUser(ctx, adminUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	now := s.now().UTC()
	reply := models.SupportMessage{
		ID:         uuid.NewString(),
		UserID:     userUID,
		Sender:     models.SenderSupport,
		SenderName: SenderNameSupport,
		Message:    response,
		Timestamp:  now,
		AdminEmail: admin.Email,
	}
	if err := s.repo.RespondToSupportMessage(ctx, messageID, reply, now); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("support reply stored", slog.String("op", op),
		slog.String("message_id", messageID), slog.String("admin_uid", adminUID))
	return &reply, nil
}

// AdminList возвращает все сообщения, новые первыми.
func (s *SupportService) AdminList(ctx context.Context, limit, offset int) ([]models.SupportMessage, error) {
	const op = "services.SupportService.AdminList"
	if limit <= 0 {
		limit = defaultAdminPageSize
	}
	if offset < 0 {
		offset = 0
	}
	messages, err := s.repo.ListAllSupportMessages(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return messages, nil
}
