// Package services отправляет письма по сообщениям из очередей уведомлений.
package services

import (
	"encoding/json"
	"fmt"
	"html"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/astraweather/internal/lib/sl"
	"github.com/magabrotheeeer/astraweather/internal/models"
)

// Mailer отправляет одно письмо.
type Mailer interface {
	Send(to, subject, body string) error
}

// SenderService превращает уведомления в письма.
type SenderService struct {
	mailer       Mailer
	supportEmail string
	log          *slog.Logger
}

// NewSenderService создает новый экземпляр SenderService. Срочные обращения
// уходят на supportEmail.
func NewSenderService(log *slog.Logger, mailer Mailer, supportEmail string) *SenderService {
	return &SenderService{
		mailer:       mailer,
		supportEmail: supportEmail,
		log:          log,
	}
}

// SendUrgentSupport пересылает срочное обращение в поддержку.
// Нечитаемое сообщение логируется и подтверждается, чтобы не зациклить очередь.
func (s *SenderService) SendUrgentSupport(body []byte) error {
	const op = "services.SenderService.SendUrgentSupport"
	var message models.UrgentSupportNotification
	if err := json.Unmarshal(body, &message); err != nil {
		s.log.Error("failed to unmarshal message body", slog.String("op", op), sl.Err(err))
		return nil
	}

	subject := fmt.Sprintf("[URGENT] Support request from %s", message.Name)
	bodyText := fmt.Sprintf(`<p><b>User:</b> %s &lt;%s&gt;</p>
<p><b>User ID:</b> %s</p>
<p><b>Sent at:</b> %s</p>
<p>%s</p>`,
		html.EscapeString(message.Name),
		html.EscapeString(message.Email),
		html.EscapeString(message.UserID),
		message.Timestamp.UTC().Format(time.RFC1123),
		html.EscapeString(message.Message),
	)

	if err := s.mailer.Send(s.supportEmail, subject, bodyText); err != nil {
		s.log.Error("failed to send urgent support email", slog.String("op", op), sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("email sent successfully", slog.String("op", op), slog.String("user_uid", message.UserID))
	return nil
}

// SendSubscriptionExpired сообщает пользователю об окончании премиум-подписки.
func (s *SenderService) SendSubscriptionExpired(body []byte) error {
	const op = "services.SenderService.SendSubscriptionExpired"
	var message models.SubscriptionExpiredNotification
	if err := json.Unmarshal(body, &message); err != nil {
		s.log.Error("failed to unmarshal message body", slog.String("op", op), sl.Err(err))
		return nil
	}

	ended := "recently"
	if message.SubscriptionEnd != nil {
		ended = "on " + message.SubscriptionEnd.UTC().Format("January 2, 2006")
	}
	subject := "Your AstraWeather Premium subscription has ended"
	bodyText := fmt.Sprintf(`<p>Hello, %s!</p>
<p>Your AstraWeather Premium subscription ended %s.</p>
<p>Renew it any time from the pricing page to get personalized insights and priority support back.</p>`,
		html.EscapeString(message.Name), ended)

	if err := s.mailer.Send(message.Email, subject, bodyText); err != nil {
		s.log.Error("failed to send expiry email", slog.String("op", op), sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("email sent successfully", slog.String("op", op), slog.String("user_uid", message.UID))
	return nil
}
