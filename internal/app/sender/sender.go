// Package sender собирает процесс, который читает очереди уведомлений и шлёт письма.
package sender

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/astraweather/internal/config"
	"github.com/magabrotheeeer/astraweather/internal/lib/sl"
	"github.com/magabrotheeeer/astraweather/internal/lib/smtp"
	"github.com/magabrotheeeer/astraweather/internal/rabbitmq"
	senderservice "github.com/magabrotheeeer/astraweather/internal/services/sender"
)

// App представляет приложение отправки писем.
type App struct {
	conn          *amqp.Connection
	ch            *amqp.Channel
	senderService *senderservice.SenderService
	logger        *slog.Logger
}

// New подключается к брокеру и настраивает SMTP.
func New(_ context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	conn, err := rabbitmq.Connect(cfg.RabbitMQ.URL, cfg.RabbitMQ.MaxRetries, cfg.RabbitMQ.RetryDelay)
	if err != nil {
		return nil, fmt.Errorf("failed to connect RabbitMQ: %w", err)
	}

	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetNotificationQueues())
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to setup RabbitMQ channel: %w", err)
	}

	if cfg.Support.Email == "" {
		logger.Warn("support.email is empty, urgent support messages will be requeued")
	}
	senderService := senderservice.NewSenderService(logger, smtp.NewMailer(cfg.SMTP), cfg.Support.Email)

	return &App{
		conn:          conn,
		ch:            ch,
		senderService: senderService,
		logger:        logger,
	}, nil
}

// Run запускает потребителей и блокируется до отмены ctx.
func (a *App) Run(ctx context.Context) error {
	err := rabbitmq.ConsumerMessage(ctx, a.logger, a.ch, rabbitmq.QueueSupportUrgent, a.senderService.SendUrgentSupport)
	if err != nil {
		a.logger.Error("failed to start support urgent consumer", sl.Err(err))
		return err
	}

	err = rabbitmq.ConsumerMessage(ctx, a.logger, a.ch, rabbitmq.QueueSubscriptionExpired, a.senderService.SendSubscriptionExpired)
	if err != nil {
		a.logger.Error("failed to start subscription expired consumer", sl.Err(err))
		return err
	}

	<-ctx.Done()
	a.logger.Info("sender service shutting down gracefully")

	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", sl.Err(err))
	}
	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", sl.Err(err))
	}
	return nil
}
