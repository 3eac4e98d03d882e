// Package sender собирает сервис отправки email-уведомлений из очереди.
package sender

import (
	"context"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/mype-assistant/internal/config"
	"github.com/magabrotheeeer/mype-assistant/internal/lib/smtp"
	"github.com/magabrotheeeer/mype-assistant/internal/rabbitmq"
	notificationservice "github.com/magabrotheeeer/mype-assistant/internal/services/notification"
)

type App struct {
	conn                *amqp.Connection
	ch                  *amqp.Channel
	notificationService *notificationservice.Service
	logger              *slog.Logger
}

func New(_ context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	conn, err := rabbitmq.Connect(cfg.RabbitAddr, cfg.Retries, cfg.RetryDelay)
	if err != nil {
		return nil, err
	}

	queues := rabbitmq.GetNotificationQueues()
	ch, err := rabbitmq.SetupChannel(conn, queues)
	if err != nil {
		conn.Close()
		return nil, err
	}

	newTransport := smtp.NewTransport(cfg, logger)
	notificationService := notificationservice.New(newTransport, logger)

	return &App{
		conn:                conn,
		ch:                  ch,
		notificationService: notificationService,
		logger:              logger,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	err := rabbitmq.ConsumerMessage(ctx, a.ch, "notifications.premium", a.notificationService.SendPremiumActivated)
	if err != nil {
		a.logger.Error("failed to start notifications.premium consumer", slog.Any("err", err))
		return err
	}

	<-ctx.Done()
	a.logger.Info("sender service shutting down gracefully")

	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", slog.Any("err", err))
	}

	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", slog.Any("err", err))
	}

	return nil
}
