package payment

import (
	"context"
	"fmt"
	"log/slog"
)

// Поддерживаемые типы событий платежного шлюза.
const (
	WebhookEventSucceeded = "payment.succeeded"
	WebhookEventCanceled  = "payment.canceled"
)

// WebhookEvent — уведомление платежного шлюза об изменении статуса платежа.
type WebhookEvent struct {
	Event         string
	OrderID       string
	TransactionID string
}

// ProcessWebhookEvent применяет событие шлюза через те же переходы машины
// состояний, что и пользовательские операции: вебхук не получает обходного
// пути мимо проверок PENDING.
func (s *Service) ProcessWebhookEvent(ctx context.Context, event WebhookEvent) error {
	const op = "payment.ProcessWebhookEvent"

	switch event.Event {
	case WebhookEventSucceeded:
		if _, err := s.ConfirmPayment(ctx, event.OrderID, event.TransactionID); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	case WebhookEventCanceled:
		if _, err := s.CancelPayment(ctx, event.OrderID); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	default:
		s.log.Info("ignoring unknown webhook event", slog.String("event", event.Event))
	}
	return nil
}
