// Package notification отправляет письма по событиям из очереди уведомлений.
package notification

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/magabrotheeeer/mype-assistant/internal/lib/sl"
	"github.com/magabrotheeeer/mype-assistant/internal/lib/smtp"
	"github.com/magabrotheeeer/mype-assistant/internal/services/payment"
)

// Service потребляет события premium.activated и шлет приветственные письма.
type Service struct {
	transport smtp.TransportInterface
	log       *slog.Logger
}

// New создает новый экземпляр Service.
func New(transport smtp.TransportInterface, log *slog.Logger) *Service {
	return &Service{
		transport: transport,
		log:       log,
	}
}

// SendPremiumActivated разбирает событие активации премиума из очереди
// и отправляет пользователю письмо с условиями доступа.
func (s *Service) SendPremiumActivated(body []byte) error {
	const op = "notification.SendPremiumActivated"

	var event payment.PremiumActivatedEvent
	if err := json.Unmarshal(body, &event); err != nil {
		s.log.Error("failed to unmarshal premium event", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	name := event.Name
	if name == "" {
		name = event.Email
	}
	subject := "¡Tu acceso Premium está activo!"
	bodyText := fmt.Sprintf(`Hola, %s.

Tu pago de %.2f %s fue confirmado y tu acceso Premium al Asistente AI-MYPE ya está activo.

Hasta el %s puedes hacer consultas ilimitadas al asistente.

¡Gracias por formalizar tu negocio con nosotros!`,
		name, event.Amount, event.Currency, event.ExpiresAt.Format("02/01/2006"))

	return s.sendEmail([]string{event.Email}, subject, bodyText)
}

func (s *Service) sendEmail(to []string, subject, bodyText string) error {
	msg := strings.Join([]string{
		"From: " + s.transport.GetSMTPUser(),
		"To: " + strings.Join(to, ";"),
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		bodyText,
	}, "\r\n")

	client, err := s.transport.Connect()
	if err != nil {
		s.log.Error("failed to connect to SMTP server", sl.Err(err))
		return err
	}
	defer client.Close()

	if err := client.Mail(s.transport.GetSMTPUser()); err != nil {
		s.log.Error("failed to set MAIL FROM", "from", s.transport.GetSMTPUser(), "error", sl.Err(err))
		return err
	}
	for _, addr := range to {
		if err := client.Rcpt(addr); err != nil {
			s.log.Error("failed to set RCPT TO", "recipient", addr, "error", sl.Err(err))
			return err
		}
	}

	wc, err := client.Data()
	if err != nil {
		s.log.Error("failed to get data writer", sl.Err(err))
		return err
	}
	if _, err = wc.Write([]byte(msg)); err != nil {
		s.log.Error("failed to write email body", sl.Err(err))
		return err
	}
	if err = wc.Close(); err != nil {
		s.log.Error("failed to close data writer", sl.Err(err))
		return err
	}
	if err = client.Quit(); err != nil {
		s.log.Error("failed to quit SMTP client", sl.Err(err))
		return err
	}

	s.log.Info("email sent successfully", "to", to)
	return nil
}
