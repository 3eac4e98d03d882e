// Package paymentwebhook реализует HTTP-обработчик уведомлений платежного шлюза.
//
// Вебхук проверяется по HMAC-подписи и проходит через те же переходы машины
// состояний, что и пользовательские операции. Повтор уже примененного события
// подтверждается кодом 200, чтобы шлюз прекратил ретраи.
package paymentwebhook

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/mype-assistant/internal/http/response"
	"github.com/magabrotheeeer/mype-assistant/internal/lib/sl"
	"github.com/magabrotheeeer/mype-assistant/internal/models"
	"github.com/magabrotheeeer/mype-assistant/internal/services/payment"
)

// Payload — уведомление шлюза об изменении статуса платежа.
type Payload struct {
	Event  string `json:"event"`
	Object struct {
		ID            string `json:"id"` // ID ордера
		Status        string `json:"status"`
		TransactionID string `json:"transaction_id"`
	} `json:"object"`
}

// Service описывает интерфейс применения события шлюза.
type Service interface {
	ProcessWebhookEvent(ctx context.Context, event payment.WebhookEvent) error
}

// Handler обрабатывает уведомления платежного шлюза.
type Handler struct {
	log           *slog.Logger
	service       Service
	webhookSecret string // Секрет для проверки подписи
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service, secret string) *Handler {
	return &Handler{
		log:           log,
		service:       service,
		webhookSecret: secret,
	}
}

// verifySignature проверяет HMAC-подпись тела запроса (X-Api-Signature).
func (h *Handler) verifySignature(body []byte, signature string) bool {
	mac := hmac.New(sha256.New, []byte(h.webhookSecret))
	mac.Write(body)
	expectedSig := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expectedSig), []byte(signature))
}

// ServeHTTP godoc
// @Summary Вебхук платежного шлюза
// @Description Применяет событие шлюза к платежу после проверки HMAC-подписи.
// @Tags Payments
// @Accept  json
// @Produce  json
// @Param X-Api-Signature header string true "HMAC-SHA256 подпись тела запроса"
// @Param request body Payload true "Событие шлюза"
// @Success 200 {object} response.Response "Событие применено"
// @Failure 400 {object} response.ErrorResponse "Некорректное тело запроса"
// @Failure 401 {object} response.ErrorResponse "Неверная подпись"
// @Failure 404 {object} response.ErrorResponse "Ордер не найден"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /payments/webhook [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.webhook"
	log := h.log.With(slog.String("op", op))

	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Error("failed to read webhook body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	defer r.Body.Close()

	signature := r.Header.Get("X-Api-Signature")
	if signature == "" || !h.verifySignature(body, signature) {
		log.Error("invalid or missing webhook signature")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("invalid webhook signature"))
		return
	}

	var payload Payload
	if err := json.Unmarshal(body, &payload); err != nil {
		log.Error("failed to unmarshal webhook payload", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	err = h.service.ProcessWebhookEvent(r.Context(), payment.WebhookEvent{
		Event:         payload.Event,
		OrderID:       payload.Object.ID,
		TransactionID: payload.Object.TransactionID,
	})
	if err != nil {
		switch {
		case errors.Is(err, models.ErrAlreadyProcessed), errors.Is(err, models.ErrInvalidTransition):
			// Событие уже применено другим путем, ретрай не нужен.
			log.Info("webhook event already applied",
				slog.String("event", payload.Event),
				slog.String("payment_id", payload.Object.ID))
			render.JSON(w, r, response.OK())
		case errors.Is(err, models.ErrOrderNotFound):
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("payment order not found"))
		default:
			log.Error("failed to process webhook event", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not process webhook event"))
		}
		return
	}

	log.Info("webhook processed successfully",
		slog.String("event", payload.Event),
		slog.String("payment_id", payload.Object.ID))
	render.JSON(w, r, response.OK())
}
