// Package paymentcreate реализует HTTP-обработчик создания платежного ордера.
//
// Сумма и валюта опциональны: при их отсутствии берутся значения из конфига.
// Для действующего премиум-пользователя создание ордера отклоняется.
package paymentcreate

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/mype-assistant/internal/http/middlewarectx"
	"github.com/magabrotheeeer/mype-assistant/internal/http/response"
	"github.com/magabrotheeeer/mype-assistant/internal/lib/sl"
	"github.com/magabrotheeeer/mype-assistant/internal/models"
)

// Request — структура входных данных создания ордера. Оба поля опциональны.
type Request struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

// Handler обрабатывает HTTP-запросы на создание ордера.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики создания платежа.
type Service interface {
	CreateOrder(ctx context.Context, userUID string, amount float64, currency string) (*models.Payment, error)
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Создать платежный ордер
// @Description Создает платеж в статусе PENDING для оплаты премиум-доступа.
// @Tags Payments
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param request body Request false "Сумма и валюта, по умолчанию из конфигурации"
// @Success 200 {object} map[string]any "Созданный ордер"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 409 {object} response.ErrorResponse "Премиум уже активен"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /payments [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.create"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	user, ok := middlewarectx.UserFromContext(r.Context())
	if !ok {
		log.Error("user not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	p, err := h.service.CreateOrder(r.Context(), user.UID, req.Amount, req.Currency)
	if err != nil {
		if errors.Is(err, models.ErrAlreadyPremium) {
			log.Info("user already premium", slog.String("user_uid", user.UID))
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error("user already has premium access"))
			return
		}
		log.Error("failed to create order", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not create payment order"))
		return
	}

	log.Info("payment order created", slog.String("payment_id", p.ID))
	render.JSON(w, r, response.OKWithData(p))
}
