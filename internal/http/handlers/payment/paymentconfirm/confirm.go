// Package paymentconfirm реализует HTTP-обработчик подтверждения платежа.
//
// Подтверждение завершает платеж и активирует премиум владельца одной
// транзакцией. Повторное подтверждение того же ордера отклоняется.
package paymentconfirm

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/mype-assistant/internal/http/response"
	"github.com/magabrotheeeer/mype-assistant/internal/lib/sl"
	"github.com/magabrotheeeer/mype-assistant/internal/models"
)

// Request — структура входных данных подтверждения.
type Request struct {
	TransactionID string `json:"transaction_id" validate:"required"`
}

// Handler обрабатывает HTTP-запросы на подтверждение платежа.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс подтверждения платежа.
type Service interface {
	ConfirmPayment(ctx context.Context, orderID, transactionID string) (*models.Payment, error)
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Подтвердить платеж
// @Description Переводит платеж в COMPLETED и активирует премиум-доступ владельца.
// @Tags Payments
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param id path string true "ID платежа"
// @Param request body Request true "Идентификатор транзакции шлюза"
// @Success 200 {object} map[string]any "Подтвержденный платеж"
// @Failure 404 {object} response.ErrorResponse "Ордер не найден"
// @Failure 409 {object} response.ErrorResponse "Платеж уже обработан"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /payments/{id}/confirm [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.confirm"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	orderID := chi.URLParam(r, "id")

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	p, err := h.service.ConfirmPayment(r.Context(), orderID, req.TransactionID)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrOrderNotFound):
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("payment order not found"))
		case errors.Is(err, models.ErrAlreadyProcessed):
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error("payment already processed"))
		default:
			log.Error("failed to confirm payment", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not confirm payment"))
		}
		return
	}

	log.Info("payment confirmed", slog.String("payment_id", p.ID))
	render.JSON(w, r, response.OKWithData(p))
}
