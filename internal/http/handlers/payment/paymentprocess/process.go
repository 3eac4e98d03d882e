// Package paymentprocess реализует HTTP-обработчик обращения к платежному шлюзу.
//
// Отказ шлюза не ошибка HTTP: платеж переходит в FAILED, а результат
// возвращается в теле ответа. Успешное списание оставляет платеж в PENDING
// до явного подтверждения.
package paymentprocess

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

// Request — структура входных данных обработки платежа.
type Request struct {
	PaymentMethod string `json:"payment_method" validate:"required"`
}

// Handler обрабатывает HTTP-запросы на списание.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс обращения к шлюзу.
type Service interface {
	ProcessPayment(ctx context.Context, orderID, method string) (*models.ProcessResult, error)
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
// @Summary Обработать платеж через шлюз
// @Description Запрашивает списание у платежного шлюза. Отказ или таймаут переводят платеж в FAILED.
// @Tags Payments
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param id path string true "ID платежа"
// @Param request body Request true "Платежный метод"
// @Success 200 {object} map[string]any "Результат обращения к шлюзу"
// @Failure 404 {object} response.ErrorResponse "Ордер не найден"
// @Failure 409 {object} response.ErrorResponse "Платеж уже обработан"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /payments/{id}/process [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.process"
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

	result, err := h.service.ProcessPayment(r.Context(), orderID, req.PaymentMethod)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrOrderNotFound):
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("payment order not found"))
		case errors.Is(err, models.ErrAlreadyProcessed):
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error("payment already processed"))
		default:
			log.Error("failed to process payment", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not process payment"))
		}
		return
	}

	log.Info("payment processed",
		slog.String("payment_id", orderID),
		slog.Bool("success", result.Success))
	render.JSON(w, r, response.OKWithData(result))
}
