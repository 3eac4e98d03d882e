// Package paymentcancel реализует HTTP-обработчик отмены платежа.
package paymentcancel

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/mype-assistant/internal/http/response"
	"github.com/magabrotheeeer/mype-assistant/internal/lib/sl"
	"github.com/magabrotheeeer/mype-assistant/internal/models"
)

// Handler обрабатывает HTTP-запросы на отмену платежа.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс отмены платежа.
type Service interface {
	CancelPayment(ctx context.Context, orderID string) (*models.Payment, error)
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Отменить платеж
// @Description Переводит платеж из PENDING в CANCELLED. Из терминального статуса отмена запрещена.
// @Tags Payments
// @Produce  json
// @Security ApiKeyAuth
// @Param id path string true "ID платежа"
// @Success 200 {object} map[string]any "Отмененный платеж"
// @Failure 404 {object} response.ErrorResponse "Ордер не найден"
// @Failure 409 {object} response.ErrorResponse "Недопустимый переход статуса"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /payments/{id}/cancel [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.cancel"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	orderID := chi.URLParam(r, "id")

	p, err := h.service.CancelPayment(r.Context(), orderID)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrOrderNotFound):
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("payment order not found"))
		case errors.Is(err, models.ErrInvalidTransition):
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error("illegal payment status transition"))
		default:
			log.Error("failed to cancel payment", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not cancel payment"))
		}
		return
	}

	log.Info("payment cancelled", slog.String("payment_id", p.ID))
	render.JSON(w, r, response.OKWithData(p))
}
