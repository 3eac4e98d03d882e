// Package paymentstatus реализует HTTP-обработчик статуса платежа.
package paymentstatus

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

// Handler обрабатывает HTTP-запросы статуса платежа.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс выборки платежа по ID.
type Service interface {
	GetPaymentStatus(ctx context.Context, orderID string) (*models.Payment, error)
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Статус платежа
// @Description Возвращает платеж по ID. Терминальные статусы отдаются из кеша.
// @Tags Payments
// @Produce  json
// @Security ApiKeyAuth
// @Param id path string true "ID платежа"
// @Success 200 {object} map[string]any "Платеж"
// @Failure 404 {object} response.ErrorResponse "Ордер не найден"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /payments/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.status"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	orderID := chi.URLParam(r, "id")

	p, err := h.service.GetPaymentStatus(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, models.ErrOrderNotFound) {
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("payment order not found"))
			return
		}
		log.Error("failed to get payment status", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not get payment status"))
		return
	}

	render.JSON(w, r, response.OKWithData(p))
}
