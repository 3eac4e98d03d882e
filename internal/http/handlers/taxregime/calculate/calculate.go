// Package calculate реализует HTTP-обработчик калькулятора налогового режима.
package calculate

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/mype-assistant/internal/http/response"
	"github.com/magabrotheeeer/mype-assistant/internal/lib/sl"
	"github.com/magabrotheeeer/mype-assistant/internal/models"
)

// Handler обрабатывает HTTP-запросы калькулятора.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс классификатора налоговых режимов.
type Service interface {
	Classify(monthlyIncome float64) (*models.TaxRegimeResult, error)
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
// @Summary Подбор налогового режима
// @Description Классифицирует месячный доход по налоговым режимам Перу и возвращает расчет платежа.
// @Tags TaxRegime
// @Accept  json
// @Produce  json
// @Param request body models.DummyIncome true "Месячный доход в солях"
// @Success 200 {object} map[string]any "Результат классификации"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 422 {object} response.ErrorResponse "Недопустимый доход"
// @Router /tax-regime/calculate [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.taxregime.calculate"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyIncome
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

	result, err := h.service.Classify(req.MonthlyIncome)
	if err != nil {
		if errors.Is(err, models.ErrInvalidIncome) {
			log.Info("invalid income", slog.Float64("monthly_income", req.MonthlyIncome))
			w.WriteHeader(http.StatusUnprocessableEntity)
			render.JSON(w, r, response.Error("income must be a finite positive number"))
			return
		}
		log.Error("failed to classify income", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not classify income"))
		return
	}

	log.Info("income classified", slog.String("regime", result.Regime))
	render.JSON(w, r, response.OKWithData(result))
}
