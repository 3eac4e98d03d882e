// Package ask реализует HTTP-обработчик вопросов к ассистенту.
//
// Запрос тарифицируется: бесплатный пользователь тратит один запрос из лимита,
// при исчерпании квоты возвращается 403 с условиями перехода на премиум.
package ask

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/mype-assistant/internal/config"
	"github.com/magabrotheeeer/mype-assistant/internal/http/middlewarectx"
	"github.com/magabrotheeeer/mype-assistant/internal/http/response"
	"github.com/magabrotheeeer/mype-assistant/internal/lib/sl"
	"github.com/magabrotheeeer/mype-assistant/internal/models"
	"github.com/magabrotheeeer/mype-assistant/internal/services/assistant"
)

// Request — структура входных данных вопроса.
type Request struct {
	Message string `json:"message" validate:"required,max=2000"`
}

// Handler обрабатывает HTTP-запросы к ассистенту.
type Handler struct {
	log      *slog.Logger
	service  Service
	cfg      config.Entitlement
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики ассистента.
type Service interface {
	Ask(ctx context.Context, user *models.User, message string) (*assistant.Answer, error)
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service, cfg config.Entitlement) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		cfg:      cfg,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Вопрос к ассистенту
// @Description Отправляет сообщение ассистенту. Для бесплатного пользователя списывает один запрос из лимита.
// @Tags Assistant
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param request body Request true "Сообщение ассистенту"
// @Success 200 {object} map[string]any "Ответ ассистента"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.Response "Лимит бесплатных запросов исчерпан"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /assistant/ask [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.assistant.ask"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

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

	user, ok := middlewarectx.UserFromContext(r.Context())
	if !ok {
		log.Error("user not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	answer, err := h.service.Ask(r.Context(), user, req.Message)
	if err != nil {
		if errors.Is(err, models.ErrQuotaExceeded) {
			log.Info("free query limit exceeded", slog.String("user_uid", user.UID))
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Response{
				Status: response.StatusError,
				Error:  "free query limit exceeded",
				Data: map[string]any{
					"free_queries_used":  user.FreeQueriesUsed,
					"free_queries_limit": h.cfg.FreeQueriesLimit,
					"premium_price":      h.cfg.PremiumPrice,
					"premium_currency":   h.cfg.PremiumCurrency,
				},
			})
			return
		}
		log.Error("failed to answer", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not process message"))
		return
	}

	log.Info("assistant answered", slog.String("user_uid", user.UID))
	render.JSON(w, r, response.OKWithData(answer))
}
