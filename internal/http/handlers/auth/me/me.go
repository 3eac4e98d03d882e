// Package me реализует HTTP-обработчик профиля текущего пользователя.
package me

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/mype-assistant/internal/http/middlewarectx"
	"github.com/magabrotheeeer/mype-assistant/internal/http/response"
	"github.com/magabrotheeeer/mype-assistant/internal/models"
)

// Handler обрабатывает HTTP-запросы профиля.
type Handler struct {
	log   *slog.Logger
	quota Quota
}

// Quota описывает доступ к лимиту бесплатных запросов.
type Quota interface {
	Limit() int
	Remaining(user *models.User) int
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, quota Quota) *Handler {
	return &Handler{log: log, quota: quota}
}

// ServeHTTP godoc
// @Summary Профиль текущего пользователя
// @Description Возвращает профиль с состоянием премиума и остатком бесплатных запросов.
// @Tags Auth
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} map[string]any "Профиль пользователя"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Router /me [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.me"
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

	render.JSON(w, r, response.OKWithData(map[string]any{
		"uid":                    user.UID,
		"email":                  user.Email,
		"name":                   user.Name,
		"is_premium":             user.IsPremium,
		"premium_expires_at":     user.PremiumExpiresAt,
		"free_queries_used":      user.FreeQueriesUsed,
		"free_queries_limit":     h.quota.Limit(),
		"free_queries_remaining": h.quota.Remaining(user),
	}))
}
