// Package mypeassistant предоставляет маршруты для основного приложения.
package mypeassistant

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/mype-assistant/internal/config"
	"github.com/magabrotheeeer/mype-assistant/internal/http/handlers/assistant/ask"
	"github.com/magabrotheeeer/mype-assistant/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/mype-assistant/internal/http/handlers/auth/logout"
	"github.com/magabrotheeeer/mype-assistant/internal/http/handlers/auth/me"
	"github.com/magabrotheeeer/mype-assistant/internal/http/handlers/auth/register"
	"github.com/magabrotheeeer/mype-assistant/internal/http/handlers/health"
	"github.com/magabrotheeeer/mype-assistant/internal/http/handlers/payment/paymentcancel"
	"github.com/magabrotheeeer/mype-assistant/internal/http/handlers/payment/paymentconfirm"
	"github.com/magabrotheeeer/mype-assistant/internal/http/handlers/payment/paymentcreate"
	"github.com/magabrotheeeer/mype-assistant/internal/http/handlers/payment/paymentlist"
	"github.com/magabrotheeeer/mype-assistant/internal/http/handlers/payment/paymentprocess"
	"github.com/magabrotheeeer/mype-assistant/internal/http/handlers/payment/paymentstatus"
	"github.com/magabrotheeeer/mype-assistant/internal/http/handlers/payment/paymentwebhook"
	"github.com/magabrotheeeer/mype-assistant/internal/http/handlers/taxregime/calculate"
	"github.com/magabrotheeeer/mype-assistant/internal/http/handlers/taxregime/info"
	"github.com/magabrotheeeer/mype-assistant/internal/http/middlewarectx"
	assistantservice "github.com/magabrotheeeer/mype-assistant/internal/services/assistant"
	paymentservice "github.com/magabrotheeeer/mype-assistant/internal/services/payment"
	quotaservice "github.com/magabrotheeeer/mype-assistant/internal/services/quota"
	sessionservice "github.com/magabrotheeeer/mype-assistant/internal/services/session"
	taxregimeservice "github.com/magabrotheeeer/mype-assistant/internal/services/taxregime"
	"github.com/magabrotheeeer/mype-assistant/internal/storage/repository"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, cfg *config.Config,
	db *repository.Storage,
	sessionService *sessionservice.Service,
	quotaService *quotaservice.Service,
	assistantService *assistantservice.Service,
	paymentService *paymentservice.Service,
	taxRegimeService *taxregimeservice.Service,
) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/register", register.New(logger, sessionService).ServeHTTP)
		r.Post("/login", login.New(logger, sessionService).ServeHTTP)
		r.Post("/tax-regime/calculate", calculate.New(logger, taxRegimeService).ServeHTTP)
		r.Get("/tax-regime/info", info.New(logger, taxRegimeService).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.AuthMiddleware(sessionService, logger))
			r.Use(middlewarectx.RateLimitMiddleware(cfg.RateLimit, cfg.RateBurst, logger))
			r.Post("/logout", logout.New(logger, sessionService).ServeHTTP)
			r.Get("/me", me.New(logger, quotaService).ServeHTTP)
			r.Post("/assistant/ask", ask.New(logger, assistantService, cfg.Entitlement).ServeHTTP)
			r.Post("/payments", paymentcreate.New(logger, paymentService).ServeHTTP)
			r.Get("/payments/list", paymentlist.New(logger, paymentService).ServeHTTP)
			r.Get("/payments/{id}", paymentstatus.New(logger, paymentService).ServeHTTP)
			r.Post("/payments/{id}/process", paymentprocess.New(logger, paymentService).ServeHTTP)
			r.Post("/payments/{id}/confirm", paymentconfirm.New(logger, paymentService).ServeHTTP)
			r.Post("/payments/{id}/cancel", paymentcancel.New(logger, paymentService).ServeHTTP)
		})

		// Webhook endpoint (без аутентификации)
		r.Post("/payments/webhook", paymentwebhook.New(logger, paymentService, cfg.WebhookSecret).ServeHTTP)
	})

	r.Get("/health", health.New(logger, db).ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
