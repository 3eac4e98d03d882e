package mypeassistant

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/mype-assistant/internal/cache"
	"github.com/magabrotheeeer/mype-assistant/internal/config"
	"github.com/magabrotheeeer/mype-assistant/internal/lib/jwt"
	"github.com/magabrotheeeer/mype-assistant/internal/migrations"
	"github.com/magabrotheeeer/mype-assistant/internal/paymentgateway"
	"github.com/magabrotheeeer/mype-assistant/internal/rabbitmq"
	assistantservice "github.com/magabrotheeeer/mype-assistant/internal/services/assistant"
	paymentservice "github.com/magabrotheeeer/mype-assistant/internal/services/payment"
	quotaservice "github.com/magabrotheeeer/mype-assistant/internal/services/quota"
	sessionservice "github.com/magabrotheeeer/mype-assistant/internal/services/session"
	taxregimeservice "github.com/magabrotheeeer/mype-assistant/internal/services/taxregime"
	"github.com/magabrotheeeer/mype-assistant/internal/storage/repository"
)

// App собирает все зависимости основного HTTP-сервиса.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	amqp   *amqp.Connection
}

// New подключает хранилище, кэш и брокер, собирает сервисы и роутер.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	conn, err := rabbitmq.Connect(cfg.RabbitAddr, cfg.Retries, cfg.RetryDelay)
	if err != nil {
		return nil, err
	}
	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetNotificationQueues())
	if err != nil {
		conn.Close()
		return nil, err
	}
	publisher := &rabbitmq.Publisher{Ch: ch, Exchange: "notifications"}

	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)
	sessionService := sessionservice.New(db, db, jwtMaker)
	quotaService := quotaservice.New(db, sessionService, cfg.FreeQueriesLimit, logger)

	var gateway paymentgateway.Gateway
	if cfg.PaymentGateway.Mode == "live" {
		gateway = paymentgateway.NewClient(cfg.MerchantID, cfg.SecretKey, cfg.APIURL)
	} else {
		gateway = paymentgateway.NewSandbox(cfg.Env == "development")
	}
	paymentService := paymentservice.New(db, db, sessionService, gateway, cacheRedis,
		publisher, cfg.Entitlement, cfg.GatewayTimeout, logger)

	taxRegimeService := taxregimeservice.New(cfg.TaxRegimes)
	assistantService := assistantservice.New(assistantservice.NewMockAI(), quotaService, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, cfg, db,
		sessionService, quotaService, assistantService, paymentService, taxRegimeService)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
		amqp:   conn,
	}, nil
}

// Run запускает HTTP-сервер и останавливает его при отмене контекста.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.db.DB.Close()
		if closeErr := a.amqp.Close(); closeErr != nil {
			a.logger.Error("failed to close rabbitmq connection", slog.Any("err", closeErr))
		}
		return err
	}
}
