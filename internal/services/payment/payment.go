// Package payment реализует машину состояний платежа за премиум-доступ.
// Платеж создается в PENDING и переходит ровно в один терминальный статус:
// COMPLETED (с активацией премиума в той же транзакции), CANCELLED или FAILED.
package payment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/mype-assistant/internal/config"
	"github.com/magabrotheeeer/mype-assistant/internal/lib/sl"
	"github.com/magabrotheeeer/mype-assistant/internal/models"
	"github.com/magabrotheeeer/mype-assistant/internal/paymentgateway"
)

// PaymentRepository описывает контракт хранилища платежей.
type PaymentRepository interface {
	CreatePayment(ctx context.Context, userUID string, amount float64, currency string) (string, error)
	GetPayment(ctx context.Context, paymentID string) (*models.Payment, bool, error)
	ListPaymentsByUser(ctx context.Context, userUID string) ([]*models.Payment, error)
	// CompletePaymentAndActivatePremium — единая транзакция: статус, transaction_id
	// и премиум владельца меняются вместе или не меняются вовсе.
	CompletePaymentAndActivatePremium(ctx context.Context, paymentID, transactionID string, premiumExpiresAt time.Time) (bool, error)
	FinishPendingPayment(ctx context.Context, paymentID, status string) (bool, error)
}

// UserRepository описывает методы работы с пользователями, нужные платежам.
type UserRepository interface {
	GetUser(ctx context.Context, userUID string) (*models.User, error)
}

// Normalizer приводит премиум-статус пользователя к актуальному состоянию.
type Normalizer interface {
	Normalize(ctx context.Context, user *models.User) error
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
	Invalidate(key string) error
}

// EventPublisher публикует доменные события для сервиса уведомлений.
type EventPublisher interface {
	Publish(routingKey string, message any) error
}

// PremiumActivatedEvent — событие активации премиума, уходит в очередь уведомлений.
type PremiumActivatedEvent struct {
	UserUID   string    `json:"user_uid"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Amount    float64   `json:"amount"`
	Currency  string    `json:"currency"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Service реализует переходы машины состояний платежа.
type Service struct {
	repo       PaymentRepository
	users      UserRepository
	normalizer Normalizer
	gateway    paymentgateway.Gateway
	cache      Cache
	events     EventPublisher
	cfg        config.Entitlement
	gwTimeout  time.Duration
	log        *slog.Logger
	now        func() time.Time
}

// New создает новый экземпляр Service. events может быть nil — тогда события
// активации не публикуются.
func New(repo PaymentRepository, users UserRepository, normalizer Normalizer,
	gateway paymentgateway.Gateway, cache Cache, events EventPublisher,
	cfg config.Entitlement, gwTimeout time.Duration, log *slog.Logger) *Service {
	return &Service{
		repo:       repo,
		users:      users,
		normalizer: normalizer,
		gateway:    gateway,
		cache:      cache,
		events:     events,
		cfg:        cfg,
		gwTimeout:  gwTimeout,
		log:        log,
		now:        time.Now,
	}
}

// CreateOrder создает платеж в статусе PENDING. Для действующего премиум-
// пользователя (после нормализации) возвращает models.ErrAlreadyPremium.
// Нулевые amount и currency заменяются значениями из конфига.
func (s *Service) CreateOrder(ctx context.Context, userUID string, amount float64, currency string) (*models.Payment, error) {
	const op = "payment.CreateOrder"

	user, err := s.users.GetUser(ctx, userUID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrUserNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.normalizer.Normalize(ctx, user); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if user.IsPremium {
		return nil, models.ErrAlreadyPremium
	}

	if amount <= 0 {
		amount = s.cfg.PremiumPrice
	}
	if currency == "" {
		currency = s.cfg.PremiumCurrency
	}

	id, err := s.repo.CreatePayment(ctx, userUID, amount, currency)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("payment order created",
		slog.String("payment_id", id),
		slog.String("user_uid", userUID))

	return &models.Payment{
		ID:       id,
		UserUID:  userUID,
		Amount:   amount,
		Currency: currency,
		Status:   models.PaymentStatusPending,
	}, nil
}

// ProcessPayment обращается к платежному шлюзу за списанием. Вызов шлюза
// ограничен таймаутом; отказ или таймаут переводят платеж в FAILED и
// возвращаются результатом, а не ошибкой. Успех списания не завершает
// платеж: терминальный переход делает только ConfirmPayment.
func (s *Service) ProcessPayment(ctx context.Context, orderID, method string) (*models.ProcessResult, error) {
	const op = "payment.ProcessPayment"

	p, found, err := s.repo.GetPayment(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !found {
		return nil, models.ErrOrderNotFound
	}
	if p.IsTerminal() {
		return nil, models.ErrAlreadyProcessed
	}

	user, err := s.users.GetUser(ctx, p.UserUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	gwCtx, cancel := context.WithTimeout(ctx, s.gwTimeout)
	defer cancel()

	resp, err := s.gateway.Charge(gwCtx, paymentgateway.ChargeRequest{
		OrderID:       p.ID,
		Amount:        p.Amount,
		Currency:      p.Currency,
		PaymentMethod: method,
		Description:   "Acceso Premium - Asistente AI-MYPE",
		CustomerEmail: user.Email,
	})
	if err != nil || !resp.Succeeded() {
		if err != nil {
			s.log.Error("gateway charge failed", sl.Err(err), slog.String("payment_id", p.ID))
		} else {
			s.log.Info("gateway declined charge",
				slog.String("payment_id", p.ID),
				slog.String("message", resp.Message))
		}
		if _, ferr := s.repo.FinishPendingPayment(ctx, p.ID, models.PaymentStatusFailed); ferr != nil {
			return nil, fmt.Errorf("%s: %w", op, ferr)
		}
		s.invalidateCache(p.ID)
		return &models.ProcessResult{
			Success: false,
			Status:  models.PaymentStatusFailed,
			Message: "payment processing failed",
		}, nil
	}

	s.log.Info("gateway charge accepted",
		slog.String("payment_id", p.ID),
		slog.String("transaction_id", resp.TransactionID))
	return &models.ProcessResult{
		Success:       true,
		TransactionID: resp.TransactionID,
		Status:        models.PaymentStatusPending,
		Message:       "charge accepted, awaiting confirmation",
	}, nil
}

// ConfirmPayment завершает платеж: статус COMPLETED, transaction_id и
// активация премиума применяются одной транзакцией хранилища. Повторное
// подтверждение дает models.ErrAlreadyProcessed.
func (s *Service) ConfirmPayment(ctx context.Context, orderID, transactionID string) (*models.Payment, error) {
	const op = "payment.ConfirmPayment"

	expiresAt := s.now().AddDate(0, 0, s.cfg.PremiumValidityDays)
	applied, err := s.repo.CompletePaymentAndActivatePremium(ctx, orderID, transactionID, expiresAt)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !applied {
		_, found, err := s.repo.GetPayment(ctx, orderID)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if !found {
			return nil, models.ErrOrderNotFound
		}
		return nil, models.ErrAlreadyProcessed
	}
	s.invalidateCache(orderID)

	p, _, err := s.repo.GetPayment(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("payment confirmed, premium activated",
		slog.String("payment_id", orderID),
		slog.String("user_uid", p.UserUID))

	s.publishPremiumActivated(ctx, p, expiresAt)
	return p, nil
}

// CancelPayment отменяет платеж. Переход легален только из PENDING, иначе
// возвращается models.ErrInvalidTransition.
func (s *Service) CancelPayment(ctx context.Context, orderID string) (*models.Payment, error) {
	const op = "payment.CancelPayment"

	applied, err := s.repo.FinishPendingPayment(ctx, orderID, models.PaymentStatusCancelled)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !applied {
		_, found, err := s.repo.GetPayment(ctx, orderID)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if !found {
			return nil, models.ErrOrderNotFound
		}
		return nil, models.ErrInvalidTransition
	}
	s.invalidateCache(orderID)

	p, _, err := s.repo.GetPayment(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("payment cancelled", slog.String("payment_id", orderID))
	return p, nil
}

// ListUserPayments возвращает историю платежей пользователя.
func (s *Service) ListUserPayments(ctx context.Context, userUID string) ([]*models.Payment, error) {
	return s.repo.ListPaymentsByUser(ctx, userUID)
}

// GetPaymentStatus возвращает платеж по ID, используя кеш для терминальных
// статусов: они больше не меняются, PENDING не кешируется.
func (s *Service) GetPaymentStatus(ctx context.Context, orderID string) (*models.Payment, error) {
	const op = "payment.GetPaymentStatus"

	cacheKey := paymentCacheKey(orderID)
	var cached *models.Payment
	found, err := s.cache.Get(cacheKey, &cached)
	if err != nil {
		s.log.Warn("failed to read payment from cache", slog.String("key", cacheKey), sl.Err(err))
	}
	if found && cached != nil {
		return cached, nil
	}

	p, found, err := s.repo.GetPayment(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !found {
		return nil, models.ErrOrderNotFound
	}
	if p.IsTerminal() {
		if err := s.cache.Set(cacheKey, p, time.Hour); err != nil {
			s.log.Warn("failed to cache payment", slog.String("key", cacheKey), sl.Err(err))
		}
	}
	return p, nil
}

func (s *Service) publishPremiumActivated(ctx context.Context, p *models.Payment, expiresAt time.Time) {
	if s.events == nil {
		return
	}
	user, err := s.users.GetUser(ctx, p.UserUID)
	if err != nil {
		s.log.Warn("failed to load user for premium event", sl.Err(err))
		return
	}
	event := PremiumActivatedEvent{
		UserUID:   user.UID,
		Email:     user.Email,
		Name:      user.Name,
		Amount:    p.Amount,
		Currency:  p.Currency,
		ExpiresAt: expiresAt,
	}
	if err := s.events.Publish("premium.activated", event); err != nil {
		s.log.Warn("failed to publish premium event", sl.Err(err))
	}
}

func (s *Service) invalidateCache(orderID string) {
	if err := s.cache.Invalidate(paymentCacheKey(orderID)); err != nil {
		s.log.Warn("failed to invalidate payment cache", sl.Err(err))
	}
}

func paymentCacheKey(orderID string) string {
	return fmt.Sprintf("payment:%s", orderID)
}
