package payment_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/mype-assistant/internal/config"
	"github.com/magabrotheeeer/mype-assistant/internal/models"
	"github.com/magabrotheeeer/mype-assistant/internal/paymentgateway"
	"github.com/magabrotheeeer/mype-assistant/internal/services/payment"
)

// Мок для PaymentRepository
type PaymentRepoMock struct {
	mock.Mock
}

func (m *PaymentRepoMock) CreatePayment(ctx context.Context, userUID string, amount float64, currency string) (string, error) {
	args := m.Called(ctx, userUID, amount, currency)
	return args.String(0), args.Error(1)
}

func (m *PaymentRepoMock) GetPayment(ctx context.Context, paymentID string) (*models.Payment, bool, error) {
	args := m.Called(ctx, paymentID)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*models.Payment), args.Bool(1), args.Error(2)
}

func (m *PaymentRepoMock) ListPaymentsByUser(ctx context.Context, userUID string) ([]*models.Payment, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Payment), args.Error(1)
}

func (m *PaymentRepoMock) CompletePaymentAndActivatePremium(ctx context.Context, paymentID, transactionID string, premiumExpiresAt time.Time) (bool, error) {
	args := m.Called(ctx, paymentID, transactionID, premiumExpiresAt)
	return args.Bool(0), args.Error(1)
}

func (m *PaymentRepoMock) FinishPendingPayment(ctx context.Context, paymentID, status string) (bool, error) {
	args := m.Called(ctx, paymentID, status)
	return args.Bool(0), args.Error(1)
}

// Мок для UserRepository
type UserRepoMock struct {
	mock.Mock
}

func (m *UserRepoMock) GetUser(ctx context.Context, userUID string) (*models.User, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

// Мок для платежного шлюза
type GatewayMock struct {
	mock.Mock
}

func (m *GatewayMock) Charge(ctx context.Context, req paymentgateway.ChargeRequest) (*paymentgateway.ChargeResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paymentgateway.ChargeResponse), args.Error(1)
}

type noopNormalizer struct{}

func (noopNormalizer) Normalize(_ context.Context, _ *models.User) error { return nil }

// cacheStub — кеш без хранения, чтобы тесты били только в репозиторий.
type cacheStub struct{}

func (cacheStub) Get(_ string, _ any) (bool, error)          { return false, nil }
func (cacheStub) Set(_ string, _ any, _ time.Duration) error { return nil }
func (cacheStub) Invalidate(_ string) error                  { return nil }

type eventsRecorder struct {
	published []string
}

func (e *eventsRecorder) Publish(routingKey string, _ any) error {
	e.published = append(e.published, routingKey)
	return nil
}

func testConfig() config.Entitlement {
	return config.Entitlement{
		FreeQueriesLimit:    5,
		PremiumPrice:        15.00,
		PremiumCurrency:     "PEN",
		PremiumValidityDays: 30,
	}
}

func newService(repo *PaymentRepoMock, users *UserRepoMock, gw *GatewayMock, events payment.EventPublisher) *payment.Service {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return payment.New(repo, users, noopNormalizer{}, gw, cacheStub{}, events,
		testConfig(), 5*time.Second, log)
}

func pendingPayment() *models.Payment {
	return &models.Payment{
		ID:       "order-1",
		UserUID:  "uid-1",
		Amount:   15.00,
		Currency: "PEN",
		Status:   models.PaymentStatusPending,
	}
}

func TestPaymentService_CreateOrder(t *testing.T) {
	future := time.Now().Add(time.Hour)

	tests := []struct {
		name       string
		setupMocks func(r *PaymentRepoMock, u *UserRepoMock)
		wantErr    error
	}{
		{
			name: "creates pending order with config defaults",
			setupMocks: func(r *PaymentRepoMock, u *UserRepoMock) {
				u.On("GetUser", mock.Anything, "uid-1").Return(&models.User{UID: "uid-1"}, nil).Once()
				r.On("CreatePayment", mock.Anything, "uid-1", 15.00, "PEN").Return("order-1", nil).Once()
			},
		},
		{
			name: "already premium",
			setupMocks: func(_ *PaymentRepoMock, u *UserRepoMock) {
				u.On("GetUser", mock.Anything, "uid-1").Return(&models.User{
					UID:              "uid-1",
					IsPremium:        true,
					PremiumExpiresAt: &future,
				}, nil).Once()
			},
			wantErr: models.ErrAlreadyPremium,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(PaymentRepoMock)
			users := new(UserRepoMock)
			svc := newService(repo, users, new(GatewayMock), nil)

			tt.setupMocks(repo, users)

			p, err := svc.CreateOrder(context.Background(), "uid-1", 0, "")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, models.PaymentStatusPending, p.Status)
				assert.Equal(t, 15.00, p.Amount)
				assert.Equal(t, "PEN", p.Currency)
			}

			repo.AssertExpectations(t)
			users.AssertExpectations(t)
		})
	}
}

func TestPaymentService_ProcessPayment(t *testing.T) {
	tests := []struct {
		name        string
		setupMocks  func(r *PaymentRepoMock, u *UserRepoMock, g *GatewayMock)
		wantErr     error
		wantSuccess bool
		wantStatus  string
	}{
		{
			name: "order not found",
			setupMocks: func(r *PaymentRepoMock, _ *UserRepoMock, _ *GatewayMock) {
				r.On("GetPayment", mock.Anything, "order-1").Return(nil, false, nil).Once()
			},
			wantErr: models.ErrOrderNotFound,
		},
		{
			name: "already processed",
			setupMocks: func(r *PaymentRepoMock, _ *UserRepoMock, _ *GatewayMock) {
				done := pendingPayment()
				done.Status = models.PaymentStatusCompleted
				r.On("GetPayment", mock.Anything, "order-1").Return(done, true, nil).Once()
			},
			wantErr: models.ErrAlreadyProcessed,
		},
		{
			name: "gateway decline marks order failed",
			setupMocks: func(r *PaymentRepoMock, u *UserRepoMock, g *GatewayMock) {
				r.On("GetPayment", mock.Anything, "order-1").Return(pendingPayment(), true, nil).Once()
				u.On("GetUser", mock.Anything, "uid-1").Return(&models.User{UID: "uid-1", Email: "maria@example.com"}, nil).Once()
				g.On("Charge", mock.Anything, mock.Anything).Return(&paymentgateway.ChargeResponse{
					Status:  "failed",
					Message: "card declined",
				}, nil).Once()
				r.On("FinishPendingPayment", mock.Anything, "order-1", models.PaymentStatusFailed).Return(true, nil).Once()
			},
			wantSuccess: false,
			wantStatus:  models.PaymentStatusFailed,
		},
		{
			name: "gateway timeout marks order failed",
			setupMocks: func(r *PaymentRepoMock, u *UserRepoMock, g *GatewayMock) {
				r.On("GetPayment", mock.Anything, "order-1").Return(pendingPayment(), true, nil).Once()
				u.On("GetUser", mock.Anything, "uid-1").Return(&models.User{UID: "uid-1", Email: "maria@example.com"}, nil).Once()
				g.On("Charge", mock.Anything, mock.Anything).Return(nil, context.DeadlineExceeded).Once()
				r.On("FinishPendingPayment", mock.Anything, "order-1", models.PaymentStatusFailed).Return(true, nil).Once()
			},
			wantSuccess: false,
			wantStatus:  models.PaymentStatusFailed,
		},
		{
			name: "successful charge stays pending until confirmation",
			setupMocks: func(r *PaymentRepoMock, u *UserRepoMock, g *GatewayMock) {
				r.On("GetPayment", mock.Anything, "order-1").Return(pendingPayment(), true, nil).Once()
				u.On("GetUser", mock.Anything, "uid-1").Return(&models.User{UID: "uid-1", Email: "maria@example.com"}, nil).Once()
				g.On("Charge", mock.Anything, mock.Anything).Return(&paymentgateway.ChargeResponse{
					TransactionID: "TXN_42",
					Status:        "succeeded",
				}, nil).Once()
			},
			wantSuccess: true,
			wantStatus:  models.PaymentStatusPending,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(PaymentRepoMock)
			users := new(UserRepoMock)
			gw := new(GatewayMock)
			svc := newService(repo, users, gw, nil)

			tt.setupMocks(repo, users, gw)

			result, err := svc.ProcessPayment(context.Background(), "order-1", "card")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.wantSuccess, result.Success)
				assert.Equal(t, tt.wantStatus, result.Status)
			}

			repo.AssertExpectations(t)
			users.AssertExpectations(t)
			gw.AssertExpectations(t)
		})
	}
}

func TestPaymentService_ConfirmPayment(t *testing.T) {
	completed := pendingPayment()
	completed.Status = models.PaymentStatusCompleted

	tests := []struct {
		name       string
		setupMocks func(r *PaymentRepoMock, u *UserRepoMock)
		wantErr    error
	}{
		{
			name: "confirms and activates premium",
			setupMocks: func(r *PaymentRepoMock, u *UserRepoMock) {
				r.On("CompletePaymentAndActivatePremium", mock.Anything, "order-1", "TXN_42", mock.Anything).
					Return(true, nil).Once()
				r.On("GetPayment", mock.Anything, "order-1").Return(completed, true, nil).Once()
				u.On("GetUser", mock.Anything, "uid-1").
					Return(&models.User{UID: "uid-1", Email: "maria@example.com", Name: "María"}, nil).Once()
			},
		},
		{
			name: "second confirmation is rejected",
			setupMocks: func(r *PaymentRepoMock, _ *UserRepoMock) {
				r.On("CompletePaymentAndActivatePremium", mock.Anything, "order-1", "TXN_42", mock.Anything).
					Return(false, nil).Once()
				r.On("GetPayment", mock.Anything, "order-1").Return(completed, true, nil).Once()
			},
			wantErr: models.ErrAlreadyProcessed,
		},
		{
			name: "unknown order",
			setupMocks: func(r *PaymentRepoMock, _ *UserRepoMock) {
				r.On("CompletePaymentAndActivatePremium", mock.Anything, "order-1", "TXN_42", mock.Anything).
					Return(false, nil).Once()
				r.On("GetPayment", mock.Anything, "order-1").Return(nil, false, nil).Once()
			},
			wantErr: models.ErrOrderNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(PaymentRepoMock)
			users := new(UserRepoMock)
			events := &eventsRecorder{}
			svc := newService(repo, users, new(GatewayMock), events)

			tt.setupMocks(repo, users)

			p, err := svc.ConfirmPayment(context.Background(), "order-1", "TXN_42")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, events.published)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, models.PaymentStatusCompleted, p.Status)
				assert.Equal(t, []string{"premium.activated"}, events.published)
			}

			repo.AssertExpectations(t)
			users.AssertExpectations(t)
		})
	}
}

func TestPaymentService_CancelPayment(t *testing.T) {
	completed := pendingPayment()
	completed.Status = models.PaymentStatusCompleted

	tests := []struct {
		name       string
		setupMocks func(r *PaymentRepoMock)
		wantErr    error
	}{
		{
			name: "cancels pending order",
			setupMocks: func(r *PaymentRepoMock) {
				cancelled := pendingPayment()
				cancelled.Status = models.PaymentStatusCancelled
				r.On("FinishPendingPayment", mock.Anything, "order-1", models.PaymentStatusCancelled).
					Return(true, nil).Once()
				r.On("GetPayment", mock.Anything, "order-1").Return(cancelled, true, nil).Once()
			},
		},
		{
			name: "cancel after confirmation is an illegal move",
			setupMocks: func(r *PaymentRepoMock) {
				r.On("FinishPendingPayment", mock.Anything, "order-1", models.PaymentStatusCancelled).
					Return(false, nil).Once()
				r.On("GetPayment", mock.Anything, "order-1").Return(completed, true, nil).Once()
			},
			wantErr: models.ErrInvalidTransition,
		},
		{
			name: "unknown order",
			setupMocks: func(r *PaymentRepoMock) {
				r.On("FinishPendingPayment", mock.Anything, "order-1", models.PaymentStatusCancelled).
					Return(false, nil).Once()
				r.On("GetPayment", mock.Anything, "order-1").Return(nil, false, nil).Once()
			},
			wantErr: models.ErrOrderNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(PaymentRepoMock)
			svc := newService(repo, new(UserRepoMock), new(GatewayMock), nil)

			tt.setupMocks(repo)

			p, err := svc.CancelPayment(context.Background(), "order-1")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, models.PaymentStatusCancelled, p.Status)
			}

			repo.AssertExpectations(t)
		})
	}
}

func TestPaymentService_ProcessWebhookEvent(t *testing.T) {
	repo := new(PaymentRepoMock)
	users := new(UserRepoMock)
	svc := newService(repo, users, new(GatewayMock), nil)

	completed := pendingPayment()
	completed.Status = models.PaymentStatusCompleted

	repo.On("CompletePaymentAndActivatePremium", mock.Anything, "order-1", "TXN_42", mock.Anything).
		Return(true, nil).Once()
	repo.On("GetPayment", mock.Anything, "order-1").Return(completed, true, nil).Once()

	err := svc.ProcessWebhookEvent(context.Background(), payment.WebhookEvent{
		Event:         payment.WebhookEventSucceeded,
		OrderID:       "order-1",
		TransactionID: "TXN_42",
	})
	assert.NoError(t, err)

	// Повтор того же события упирается в ту же проверку PENDING.
	repo.On("CompletePaymentAndActivatePremium", mock.Anything, "order-1", "TXN_42", mock.Anything).
		Return(false, nil).Once()
	repo.On("GetPayment", mock.Anything, "order-1").Return(completed, true, nil).Once()

	err = svc.ProcessWebhookEvent(context.Background(), payment.WebhookEvent{
		Event:         payment.WebhookEventSucceeded,
		OrderID:       "order-1",
		TransactionID: "TXN_42",
	})
	assert.ErrorIs(t, err, models.ErrAlreadyProcessed)

	// Неизвестные события игнорируются.
	assert.NoError(t, svc.ProcessWebhookEvent(context.Background(), payment.WebhookEvent{
		Event:   "payment.refunded",
		OrderID: "order-1",
	}))

	repo.AssertExpectations(t)
}

func TestPaymentService_StorageErrorsPropagate(t *testing.T) {
	repo := new(PaymentRepoMock)
	svc := newService(repo, new(UserRepoMock), new(GatewayMock), nil)

	dbErr := errors.New("connection refused")
	repo.On("GetPayment", mock.Anything, "order-1").Return(nil, false, dbErr).Once()

	_, err := svc.GetPaymentStatus(context.Background(), "order-1")
	assert.ErrorIs(t, err, dbErr)

	repo.AssertExpectations(t)
}
