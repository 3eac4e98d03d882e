package assistant_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/mype-assistant/internal/models"
	"github.com/magabrotheeeer/mype-assistant/internal/services/assistant"
)

// Мок для AIClient
type AIClientMock struct {
	mock.Mock
}

func (m *AIClientMock) SendMessage(ctx context.Context, message string) (string, error) {
	args := m.Called(ctx, message)
	return args.String(0), args.Error(1)
}

// Мок для Quota
type QuotaMock struct {
	mock.Mock
}

func (m *QuotaMock) CanConsume(ctx context.Context, user *models.User) (bool, error) {
	args := m.Called(ctx, user)
	return args.Bool(0), args.Error(1)
}

func (m *QuotaMock) Consume(ctx context.Context, user *models.User) (*models.User, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *QuotaMock) Limit() int { return 5 }

func (m *QuotaMock) Remaining(user *models.User) int {
	if user.IsPremium {
		return 5
	}
	if user.FreeQueriesUsed >= 5 {
		return 0
	}
	return 5 - user.FreeQueriesUsed
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestAssistantService_Ask(t *testing.T) {
	tests := []struct {
		name       string
		user       *models.User
		setupMocks func(ai *AIClientMock, q *QuotaMock, user *models.User)
		wantErr    error
		wantAnyErr bool
		wantUsed   int
	}{
		{
			name: "free user gets reply and spends a query",
			user: &models.User{UID: "uid-1", FreeQueriesUsed: 2},
			setupMocks: func(ai *AIClientMock, q *QuotaMock, user *models.User) {
				q.On("CanConsume", mock.Anything, user).Return(true, nil).Once()
				ai.On("SendMessage", mock.Anything, "¿Qué es el Nuevo RUS?").Return("El Nuevo RUS es...", nil).Once()
				consumed := *user
				consumed.FreeQueriesUsed = 3
				q.On("Consume", mock.Anything, user).Return(&consumed, nil).Once()
			},
			wantUsed: 3,
		},
		{
			name: "quota exhausted before the model is called",
			user: &models.User{UID: "uid-1", FreeQueriesUsed: 5},
			setupMocks: func(_ *AIClientMock, q *QuotaMock, user *models.User) {
				q.On("CanConsume", mock.Anything, user).Return(false, nil).Once()
			},
			wantErr: models.ErrQuotaExceeded,
		},
		{
			name: "model failure does not spend the quota",
			user: &models.User{UID: "uid-1", FreeQueriesUsed: 2},
			setupMocks: func(ai *AIClientMock, q *QuotaMock, user *models.User) {
				q.On("CanConsume", mock.Anything, user).Return(true, nil).Once()
				ai.On("SendMessage", mock.Anything, "¿Qué es el Nuevo RUS?").
					Return("", errors.New("model unavailable")).Once()
			},
			wantAnyErr: true,
		},
		{
			name: "race on the last slot surfaces quota error",
			user: &models.User{UID: "uid-1", FreeQueriesUsed: 4},
			setupMocks: func(ai *AIClientMock, q *QuotaMock, user *models.User) {
				q.On("CanConsume", mock.Anything, user).Return(true, nil).Once()
				ai.On("SendMessage", mock.Anything, "¿Qué es el Nuevo RUS?").Return("El Nuevo RUS es...", nil).Once()
				q.On("Consume", mock.Anything, user).Return(nil, models.ErrQuotaExceeded).Once()
			},
			wantErr: models.ErrQuotaExceeded,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ai := new(AIClientMock)
			quotaMock := new(QuotaMock)
			svc := assistant.New(ai, quotaMock, discardLogger())

			tt.setupMocks(ai, quotaMock, tt.user)

			answer, err := svc.Ask(context.Background(), tt.user, "¿Qué es el Nuevo RUS?")
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.wantAnyErr:
				assert.Error(t, err)
			default:
				assert.NoError(t, err)
				assert.Equal(t, "El Nuevo RUS es...", answer.Reply)
				assert.Equal(t, tt.wantUsed, answer.FreeQueriesUsed)
				assert.Equal(t, 5-tt.wantUsed, answer.FreeQueriesRemaining)
			}

			ai.AssertExpectations(t)
			quotaMock.AssertExpectations(t)
		})
	}
}

func TestMockAI_KeywordRouting(t *testing.T) {
	client := assistant.NewMockAI()

	reply, err := client.SendMessage(context.Background(), "Explícame el Nuevo RUS")
	assert.NoError(t, err)
	assert.Contains(t, reply, "Nuevo RUS")

	reply, err = client.SendMessage(context.Background(), "algo completamente distinto")
	assert.NoError(t, err)
	assert.NotEmpty(t, reply)
}
