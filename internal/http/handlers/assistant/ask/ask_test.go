package ask

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/mype-assistant/internal/config"
	"github.com/magabrotheeeer/mype-assistant/internal/http/middlewarectx"
	"github.com/magabrotheeeer/mype-assistant/internal/models"
	"github.com/magabrotheeeer/mype-assistant/internal/services/assistant"
)

// MockService реализует интерфейс ask.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Ask(ctx context.Context, user *models.User, message string) (*assistant.Answer, error) {
	args := m.Called(ctx, user, message)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*assistant.Answer), args.Error(1)
}

func TestAskHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := config.Entitlement{
		FreeQueriesLimit: 5,
		PremiumPrice:     15.00,
		PremiumCurrency:  "PEN",
	}

	tests := []struct {
		name           string
		body           string
		withUser       bool
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:     "успешный ответ ассистента",
			body:     `{"message":"¿Qué es el Nuevo RUS?"}`,
			withUser: true,
			setupMock: func(m *MockService) {
				m.On("Ask", mock.Anything, mock.Anything, "¿Qué es el Nuevo RUS?").Return(
					&assistant.Answer{Reply: "El Nuevo RUS es...", FreeQueriesUsed: 3, FreeQueriesRemaining: 2},
					nil,
				)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"reply":"El Nuevo RUS es..."`,
		},
		{
			name:           "пустое сообщение",
			body:           `{"message":""}`,
			withUser:       true,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `Message`,
		},
		{
			name:     "лимит исчерпан, в ответе условия премиума",
			body:     `{"message":"otra consulta"}`,
			withUser: true,
			setupMock: func(m *MockService) {
				m.On("Ask", mock.Anything, mock.Anything, "otra consulta").
					Return(nil, models.ErrQuotaExceeded)
			},
			expectedStatus: http.StatusForbidden,
			expectedBody:   `"premium_price":15`,
		},
		{
			name:           "нет пользователя в контексте",
			body:           `{"message":"hola"}`,
			withUser:       false,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `unauthorized`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService, cfg)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/assistant/ask", strings.NewReader(tt.body))
			if tt.withUser {
				ctx := context.WithValue(req.Context(), middlewarectx.UserKey,
					&models.User{UID: "uid-1", FreeQueriesUsed: 5})
				req = req.WithContext(ctx)
			}
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)

			mockService.AssertExpectations(t)
		})
	}
}
