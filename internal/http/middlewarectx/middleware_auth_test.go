package middlewarectx_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/mype-assistant/internal/http/middlewarectx"
	"github.com/magabrotheeeer/mype-assistant/internal/models"
)

type SessionServiceMock struct {
	mock.Mock
}

func (m *SessionServiceMock) Validate(ctx context.Context, token string) (*models.User, *models.Session, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*models.User), args.Get(1).(*models.Session), args.Error(2)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestAuthMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		authHeader string
		setupMocks func(s *SessionServiceMock)
		wantStatus int
		wantUser   bool
	}{
		{
			name:       "valid token passes user into context",
			authHeader: "Bearer good-token",
			setupMocks: func(s *SessionServiceMock) {
				s.On("Validate", mock.Anything, "good-token").Return(
					&models.User{UID: "uid-1", Email: "maria@example.com"},
					&models.Session{Token: "good-token"},
					nil,
				).Once()
			},
			wantStatus: http.StatusOK,
			wantUser:   true,
		},
		{
			name:       "missing header",
			authHeader: "",
			setupMocks: func(_ *SessionServiceMock) {},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "wrong scheme",
			authHeader: "Basic abc",
			setupMocks: func(_ *SessionServiceMock) {},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "revoked token",
			authHeader: "Bearer stale-token",
			setupMocks: func(s *SessionServiceMock) {
				s.On("Validate", mock.Anything, "stale-token").
					Return(nil, nil, models.ErrAuthInvalid).Once()
			},
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sessions := new(SessionServiceMock)
			tt.setupMocks(sessions)

			var gotUser *models.User
			var gotToken string
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotUser, _ = middlewarectx.UserFromContext(r.Context())
				gotToken, _ = middlewarectx.TokenFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			})

			handler := middlewarectx.AuthMiddleware(sessions, discardLogger())(next)

			req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantUser {
				assert.NotNil(t, gotUser)
				assert.Equal(t, "uid-1", gotUser.UID)
				assert.Equal(t, "good-token", gotToken)
			}

			sessions.AssertExpectations(t)
		})
	}
}
