package notification_test

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/mype-assistant/internal/lib/smtp"
	"github.com/magabrotheeeer/mype-assistant/internal/services/notification"
	"github.com/magabrotheeeer/mype-assistant/internal/services/payment"
)

type MockTransport struct {
	mock.Mock
}

func (m *MockTransport) Connect() (smtp.Client, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(smtp.Client), args.Error(1)
}

func (m *MockTransport) GetSMTPUser() string {
	args := m.Called()
	return args.String(0)
}

type MockSMTPClient struct {
	mock.Mock
}

func (m *MockSMTPClient) Mail(from string) error {
	args := m.Called(from)
	return args.Error(0)
}

func (m *MockSMTPClient) Rcpt(to string) error {
	args := m.Called(to)
	return args.Error(0)
}

func (m *MockSMTPClient) Data() (io.WriteCloser, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.WriteCloser), args.Error(1)
}

func (m *MockSMTPClient) Quit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockSMTPClient) Close() error {
	args := m.Called()
	return args.Error(0)
}

type MockSMTPWriter struct {
	mock.Mock
}

func (m *MockSMTPWriter) Write(p []byte) (n int, err error) {
	args := m.Called(p)
	return args.Int(0), args.Error(1)
}

func (m *MockSMTPWriter) Close() error {
	args := m.Called()
	return args.Error(0)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func premiumEventBody(t *testing.T) []byte {
	t.Helper()
	body, err := json.Marshal(payment.PremiumActivatedEvent{
		UserUID:   "uid-123",
		Email:     "maria@example.com",
		Name:      "María",
		Amount:    15.00,
		Currency:  "PEN",
		ExpiresAt: time.Date(2026, 9, 29, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("failed to marshal event: %v", err)
	}
	return body
}

func TestNotificationService_SendPremiumActivated(t *testing.T) {
	tests := []struct {
		name          string
		body          []byte
		setupMocks    func(tr *MockTransport)
		expectedError bool
		errorMessage  string
	}{
		{
			name: "success - premium activation email",
			setupMocks: func(tr *MockTransport) {
				mockClient := new(MockSMTPClient)
				mockWriter := new(MockSMTPWriter)

				tr.On("GetSMTPUser").Return("noreply@mype-assistant.pe")
				tr.On("Connect").Return(mockClient, nil).Once()
				mockClient.On("Mail", "noreply@mype-assistant.pe").Return(nil).Once()
				mockClient.On("Rcpt", "maria@example.com").Return(nil).Once()
				mockClient.On("Data").Return(mockWriter, nil).Once()
				mockWriter.On("Write", mock.AnythingOfType("[]uint8")).Return(100, nil).Once()
				mockWriter.On("Close").Return(nil).Once()
				mockClient.On("Quit").Return(nil).Once()
				mockClient.On("Close").Return(nil).Once()
			},
		},
		{
			name:          "invalid JSON",
			body:          []byte(`invalid json`),
			setupMocks:    func(_ *MockTransport) {},
			expectedError: true,
		},
		{
			name: "SMTP connection error",
			setupMocks: func(tr *MockTransport) {
				tr.On("GetSMTPUser").Return("noreply@mype-assistant.pe")
				tr.On("Connect").Return(nil, errors.New("connection error")).Once()
			},
			expectedError: true,
			errorMessage:  "connection error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transport := new(MockTransport)
			svc := notification.New(transport, newNoopLogger())

			tt.setupMocks(transport)

			body := tt.body
			if body == nil {
				body = premiumEventBody(t)
			}
			err := svc.SendPremiumActivated(body)

			if tt.expectedError {
				assert.Error(t, err)
				if tt.errorMessage != "" {
					assert.Contains(t, err.Error(), tt.errorMessage)
				}
			} else {
				assert.NoError(t, err)
			}

			transport.AssertExpectations(t)
		})
	}
}
