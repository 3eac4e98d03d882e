// Package assistant связывает чат с ИИ и учет квоты: каждый вопрос
// бесплатного пользователя списывает ровно один запрос из лимита.
package assistant

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/mype-assistant/internal/models"
)

// AIClient описывает контракт клиента языковой модели.
type AIClient interface {
	SendMessage(ctx context.Context, message string) (string, error)
}

// Quota описывает решения о доступе и списание бесплатных запросов.
type Quota interface {
	CanConsume(ctx context.Context, user *models.User) (bool, error)
	Consume(ctx context.Context, user *models.User) (*models.User, error)
	Limit() int
	Remaining(user *models.User) int
}

// Answer — ответ ассистента вместе с состоянием квоты после списания.
type Answer struct {
	Reply                string `json:"reply"`
	IsPremium            bool   `json:"is_premium"`
	FreeQueriesUsed      int    `json:"free_queries_used"`
	FreeQueriesRemaining int    `json:"free_queries_remaining"`
}

// Service обрабатывает вопросы к ассистенту.
type Service struct {
	ai    AIClient
	quota Quota
	log   *slog.Logger
}

// New создает новый экземпляр Service.
func New(ai AIClient, quota Quota, log *slog.Logger) *Service {
	return &Service{ai: ai, quota: quota, log: log}
}

// Ask проверяет квоту, получает ответ модели и списывает запрос.
// Списание идет после ответа модели, поэтому сбой ИИ не тратит лимит;
// проигрыш гонки на последнем слоте дает models.ErrQuotaExceeded.
func (s *Service) Ask(ctx context.Context, user *models.User, message string) (*Answer, error) {
	const op = "assistant.Ask"

	ok, err := s.quota.CanConsume(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !ok {
		return nil, models.ErrQuotaExceeded
	}

	reply, err := s.ai.SendMessage(ctx, message)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	user, err = s.quota.Consume(ctx, user)
	if err != nil {
		return nil, err
	}

	s.log.Info("assistant reply sent",
		slog.String("user_uid", user.UID),
		slog.Bool("is_premium", user.IsPremium))
	return &Answer{
		Reply:                reply,
		IsPremium:            user.IsPremium,
		FreeQueriesUsed:      user.FreeQueriesUsed,
		FreeQueriesRemaining: s.quota.Remaining(user),
	}, nil
}
