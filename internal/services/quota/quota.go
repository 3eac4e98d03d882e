// Package quota содержит бизнес-логику учета бесплатных запросов.
// Премиум-пользователи квотой не ограничены; для остальных счетчик
// увеличивается атомарно на стороне хранилища, так что два одновременных
// запроса не могут оба пройти на последнем свободном слоте.
package quota

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/mype-assistant/internal/models"
)

// UserRepository описывает методы хранилища, нужные учету квоты.
type UserRepository interface {
	// IncrementFreeQueries атомарно увеличивает счетчик, если он ниже лимита.
	IncrementFreeQueries(ctx context.Context, userUID string, limit int) (int, bool, error)
	// DemoteExpiredPremium снимает истекший премиум-флаг.
	DemoteExpiredPremium(ctx context.Context, userUID string, now time.Time) (bool, error)
}

// Normalizer приводит премиум-статус пользователя к актуальному состоянию
// перед любым решением о доступе.
type Normalizer interface {
	Normalize(ctx context.Context, user *models.User) error
}

// Service реализует проверку и потребление квоты бесплатных запросов.
type Service struct {
	users      UserRepository
	normalizer Normalizer
	limit      int
	log        *slog.Logger
}

// New создает новый экземпляр Service с лимитом из конфига.
func New(users UserRepository, normalizer Normalizer, limit int, log *slog.Logger) *Service {
	return &Service{
		users:      users,
		normalizer: normalizer,
		limit:      limit,
		log:        log,
	}
}

// Limit возвращает настроенный лимит бесплатных запросов.
func (s *Service) Limit() int {
	return s.limit
}

// Remaining возвращает остаток бесплатных запросов пользователя.
func (s *Service) Remaining(user *models.User) int {
	if user.IsPremium {
		return s.limit
	}
	if user.FreeQueriesUsed >= s.limit {
		return 0
	}
	return s.limit - user.FreeQueriesUsed
}

// CanConsume сообщает, может ли пользователь выполнить платное действие.
// Перед проверкой премиум-статус нормализуется.
func (s *Service) CanConsume(ctx context.Context, user *models.User) (bool, error) {
	const op = "quota.CanConsume"

	if err := s.normalizer.Normalize(ctx, user); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	if user.IsPremium {
		return true, nil
	}
	return user.FreeQueriesUsed < s.limit, nil
}

// Consume списывает ровно один бесплатный запрос. Для премиум-пользователя
// вызов — no-op. Возвращает models.ErrQuotaExceeded, если лимит уже исчерпан
// к моменту атомарного инкремента.
func (s *Service) Consume(ctx context.Context, user *models.User) (*models.User, error) {
	const op = "quota.Consume"

	if err := s.normalizer.Normalize(ctx, user); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if user.IsPremium {
		return user, nil
	}

	used, ok, err := s.users.IncrementFreeQueries(ctx, user.UID, s.limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !ok {
		return nil, models.ErrQuotaExceeded
	}

	user.FreeQueriesUsed = used
	s.log.Info("free query consumed",
		slog.String("user_uid", user.UID),
		slog.Int("used", used),
		slog.Int("limit", s.limit))
	return user, nil
}
