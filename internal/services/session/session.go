// Package session содержит логику бизнес-уровня для работы с пользователями,
// сессиями и ленивым понижением истекшего премиум-доступа.
package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/magabrotheeeer/mype-assistant/internal/lib/jwt"
	"github.com/magabrotheeeer/mype-assistant/internal/lib/password"
	"github.com/magabrotheeeer/mype-assistant/internal/models"
)

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	// RegisterUser сохраняет нового пользователя и возвращает его UID.
	RegisterUser(ctx context.Context, user models.User) (string, error)
	// GetUserByEmail возвращает пользователя по email.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	// GetUser возвращает пользователя по UID.
	GetUser(ctx context.Context, userUID string) (*models.User, error)
	// DemoteExpiredPremium снимает истекший премиум-флаг одним условным UPDATE.
	DemoteExpiredPremium(ctx context.Context, userUID string, now time.Time) (bool, error)
}

// SessionRepository описывает контракт для работы с сессиями.
type SessionRepository interface {
	CreateSession(ctx context.Context, userUID, token string, expiresAt time.Time) (int, error)
	GetSessionByToken(ctx context.Context, token string) (*models.Session, bool, error)
	DeleteSessionByToken(ctx context.Context, token string) (int64, error)
}

// Service отвечает за регистрацию, вход, выдачу, проверку и отзыв сессий.
type Service struct {
	users    UserRepository
	sessions SessionRepository
	jwtMaker jwt.Maker
	now      func() time.Time
}

// New создает новый экземпляр Service.
func New(users UserRepository, sessions SessionRepository, jwtMaker jwt.Maker) *Service {
	return &Service{
		users:    users,
		sessions: sessions,
		jwtMaker: jwtMaker,
		now:      time.Now,
	}
}

// Register создает нового пользователя с хэшированием пароля и выдает ему сессию.
func (s *Service) Register(ctx context.Context, email, rawPassword, name string) (*models.User, string, *models.Session, error) {
	const op = "session.Register"

	if existing, err := s.users.GetUserByEmail(ctx, email); err == nil && existing != nil {
		return nil, "", nil, models.ErrUserExists
	} else if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, "", nil, fmt.Errorf("%s: %w", op, err)
	}

	hashed, err := password.GetHash(rawPassword)
	if err != nil {
		return nil, "", nil, fmt.Errorf("%s: %w", op, err)
	}

	user := models.User{
		Email:        email,
		PasswordHash: hashed,
		Name:         name,
	}
	uid, err := s.users.RegisterUser(ctx, user)
	if err != nil {
		return nil, "", nil, fmt.Errorf("%s: %w", op, err)
	}
	user.UID = uid

	token, sess, err := s.Issue(ctx, &user)
	if err != nil {
		return nil, "", nil, fmt.Errorf("%s: %w", op, err)
	}
	return &user, token, sess, nil
}

// Login проверяет пароль пользователя, нормализует его премиум-статус
// и выдает новую сессию.
func (s *Service) Login(ctx context.Context, email, rawPassword string) (*models.User, string, *models.Session, error) {
	const op = "session.Login"

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, "", nil, models.ErrInvalidCredentials
		}
		return nil, "", nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		return nil, "", nil, models.ErrInvalidCredentials
	}

	if err := s.Normalize(ctx, user); err != nil {
		return nil, "", nil, fmt.Errorf("%s: %w", op, err)
	}

	token, sess, err := s.Issue(ctx, user)
	if err != nil {
		return nil, "", nil, fmt.Errorf("%s: %w", op, err)
	}
	return user, token, sess, nil
}

// Issue выдает подписанный токен, привязанный к пользователю, и сохраняет сессию.
func (s *Service) Issue(ctx context.Context, user *models.User) (string, *models.Session, error) {
	const op = "session.Issue"

	token, err := s.jwtMaker.GenerateToken(user.UID, user.Email)
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}
	expiresAt := s.now().Add(s.jwtMaker.TokenTTL())
	id, err := s.sessions.CreateSession(ctx, user.UID, token, expiresAt)
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}
	return token, &models.Session{
		ID:        id,
		UserUID:   user.UID,
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}

// Validate проверяет токен и живость сессии, нормализует премиум-статус
// пользователя и возвращает его. Любой дефект токена или сессии дает
// models.ErrAuthInvalid; ошибки хранилища пробрасываются как есть.
func (s *Service) Validate(ctx context.Context, token string) (*models.User, *models.Session, error) {
	const op = "session.Validate"

	if _, err := s.jwtMaker.ParseToken(token); err != nil {
		return nil, nil, models.ErrAuthInvalid
	}

	sess, found, err := s.sessions.GetSessionByToken(ctx, token)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}
	if !found || s.now().After(sess.ExpiresAt) {
		return nil, nil, models.ErrAuthInvalid
	}

	user, err := s.users.GetUser(ctx, sess.UserUID)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.Normalize(ctx, user); err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}
	return user, sess, nil
}

// Revoke удаляет сессию по токену. Отзыв неизвестного токена не ошибка.
func (s *Service) Revoke(ctx context.Context, token string) error {
	const op = "session.Revoke"
	if _, err := s.sessions.DeleteSessionByToken(ctx, token); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Normalize — единственная точка ленивого понижения премиума: если флаг
// установлен, а срок истек, понижение персистится и отражается в переданной
// структуре до любого решения о доступе.
func (s *Service) Normalize(ctx context.Context, user *models.User) error {
	const op = "session.Normalize"

	if !user.PremiumExpired(s.now()) {
		return nil
	}
	if _, err := s.users.DemoteExpiredPremium(ctx, user.UID, s.now()); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	user.IsPremium = false
	user.PremiumExpiresAt = nil
	return nil
}
