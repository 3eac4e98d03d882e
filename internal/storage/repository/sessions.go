package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/magabrotheeeer/mype-assistant/internal/models"
)

// CreateSession сохраняет новую сессию и возвращает её ID.
func (s *Storage) CreateSession(ctx context.Context, userUID, token string, expiresAt time.Time) (int, error) {
	const op = "storage.CreateSession"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO sessions (user_uid, token, expires_at)
			  VALUES ($1, $2, $3) RETURNING id`
	var newID int
	if err := s.DB.QueryRowContext(ctx, query, userUID, token, expiresAt).Scan(&newID); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// GetSessionByToken возвращает сессию по токену. Возвращает found=false,
// если токену не соответствует ни одна сессия.
func (s *Storage) GetSessionByToken(ctx context.Context, token string) (*models.Session, bool, error) {
	const op = "storage.GetSessionByToken"
	select {
	case <-ctx.Done():
		return nil, false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_uid, token, expires_at, created_at
			  FROM sessions
			  WHERE token = $1`
	sess := &models.Session{}
	err := s.DB.QueryRowContext(ctx, query, token).Scan(
		&sess.ID, &sess.UserUID, &sess.Token, &sess.ExpiresAt, &sess.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}
	return sess, true, nil
}

// DeleteSessionByToken удаляет сессию по токену. Отсутствие строки не
// считается ошибкой: операция идемпотентна.
func (s *Storage) DeleteSessionByToken(ctx context.Context, token string) (int64, error) {
	const op = "storage.DeleteSessionByToken"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	commandTag, err := s.DB.ExecContext(ctx, `DELETE FROM sessions WHERE token = $1`, token)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	result, err := commandTag.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
