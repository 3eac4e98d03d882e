package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/magabrotheeeer/mype-assistant/internal/models"
)

// RegisterUser сохраняет нового пользователя в базу данных и возвращает его UID.
func (s *Storage) RegisterUser(ctx context.Context, user models.User) (string, error) {
	const op = "storage.RegisterUser"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var newUID string
	query := `INSERT INTO users (email, password_hash, name, free_queries_used, is_premium)
			  VALUES ($1, $2, $3, 0, FALSE)
			  RETURNING uid;`
	if err := s.DB.QueryRowContext(ctx, query,
		user.Email, user.PasswordHash, user.Name).Scan(&newUID); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newUID, nil
}

// GetUserByEmail возвращает пользователя по email.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.GetUserByEmail"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT uid, email, password_hash, name, free_queries_used,
			      is_premium, premium_expires_at, created_at
			  FROM users
			  WHERE email = $1`
	return s.scanUser(s.DB.QueryRowContext(ctx, query, email), op)
}

// GetUser возвращает пользователя по его UID.
func (s *Storage) GetUser(ctx context.Context, userUID string) (*models.User, error) {
	const op = "storage.GetUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT uid, email, password_hash, name, free_queries_used,
			      is_premium, premium_expires_at, created_at
			  FROM users
			  WHERE uid = $1`
	return s.scanUser(s.DB.QueryRowContext(ctx, query, userUID), op)
}

func (s *Storage) scanUser(row *sql.Row, op string) (*models.User, error) {
	u := &models.User{}
	var premiumExpiresAt sql.NullTime
	if err := row.Scan(&u.UID, &u.Email, &u.PasswordHash, &u.Name,
		&u.FreeQueriesUsed, &u.IsPremium, &premiumExpiresAt, &u.CreatedAt); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if premiumExpiresAt.Valid {
		u.PremiumExpiresAt = &premiumExpiresAt.Time
	}
	return u, nil
}

// IncrementFreeQueries атомарно увеличивает счетчик бесплатных запросов,
// если лимит еще не исчерпан. Возвращает новое значение счетчика и признак
// успеха: false означает, что счетчик уже достиг лимита. Условие входит в
// сам UPDATE, поэтому два одновременных вызова не могут оба пройти на
// последнем свободном запросе.
func (s *Storage) IncrementFreeQueries(ctx context.Context, userUID string, limit int) (int, bool, error) {
	const op = "storage.IncrementFreeQueries"
	select {
	case <-ctx.Done():
		return 0, false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET free_queries_used = free_queries_used + 1
			  WHERE uid = $1 AND free_queries_used < $2
			  RETURNING free_queries_used`
	var used int
	err := s.DB.QueryRowContext(ctx, query, userUID, limit).Scan(&used)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("%s: %w", op, err)
	}
	return used, true, nil
}

// DemoteExpiredPremium снимает премиум-флаг, если срок его действия истек.
// Возвращает true, если понижение было применено. Условие по времени входит
// в UPDATE, поэтому вызов безопасен из любого числа конкурентных запросов.
func (s *Storage) DemoteExpiredPremium(ctx context.Context, userUID string, now time.Time) (bool, error) {
	const op = "storage.DemoteExpiredPremium"
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET is_premium = FALSE, premium_expires_at = NULL
			  WHERE uid = $1
			      AND is_premium = TRUE
			      AND premium_expires_at IS NOT NULL
			      AND premium_expires_at <= $2`
	commandTag, err := s.DB.ExecContext(ctx, query, userUID, now)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	rows, err := commandTag.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return rows > 0, nil
}
