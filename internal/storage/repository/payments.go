package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/mype-assistant/internal/models"
)

// CreatePayment сохраняет новый платеж в статусе PENDING и возвращает его ID.
func (s *Storage) CreatePayment(ctx context.Context, userUID string, amount float64, currency string) (string, error) {
	const op = "storage.CreatePayment"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO payments (id, user_uid, amount, currency, status)
			  VALUES ($1, $2, $3, $4, $5) RETURNING id`
	var newID string
	err := s.DB.QueryRowContext(ctx, query,
		uuid.New().String(), userUID, amount, currency, models.PaymentStatusPending).Scan(&newID)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// GetPayment возвращает платеж по ID. Возвращает found=false, если платеж не найден.
func (s *Storage) GetPayment(ctx context.Context, paymentID string) (*models.Payment, bool, error) {
	const op = "storage.GetPayment"
	select {
	case <-ctx.Done():
		return nil, false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_uid, amount, currency, status, transaction_id, created_at, updated_at
			  FROM payments
			  WHERE id = $1`
	p := &models.Payment{}
	var transactionID sql.NullString
	var updatedAt sql.NullTime
	err := s.DB.QueryRowContext(ctx, query, paymentID).Scan(
		&p.ID, &p.UserUID, &p.Amount, &p.Currency, &p.Status, &transactionID, &p.CreatedAt, &updatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}
	if transactionID.Valid {
		p.TransactionID = &transactionID.String
	}
	if updatedAt.Valid {
		p.UpdatedAt = &updatedAt.Time
	}
	return p, true, nil
}

// ListPaymentsByUser возвращает платежи пользователя, новые первыми.
func (s *Storage) ListPaymentsByUser(ctx context.Context, userUID string) ([]*models.Payment, error) {
	const op = "storage.ListPaymentsByUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_uid, amount, currency, status, transaction_id, created_at, updated_at
			  FROM payments
			  WHERE user_uid = $1
			  ORDER BY created_at DESC`
	rows, err := s.DB.QueryContext(ctx, query, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Payment
	for rows.Next() {
		var p models.Payment
		var transactionID sql.NullString
		var updatedAt sql.NullTime
		if err := rows.Scan(&p.ID, &p.UserUID, &p.Amount, &p.Currency, &p.Status,
			&transactionID, &p.CreatedAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if transactionID.Valid {
			p.TransactionID = &transactionID.String
		}
		if updatedAt.Valid {
			p.UpdatedAt = &updatedAt.Time
		}
		result = append(result, &p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// CompletePaymentAndActivatePremium в одной транзакции переводит платеж из
// PENDING в COMPLETED, сохраняет transaction_id и активирует премиум у
// владельца платежа. Возвращает applied=false, если платеж не в PENDING или
// не существует — тогда ни одно из изменений не применяется. Падение между
// двумя UPDATE невозможно: транзакция либо фиксируется целиком, либо нет.
func (s *Storage) CompletePaymentAndActivatePremium(ctx context.Context, paymentID, transactionID string, premiumExpiresAt time.Time) (bool, error) {
	const op = "storage.CompletePaymentAndActivatePremium"
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `UPDATE payments
			  SET status = $1, transaction_id = $2, updated_at = NOW()
			  WHERE id = $3 AND status = $4
			  RETURNING user_uid`
	var userUID string
	err = tx.QueryRowContext(ctx, query,
		models.PaymentStatusCompleted, transactionID, paymentID, models.PaymentStatusPending).Scan(&userUID)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("%s: %w", op, err)
	}

	query = `UPDATE users
			 SET is_premium = TRUE, premium_expires_at = $1
			 WHERE uid = $2`
	if _, err = tx.ExecContext(ctx, query, premiumExpiresAt, userUID); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	if err = tx.Commit(); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return true, nil
}

// FinishPendingPayment переводит платеж из PENDING в переданный терминальный
// статус (CANCELLED или FAILED). Возвращает applied=false, если платеж уже
// не в PENDING или не существует.
func (s *Storage) FinishPendingPayment(ctx context.Context, paymentID, status string) (bool, error) {
	const op = "storage.FinishPendingPayment"
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE payments
			  SET status = $1, updated_at = NOW()
			  WHERE id = $2 AND status = $3`
	commandTag, err := s.DB.ExecContext(ctx, query, status, paymentID, models.PaymentStatusPending)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	rows, err := commandTag.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return rows > 0, nil
}
