package models

import "time"

// Статусы платежа. Переходы однонаправленные: из PENDING ровно в один
// терминальный статус, повторный вход в терминальный статус запрещен.
const (
	PaymentStatusPending   = "PENDING"
	PaymentStatusCompleted = "COMPLETED"
	PaymentStatusCancelled = "CANCELLED"
	PaymentStatusFailed    = "FAILED"
)

// Payment представляет попытку оплаты премиум-доступа.
type Payment struct {
	ID            string     `json:"id"`
	UserUID       string     `json:"user_uid"`
	Amount        float64    `json:"amount"`
	Currency      string     `json:"currency"`
	Status        string     `json:"status"`
	TransactionID *string    `json:"transaction_id,omitempty"` // Заполняется только при COMPLETED
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     *time.Time `json:"updated_at,omitempty"`
}

// IsTerminal сообщает, находится ли платеж в терминальном статусе.
func (p *Payment) IsTerminal() bool {
	return p.Status != PaymentStatusPending
}

// ProcessResult описывает результат обращения к платежному шлюзу.
type ProcessResult struct {
	Success       bool   `json:"success"`
	TransactionID string `json:"transaction_id,omitempty"`
	Status        string `json:"status"`
	Message       string `json:"message"`
}
