package models

import "errors"

// Ошибки бизнес-уровня. Слой хранилища их не возвращает: инфраструктурные
// ошибки пробрасываются как есть, чтобы граница могла отличить нарушение
// бизнес-правила от недоступной базы.
var (
	ErrAuthInvalid        = errors.New("invalid or expired token")
	ErrQuotaExceeded      = errors.New("free query limit exceeded")
	ErrAlreadyPremium     = errors.New("user already has premium access")
	ErrOrderNotFound      = errors.New("payment order not found")
	ErrAlreadyProcessed   = errors.New("payment already processed")
	ErrInvalidTransition  = errors.New("illegal payment status transition")
	ErrInvalidIncome      = errors.New("income must be a finite positive number")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists with this email")
	ErrInvalidCredentials = errors.New("invalid credentials")
)
