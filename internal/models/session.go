package models

import "time"

// Session представляет выданную пользователю сессию.
// Токен уникален: в любой момент времени ему соответствует не более одной живой сессии.
type Session struct {
	ID        int       `json:"id"`
	UserUID   string    `json:"user_uid"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}
