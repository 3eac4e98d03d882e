// Package models содержит доменную модель пользователя системы,
// включающую данные учётной записи, хэш пароля и состояние премиум-доступа.
// Структура используется в бизнес‑логике и при работе с хранилищем.
package models

import "time"

// User представляет зарегистрированного пользователя системы.
type User struct {
	UID              string     // Уникальный идентификатор пользователя
	Email            string     // Электронная почта (уникальная)
	PasswordHash     string     // Хэш пароля пользователя, наружу не отдается
	Name             string     // Отображаемое имя
	FreeQueriesUsed  int        // Количество использованных бесплатных запросов
	IsPremium        bool       // Признак премиум-доступа
	PremiumExpiresAt *time.Time // Дата истечения премиум-доступа, nil для бесплатных
	CreatedAt        time.Time
}

// PremiumExpired сообщает, что премиум-флаг установлен, но срок его действия прошел.
// Такой пользователь должен быть понижен до бесплатного перед любым решением.
func (u *User) PremiumExpired(now time.Time) bool {
	return u.IsPremium && u.PremiumExpiresAt != nil && now.After(*u.PremiumExpiresAt)
}

// DummyRegister используется для приёма данных регистрации из JSON-запроса.
type DummyRegister struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Name     string `json:"name" validate:"required"`
}

// DummyLogin используется для приёма данных входа из JSON-запроса.
type DummyLogin struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}
