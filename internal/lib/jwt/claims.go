// Package jwt реализует генерацию и парсинг JWT токенов с пользовательскими claim полями.
//
// Токен подписывается секретным ключом и привязывается к UID пользователя.
// Сам по себе токен не дает доступа: живая сессия в хранилище обязательна.
package jwt

import (
	"time"
)

// Maker описывает интерфейс для генерации и парсинга JWT токенов.
type Maker interface {
	// GenerateToken создает токен, привязанный к UID и email пользователя.
	GenerateToken(userUID, email string) (string, error)
	// ParseToken возвращает *CustomClaims, если токен корректен и не истек.
	ParseToken(tokenStr string) (*CustomClaims, error)
	// TokenTTL возвращает время жизни выдаваемых токенов.
	TokenTTL() time.Duration
}

var _ Maker = (*MakerImpl)(nil)

// MakerImpl реализует интерфейс Maker с использованием секретного ключа
// и времени жизни токена (TTL).
type MakerImpl struct {
	secretKey string        // Секретный ключ для подписи токенов.
	tokenTTL  time.Duration // Время жизни токена.
}

// NewJWTMaker создаёт новый экземпляр MakerImpl на основе секретного ключа и TTL.
func NewJWTMaker(secretKey string, ttl time.Duration) *MakerImpl {
	return &MakerImpl{
		secretKey: secretKey,
		tokenTTL:  ttl,
	}
}

// TokenTTL возвращает настроенное время жизни токена.
// Срок действия сессии в хранилище должен совпадать со сроком токена.
func (j *MakerImpl) TokenTTL() time.Duration {
	return j.tokenTTL
}
