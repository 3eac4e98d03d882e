package middlewarectx

import (
	"context"

	"github.com/magabrotheeeer/mype-assistant/internal/models"
)

// Service описывает интерфейс сервиса сессий для проверки токена.
type Service interface {
	Validate(ctx context.Context, token string) (*models.User, *models.Session, error)
}
