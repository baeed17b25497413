package repository

import (
	"context"

	"github.com/jhoicas/Tenancy-api/internal/domain/entity"
)

// SubscriptionRepository puerto de persistencia de suscripciones.
type SubscriptionRepository interface {
	Create(ctx context.Context, sub *entity.Subscription) error
	// Update persiste estado y fecha de fin.
	Update(ctx context.Context, sub *entity.Subscription) error
	// GetActiveByUser devuelve la suscripción activa del usuario (la más reciente) o nil.
	GetActiveByUser(ctx context.Context, userID string) (*entity.Subscription, error)
	// ListByUser historial ordenado por StartAt descendente.
	ListByUser(ctx context.Context, userID string) ([]*entity.Subscription, error)
}
