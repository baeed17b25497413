package repository

import (
	"context"

	"github.com/jhoicas/Tenancy-api/internal/domain/entity"
)

// BusinessRepository puerto de persistencia del agregado Business (con sus miembros).
// Los miembros se cargan siempre en orden de ingreso.
//
// GetByID y ListByOwner bloquean las filas de businesses hasta el fin de la transacción; ese
// bloqueo cubre a los miembros del negocio. Orden de bloqueo: invitación, usuario owner, negocio.
type BusinessRepository interface {
	// Create inserta el negocio y sus miembros iniciales.
	Create(ctx context.Context, business *entity.Business) error
	GetByID(ctx context.Context, id string) (*entity.Business, error)
	// OwnerOf devuelve el owner sin bloquear (vacío si el negocio no existe). El owner no cambia nunca.
	OwnerOf(ctx context.Context, id string) (string, error)
	// ListByOwner negocios del owner (activos e inactivos) en orden de creación.
	ListByOwner(ctx context.Context, ownerUserID string) ([]*entity.Business, error)
	CountActiveByOwner(ctx context.Context, ownerUserID string) (int, error)
	// Save persiste el estado del negocio y los miembros con cambios (ChangedMembers). Nunca borra miembros.
	Save(ctx context.Context, business *entity.Business) error
}
