package repository

import (
	"context"

	"github.com/jhoicas/Tenancy-api/internal/domain/entity"
)

// InviteRepository puerto de persistencia de invitaciones.
type InviteRepository interface {
	Create(ctx context.Context, invite *entity.BusinessInvite) error
	GetByID(ctx context.Context, id string) (*entity.BusinessInvite, error)
	// GetByTokenHash busca por hash y bloquea la fila dentro de la transacción.
	GetByTokenHash(ctx context.Context, tokenHash string) (*entity.BusinessInvite, error)
	// UpdateStatus persiste la transición. Devuelve domain.ErrInvalidStatus si la fila ya no está pending.
	UpdateStatus(ctx context.Context, invite *entity.BusinessInvite) error
}
