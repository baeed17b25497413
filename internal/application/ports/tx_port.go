package ports

import (
	"context"

	"github.com/jhoicas/Tenancy-api/internal/domain/repository"
)

// Repos repositorios atados a una misma transacción.
type Repos struct {
	Users         repository.UserRepository
	Plans         repository.PlanRepository
	Subscriptions repository.SubscriptionRepository
	Businesses    repository.BusinessRepository
	Invites       repository.InviteRepository
	RefreshTokens repository.RefreshTokenRepository
}

// TxRunner ejecuta fn dentro de una transacción: Commit si fn devuelve nil, Rollback en otro caso.
// Toda operación pública de la aplicación es una única llamada a Run (todo o nada).
type TxRunner interface {
	Run(ctx context.Context, fn func(r Repos) error) error
}
