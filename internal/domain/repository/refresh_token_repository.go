package repository

import (
	"context"

	"github.com/jhoicas/Tenancy-api/internal/domain/entity"
)

// RefreshTokenRepository puerto de persistencia de refresh tokens (solo hashes).
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *entity.RefreshToken) error
	// GetActiveByHash token no revocado con ese hash (puede estar expirado) o nil.
	GetActiveByHash(ctx context.Context, tokenHash string) (*entity.RefreshToken, error)
	// GetByHashAndUser token con ese hash y dueño (revocado o no) o nil.
	GetByHashAndUser(ctx context.Context, tokenHash, userID string) (*entity.RefreshToken, error)
	// Revoke fija RevokedAt solo si sigue sin revocar. Devuelve domain.ErrInvalidRefreshToken si ya lo estaba.
	Revoke(ctx context.Context, token *entity.RefreshToken) error
}
