package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/Tenancy-api/internal/domain"
	"github.com/jhoicas/Tenancy-api/internal/domain/entity"
	"github.com/jhoicas/Tenancy-api/internal/domain/repository"
)

var _ repository.RefreshTokenRepository = (*RefreshTokenRepo)(nil)

// RefreshTokenRepo refresh tokens sobre PostgreSQL (solo hashes).
type RefreshTokenRepo struct {
	q Querier
}

// NewRefreshTokenRepository construye el adaptador.
func NewRefreshTokenRepository(q Querier) *RefreshTokenRepo {
	return &RefreshTokenRepo{q: q}
}

const refreshTokenColumns = `id, user_id, token_hash, expires_at, created_at, revoked_at`

func (r *RefreshTokenRepo) Create(ctx context.Context, t *entity.RefreshToken) error {
	query := `INSERT INTO refresh_tokens (` + refreshTokenColumns + `) VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.q.Exec(ctx, query, t.ID, t.UserID, t.TokenHash, t.ExpiresAt, t.CreatedAt, t.RevokedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrUserNotFound
		}
		return fmt.Errorf("insert refresh token: %w", err)
	}
	return nil
}

// GetActiveByHash bloquea la fila para que una rotación concurrente espere y luego la vea revocada.
func (r *RefreshTokenRepo) GetActiveByHash(ctx context.Context, tokenHash string) (*entity.RefreshToken, error) {
	query := `SELECT ` + refreshTokenColumns + ` FROM refresh_tokens
		WHERE token_hash = $1 AND revoked_at IS NULL FOR UPDATE`
	return r.findOne(ctx, query, tokenHash)
}

func (r *RefreshTokenRepo) GetByHashAndUser(ctx context.Context, tokenHash, userID string) (*entity.RefreshToken, error) {
	query := `SELECT ` + refreshTokenColumns + ` FROM refresh_tokens
		WHERE token_hash = $1 AND user_id = $2 FOR UPDATE`
	return r.findOne(ctx, query, tokenHash, userID)
}

// Revoke revocación condicional: si otra transacción ya lo revocó devuelve ErrInvalidRefreshToken.
func (r *RefreshTokenRepo) Revoke(ctx context.Context, t *entity.RefreshToken) error {
	cmd, err := r.q.Exec(ctx, `UPDATE refresh_tokens SET revoked_at = $2 WHERE id = $1 AND revoked_at IS NULL`,
		t.ID, t.RevokedAt)
	if err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrInvalidRefreshToken
	}
	return nil
}

func (r *RefreshTokenRepo) findOne(ctx context.Context, query string, args ...any) (*entity.RefreshToken, error) {
	var t entity.RefreshToken
	err := r.q.QueryRow(ctx, query, args...).Scan(&t.ID, &t.UserID, &t.TokenHash, &t.ExpiresAt, &t.CreatedAt, &t.RevokedAt)
	if err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get refresh token: %w", err)
	}
	return &t, nil
}
