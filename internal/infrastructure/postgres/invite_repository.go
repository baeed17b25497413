package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Tenancy-api/internal/domain"
	"github.com/jhoicas/Tenancy-api/internal/domain/entity"
	"github.com/jhoicas/Tenancy-api/internal/domain/repository"
)

var _ repository.InviteRepository = (*InviteRepo)(nil)

// InviteRepo invitaciones sobre PostgreSQL. Solo se guarda el hash del token.
type InviteRepo struct {
	q Querier
}

// NewInviteRepository construye el adaptador.
func NewInviteRepository(q Querier) *InviteRepo {
	return &InviteRepo{q: q}
}

const inviteColumns = `id, business_id, invited_email, invited_by_user_id, role_to_grant, token_hash, expires_at, status, created_at`

func (r *InviteRepo) Create(ctx context.Context, i *entity.BusinessInvite) error {
	query := `INSERT INTO business_invites (` + inviteColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		i.ID, i.BusinessID, i.InvitedEmail, i.InvitedByUserID, string(i.RoleToGrant),
		i.TokenHash, i.ExpiresAt, string(i.Status), i.CreatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrBusinessNotFound
		}
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("insert invite: %w", err)
	}
	return nil
}

func (r *InviteRepo) GetByID(ctx context.Context, id string) (*entity.BusinessInvite, error) {
	return r.findOne(ctx, `SELECT `+inviteColumns+` FROM business_invites WHERE id = $1 FOR UPDATE`, id)
}

// GetByTokenHash bloquea la fila: dos aceptaciones concurrentes del mismo token se serializan.
func (r *InviteRepo) GetByTokenHash(ctx context.Context, tokenHash string) (*entity.BusinessInvite, error) {
	return r.findOne(ctx, `SELECT `+inviteColumns+` FROM business_invites WHERE token_hash = $1 FOR UPDATE`, tokenHash)
}

// UpdateStatus aplica la transición solo si la fila sigue pending.
func (r *InviteRepo) UpdateStatus(ctx context.Context, i *entity.BusinessInvite) error {
	cmd, err := r.q.Exec(ctx, `UPDATE business_invites SET status = $2 WHERE id = $1 AND status = 'pending'`,
		i.ID, string(i.Status))
	if err != nil {
		return fmt.Errorf("update invite status: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrInvalidStatus
	}
	return nil
}

func (r *InviteRepo) findOne(ctx context.Context, query string, arg any) (*entity.BusinessInvite, error) {
	i, err := scanInvite(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invite: %w", err)
	}
	return i, nil
}

func scanInvite(row pgx.Row) (*entity.BusinessInvite, error) {
	var (
		i            entity.BusinessInvite
		role, status string
	)
	err := row.Scan(&i.ID, &i.BusinessID, &i.InvitedEmail, &i.InvitedByUserID, &role,
		&i.TokenHash, &i.ExpiresAt, &status, &i.CreatedAt)
	if err != nil {
		return nil, err
	}
	i.RoleToGrant = entity.MemberRole(role)
	i.Status = entity.InviteStatus(status)
	return &i, nil
}
