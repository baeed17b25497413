package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Tenancy-api/internal/domain"
	"github.com/jhoicas/Tenancy-api/internal/domain/entity"
	"github.com/jhoicas/Tenancy-api/internal/domain/repository"
)

var _ repository.BusinessRepository = (*BusinessRepo)(nil)

// BusinessRepo agregado Business (businesses + business_members) sobre PostgreSQL.
// El orden de ingreso de los miembros lo fija la columna identity join_seq.
// La fila de businesses (FOR UPDATE) es el candado del agregado: quien escribe miembros la tiene.
type BusinessRepo struct {
	q Querier
}

// NewBusinessRepository construye el adaptador.
func NewBusinessRepository(q Querier) *BusinessRepo {
	return &BusinessRepo{q: q}
}

const businessColumns = `id, owner_user_id, name, is_active, created_at`

const upsertMember = `
	INSERT INTO business_members (business_id, user_id, role, status, joined_at)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (business_id, user_id) DO UPDATE SET role = EXCLUDED.role, status = EXCLUDED.status`

// Create inserta el negocio y sus miembros iniciales.
func (r *BusinessRepo) Create(ctx context.Context, b *entity.Business) error {
	query := `INSERT INTO businesses (` + businessColumns + `) VALUES ($1, $2, $3, $4, $5)`
	if _, err := r.q.Exec(ctx, query, b.ID, b.OwnerUserID, b.Name, b.IsActive, b.CreatedAt); err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrUserNotFound
		}
		return fmt.Errorf("insert business: %w", err)
	}
	if err := r.upsertMembers(ctx, b.ID, b.Members); err != nil {
		return err
	}
	b.MarkPersisted()
	return nil
}

func (r *BusinessRepo) GetByID(ctx context.Context, id string) (*entity.Business, error) {
	var b entity.Business
	err := r.q.QueryRow(ctx, `SELECT `+businessColumns+` FROM businesses WHERE id = $1 FOR UPDATE`, id).
		Scan(&b.ID, &b.OwnerUserID, &b.Name, &b.IsActive, &b.CreatedAt)
	if err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get business: %w", err)
	}
	if err := r.loadMembers(ctx, []*entity.Business{&b}); err != nil {
		return nil, err
	}
	return &b, nil
}

// OwnerOf lectura sin bloqueo; owner_user_id es inmutable.
func (r *BusinessRepo) OwnerOf(ctx context.Context, id string) (string, error) {
	var owner string
	err := r.q.QueryRow(ctx, `SELECT owner_user_id FROM businesses WHERE id = $1`, id).Scan(&owner)
	if err != nil {
		if noRows(err) {
			return "", nil
		}
		return "", fmt.Errorf("get business owner: %w", err)
	}
	return owner, nil
}

// ListByOwner negocios del owner en orden de creación, con sus miembros. Bloquea todas las filas
// en ese mismo orden.
func (r *BusinessRepo) ListByOwner(ctx context.Context, ownerUserID string) ([]*entity.Business, error) {
	query := `
		SELECT ` + businessColumns + ` FROM businesses
		WHERE owner_user_id = $1
		ORDER BY created_at, created_seq
		FOR UPDATE`
	rows, err := r.q.Query(ctx, query, ownerUserID)
	if err != nil {
		return nil, fmt.Errorf("list businesses: %w", err)
	}
	list := []*entity.Business{}
	for rows.Next() {
		var b entity.Business
		if err := rows.Scan(&b.ID, &b.OwnerUserID, &b.Name, &b.IsActive, &b.CreatedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan business: %w", err)
		}
		list = append(list, &b)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.loadMembers(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

func (r *BusinessRepo) CountActiveByOwner(ctx context.Context, ownerUserID string) (int, error) {
	var n int
	err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM businesses WHERE owner_user_id = $1 AND is_active`, ownerUserID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count businesses: %w", err)
	}
	return n, nil
}

// Save persiste nombre y estado del negocio y hace upsert solo de los miembros modificados,
// así una copia leída no reescribe miembros que no tocó.
func (r *BusinessRepo) Save(ctx context.Context, b *entity.Business) error {
	cmd, err := r.q.Exec(ctx, `UPDATE businesses SET name = $2, is_active = $3 WHERE id = $1`, b.ID, b.Name, b.IsActive)
	if err != nil {
		return fmt.Errorf("update business: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrBusinessNotFound
	}
	if err := r.upsertMembers(ctx, b.ID, b.ChangedMembers()); err != nil {
		return err
	}
	b.MarkPersisted()
	return nil
}

func (r *BusinessRepo) upsertMembers(ctx context.Context, businessID string, members []*entity.BusinessMember) error {
	if len(members) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, m := range members {
		batch.Queue(upsertMember, businessID, m.UserID, string(m.Role), string(m.Status), m.JoinedAt)
	}
	br := r.q.SendBatch(ctx, batch)
	defer br.Close()
	for range members {
		if _, err := br.Exec(); err != nil {
			if isForeignKeyViolation(err) {
				return domain.ErrUserNotFound
			}
			return fmt.Errorf("upsert business member: %w", err)
		}
	}
	return nil
}

// loadMembers carga los miembros de todos los negocios en una sola consulta.
func (r *BusinessRepo) loadMembers(ctx context.Context, list []*entity.Business) error {
	if len(list) == 0 {
		return nil
	}
	ids := make([]string, len(list))
	byID := make(map[string]*entity.Business, len(list))
	for i, b := range list {
		ids[i] = b.ID
		b.Members = []*entity.BusinessMember{}
		byID[b.ID] = b
	}
	query := `
		SELECT business_id, user_id, role, status, joined_at
		FROM business_members
		WHERE business_id = ANY($1)
		ORDER BY join_seq`
	rows, err := r.q.Query(ctx, query, ids)
	if err != nil {
		return fmt.Errorf("list business members: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			m            entity.BusinessMember
			role, status string
		)
		if err := rows.Scan(&m.BusinessID, &m.UserID, &role, &status, &m.JoinedAt); err != nil {
			return fmt.Errorf("scan business member: %w", err)
		}
		m.Role = entity.MemberRole(role)
		m.Status = entity.MemberStatus(status)
		b := byID[m.BusinessID]
		b.Members = append(b.Members, &m)
	}
	return rows.Err()
}
