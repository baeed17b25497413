package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/Tenancy-api/internal/domain"
	"github.com/jhoicas/Tenancy-api/internal/domain/entity"
	"github.com/jhoicas/Tenancy-api/internal/domain/repository"
)

var _ repository.PlanRepository = (*PlanRepo)(nil)

// PlanRepo catálogo de planes sobre PostgreSQL.
type PlanRepo struct {
	q Querier
}

// NewPlanRepository construye el adaptador.
func NewPlanRepository(q Querier) *PlanRepo {
	return &PlanRepo{q: q}
}

const planColumns = `id, name, is_system, is_active, max_businesses, max_members_per_business`

func (r *PlanRepo) Create(ctx context.Context, p *entity.Plan) error {
	query := `INSERT INTO plans (` + planColumns + `) VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.q.Exec(ctx, query, p.ID, p.Name, p.IsSystem, p.IsActive, p.Limits.MaxBusinesses, p.Limits.MaxMembersPerBusiness)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrPlanNameExists
		}
		return fmt.Errorf("insert plan: %w", err)
	}
	return nil
}

func (r *PlanRepo) GetByID(ctx context.Context, id string) (*entity.Plan, error) {
	return r.findOne(ctx, `SELECT `+planColumns+` FROM plans WHERE id = $1`, id)
}

func (r *PlanRepo) GetByName(ctx context.Context, name string) (*entity.Plan, error) {
	return r.findOne(ctx, `SELECT `+planColumns+` FROM plans WHERE name = $1`, name)
}

// List devuelve los planes en orden de alta.
func (r *PlanRepo) List(ctx context.Context) ([]*entity.Plan, error) {
	rows, err := r.q.Query(ctx, `SELECT `+planColumns+` FROM plans ORDER BY created_seq`)
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	defer rows.Close()
	list := []*entity.Plan{}
	for rows.Next() {
		var p entity.Plan
		if err := rows.Scan(&p.ID, &p.Name, &p.IsSystem, &p.IsActive, &p.Limits.MaxBusinesses, &p.Limits.MaxMembersPerBusiness); err != nil {
			return nil, fmt.Errorf("scan plan: %w", err)
		}
		list = append(list, &p)
	}
	return list, rows.Err()
}

func (r *PlanRepo) Update(ctx context.Context, p *entity.Plan) error {
	query := `
		UPDATE plans SET name = $2, is_active = $3, max_businesses = $4, max_members_per_business = $5
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query, p.ID, p.Name, p.IsActive, p.Limits.MaxBusinesses, p.Limits.MaxMembersPerBusiness)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrPlanNameExists
		}
		return fmt.Errorf("update plan: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrPlanNotFound
	}
	return nil
}

// Delete elimina el plan. Si hay suscripciones que lo referencian devuelve ErrConflict.
func (r *PlanRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM plans WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("delete plan: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrPlanNotFound
	}
	return nil
}

func (r *PlanRepo) findOne(ctx context.Context, query string, arg any) (*entity.Plan, error) {
	var p entity.Plan
	err := r.q.QueryRow(ctx, query, arg).Scan(&p.ID, &p.Name, &p.IsSystem, &p.IsActive, &p.Limits.MaxBusinesses, &p.Limits.MaxMembersPerBusiness)
	if err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get plan: %w", err)
	}
	return &p, nil
}
