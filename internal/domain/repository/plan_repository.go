package repository

import (
	"context"

	"github.com/jhoicas/Tenancy-api/internal/domain/entity"
)

// PlanRepository puerto de persistencia del catálogo de planes.
type PlanRepository interface {
	Create(ctx context.Context, plan *entity.Plan) error
	GetByID(ctx context.Context, id string) (*entity.Plan, error)
	GetByName(ctx context.Context, name string) (*entity.Plan, error)
	List(ctx context.Context) ([]*entity.Plan, error)
	Update(ctx context.Context, plan *entity.Plan) error
	Delete(ctx context.Context, id string) error
}
