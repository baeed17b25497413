package usecase

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/jhoicas/Tenancy-api/internal/application/dto"
	"github.com/jhoicas/Tenancy-api/internal/application/ports"
	"github.com/jhoicas/Tenancy-api/internal/domain"
	"github.com/jhoicas/Tenancy-api/internal/domain/entity"
	"github.com/jhoicas/Tenancy-api/pkg/logger"
)

// PlanUseCase administra el catálogo de planes.
type PlanUseCase struct {
	tx  ports.TxRunner
	log *logger.Logger
}

// NewPlanUseCase construye el caso de uso.
func NewPlanUseCase(tx ports.TxRunner, log *logger.Logger) *PlanUseCase {
	return &PlanUseCase{tx: tx, log: logger.OrNop(log).Component("plan")}
}

// List devuelve todos los planes.
func (uc *PlanUseCase) List(ctx context.Context) ([]dto.PlanResponse, error) {
	out := []dto.PlanResponse{}
	err := uc.tx.Run(ctx, func(r ports.Repos) error {
		plans, err := r.Plans.List(ctx)
		if err != nil {
			return err
		}
		for _, p := range plans {
			out = append(out, entityToPlanResponse(p))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GetByID devuelve un plan o ErrPlanNotFound.
func (uc *PlanUseCase) GetByID(ctx context.Context, id string) (*dto.PlanResponse, error) {
	var out dto.PlanResponse
	err := uc.tx.Run(ctx, func(r ports.Repos) error {
		p, err := r.Plans.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if p == nil {
			return domain.ErrPlanNotFound
		}
		out = entityToPlanResponse(p)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Create crea un plan no-sistema. Devuelve ErrPlanNameExists si el nombre ya está en uso.
func (uc *PlanUseCase) Create(ctx context.Context, in dto.PlanRequest) (*dto.PlanResponse, error) {
	if err := validatePlan(in); err != nil {
		return nil, err
	}
	plan := &entity.Plan{
		ID:       uuid.New().String(),
		Name:     strings.TrimSpace(in.Name),
		IsActive: in.IsActive,
		Limits:   entity.PlanLimits{MaxBusinesses: in.MaxBusinesses, MaxMembersPerBusiness: in.MaxMembersPerBusiness},
	}
	err := uc.tx.Run(ctx, func(r ports.Repos) error {
		existing, err := r.Plans.GetByName(ctx, plan.Name)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.ErrPlanNameExists
		}
		return r.Plans.Create(ctx, plan)
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("plan_id", plan.ID).Str("name", plan.Name).Msg("plan creado")
	out := entityToPlanResponse(plan)
	return &out, nil
}

// Update modifica nombre, estado y cuotas. Los cambios de cuota no concilian negocios existentes.
func (uc *PlanUseCase) Update(ctx context.Context, id string, in dto.PlanRequest) (*dto.PlanResponse, error) {
	if err := validatePlan(in); err != nil {
		return nil, err
	}
	var plan *entity.Plan
	err := uc.tx.Run(ctx, func(r ports.Repos) error {
		var err error
		plan, err = r.Plans.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if plan == nil {
			return domain.ErrPlanNotFound
		}
		name := strings.TrimSpace(in.Name)
		other, err := r.Plans.GetByName(ctx, name)
		if err != nil {
			return err
		}
		if other != nil && other.ID != id {
			return domain.ErrPlanNameExists
		}
		plan.Name = name
		plan.IsActive = in.IsActive
		plan.Limits = entity.PlanLimits{MaxBusinesses: in.MaxBusinesses, MaxMembersPerBusiness: in.MaxMembersPerBusiness}
		return r.Plans.Update(ctx, plan)
	})
	if err != nil {
		return nil, err
	}
	out := entityToPlanResponse(plan)
	return &out, nil
}

// Delete elimina un plan. Los planes de sistema están protegidos.
func (uc *PlanUseCase) Delete(ctx context.Context, id string) error {
	err := uc.tx.Run(ctx, func(r ports.Repos) error {
		p, err := r.Plans.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if p == nil {
			return domain.ErrPlanNotFound
		}
		if p.IsSystem {
			return domain.ErrPlanSystemProtected
		}
		return r.Plans.Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	uc.log.Info().Str("plan_id", id).Msg("plan eliminado")
	return nil
}

func validatePlan(in dto.PlanRequest) error {
	if strings.TrimSpace(in.Name) == "" || in.MaxBusinesses <= 0 || in.MaxMembersPerBusiness <= 0 {
		return domain.ErrInvalidInput
	}
	return nil
}

func entityToPlanResponse(p *entity.Plan) dto.PlanResponse {
	return dto.PlanResponse{
		ID:                    p.ID,
		Name:                  p.Name,
		IsSystem:              p.IsSystem,
		IsActive:              p.IsActive,
		MaxBusinesses:         p.Limits.MaxBusinesses,
		MaxMembersPerBusiness: p.Limits.MaxMembersPerBusiness,
	}
}
