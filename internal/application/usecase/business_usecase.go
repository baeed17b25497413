package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Tenancy-api/internal/application/dto"
	"github.com/jhoicas/Tenancy-api/internal/application/ports"
	"github.com/jhoicas/Tenancy-api/internal/domain"
	"github.com/jhoicas/Tenancy-api/internal/domain/entity"
	"github.com/jhoicas/Tenancy-api/pkg/logger"
)

// BusinessUseCase aplica reglas de negocio para negocios y sus miembros.
// Las cuotas se leen del plan activo del owner.
type BusinessUseCase struct {
	tx  ports.TxRunner
	log *logger.Logger
	now func() time.Time
}

// NewBusinessUseCase construye el caso de uso.
func NewBusinessUseCase(tx ports.TxRunner, log *logger.Logger) *BusinessUseCase {
	return &BusinessUseCase{tx: tx, log: logger.OrNop(log).Component("business"), now: time.Now}
}

// SetClock reemplaza el reloj (tests).
func (uc *BusinessUseCase) SetClock(now func() time.Time) { uc.now = now }

// Create crea un negocio del usuario, que queda como owner.
// Requiere suscripción activa y que los negocios activos del usuario no alcancen MaxBusinesses.
func (uc *BusinessUseCase) Create(ctx context.Context, userID string, in dto.CreateBusinessRequest) (*dto.BusinessResponse, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.ErrInvalidInput
	}
	var b *entity.Business
	err := uc.tx.Run(ctx, func(r ports.Repos) error {
		// mismo candado que ChangePlan: el conteo y el alta no compiten con un downgrade
		if err := r.Users.LockForUpdate(ctx, userID); err != nil {
			return err
		}
		limits, err := activeLimits(ctx, r, userID)
		if err != nil {
			return err
		}
		count, err := r.Businesses.CountActiveByOwner(ctx, userID)
		if err != nil {
			return err
		}
		if count >= limits.MaxBusinesses {
			return domain.ErrBusinessLimitReached
		}
		b = entity.NewBusiness(uuid.New().String(), userID, name, uc.now().UTC())
		return r.Businesses.Create(ctx, b)
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("business_id", b.ID).Str("owner_user_id", userID).Msg("negocio creado")
	return BusinessToResponse(b), nil
}

// ListMine lista los negocios del usuario (activos e inactivos) en orden de creación.
func (uc *BusinessUseCase) ListMine(ctx context.Context, userID string) ([]dto.BusinessResponse, error) {
	out := []dto.BusinessResponse{}
	err := uc.tx.Run(ctx, func(r ports.Repos) error {
		list, err := r.Businesses.ListByOwner(ctx, userID)
		if err != nil {
			return err
		}
		for _, b := range list {
			out = append(out, *BusinessToResponse(b))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GetByID devuelve el negocio si el usuario es miembro activo; si no, ErrForbidden.
func (uc *BusinessUseCase) GetByID(ctx context.Context, userID, businessID string) (*dto.BusinessResponse, error) {
	var b *entity.Business
	err := uc.tx.Run(ctx, func(r ports.Repos) error {
		var err error
		b, err = loadBusiness(ctx, r, businessID)
		if err != nil {
			return err
		}
		if m := b.Member(userID); m == nil || !m.IsActive() {
			return domain.ErrForbidden
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return BusinessToResponse(b), nil
}

// AddMember agrega o reactiva un miembro. Solo el owner gestiona miembros.
// La cuota de miembros se valida salvo que el usuario ya sea miembro activo (solo cambia el rol).
func (uc *BusinessUseCase) AddMember(ctx context.Context, actorID, businessID string, in dto.AddMemberRequest) (*dto.BusinessResponse, error) {
	var b *entity.Business
	err := uc.tx.Run(ctx, func(r ports.Repos) error {
		var err error
		b, err = lockOwned(ctx, r, actorID, businessID)
		if err != nil {
			return err
		}
		user, err := r.Users.GetByID(ctx, in.UserID)
		if err != nil {
			return err
		}
		if user == nil {
			return domain.ErrUserNotFound
		}
		if m := b.Member(in.UserID); m == nil || !m.IsActive() {
			limits, err := activeLimits(ctx, r, b.OwnerUserID)
			if err != nil {
				return err
			}
			if len(b.ActiveMembers()) >= limits.MaxMembersPerBusiness {
				return domain.ErrMemberLimitReached
			}
		}
		if _, err := b.AddOrReactivate(in.UserID, entity.MemberRole(in.Role), uc.now().UTC()); err != nil {
			return err
		}
		return r.Businesses.Save(ctx, b)
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("business_id", businessID).Str("user_id", in.UserID).Str("role", in.Role).Msg("miembro agregado")
	return BusinessToResponse(b), nil
}

// RemoveMember baja lógica de un miembro. El owner no puede removerse.
func (uc *BusinessUseCase) RemoveMember(ctx context.Context, actorID, businessID, memberUserID string) (*dto.BusinessResponse, error) {
	var b *entity.Business
	err := uc.tx.Run(ctx, func(r ports.Repos) error {
		var err error
		b, err = lockOwned(ctx, r, actorID, businessID)
		if err != nil {
			return err
		}
		if err := b.DeactivateMember(memberUserID); err != nil {
			return err
		}
		return r.Businesses.Save(ctx, b)
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("business_id", businessID).Str("user_id", memberUserID).Msg("miembro desactivado")
	return BusinessToResponse(b), nil
}

// ChangeMemberRole cambia el rol de un miembro (admin | member).
func (uc *BusinessUseCase) ChangeMemberRole(ctx context.Context, actorID, businessID, memberUserID string, in dto.ChangeMemberRoleRequest) (*dto.BusinessResponse, error) {
	var b *entity.Business
	err := uc.tx.Run(ctx, func(r ports.Repos) error {
		var err error
		b, err = lockOwned(ctx, r, actorID, businessID)
		if err != nil {
			return err
		}
		if err := b.ChangeMemberRole(memberUserID, entity.MemberRole(in.Role)); err != nil {
			return err
		}
		return r.Businesses.Save(ctx, b)
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("business_id", businessID).Str("user_id", memberUserID).Str("role", in.Role).Msg("rol de miembro cambiado")
	return BusinessToResponse(b), nil
}

// BusinessToResponse mapea el agregado a su vista (miembros en orden de ingreso).
func BusinessToResponse(b *entity.Business) *dto.BusinessResponse {
	members := make([]dto.MemberResponse, 0, len(b.Members))
	for _, m := range b.Members {
		members = append(members, dto.MemberResponse{
			UserID:   m.UserID,
			Role:     string(m.Role),
			IsActive: m.IsActive(),
			JoinedAt: m.JoinedAt,
		})
	}
	return &dto.BusinessResponse{
		ID:          b.ID,
		Name:        b.Name,
		IsActive:    b.IsActive,
		CreatedAt:   b.CreatedAt,
		OwnerUserID: b.OwnerUserID,
		Members:     members,
	}
}

func loadBusiness(ctx context.Context, r ports.Repos, businessID string) (*entity.Business, error) {
	b, err := r.Businesses.GetByID(ctx, businessID)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, domain.ErrBusinessNotFound
	}
	return b, nil
}

// LockBusiness bloquea al owner y luego el negocio, en ese orden (el mismo de ChangePlan), y
// devuelve el agregado listo para mutar. Toda escritura de miembros pasa por aquí.
func LockBusiness(ctx context.Context, r ports.Repos, businessID string) (*entity.Business, error) {
	ownerID, err := r.Businesses.OwnerOf(ctx, businessID)
	if err != nil {
		return nil, err
	}
	if ownerID == "" {
		return nil, domain.ErrBusinessNotFound
	}
	if err := r.Users.LockForUpdate(ctx, ownerID); err != nil {
		return nil, err
	}
	return loadBusiness(ctx, r, businessID)
}

func lockOwned(ctx context.Context, r ports.Repos, actorID, businessID string) (*entity.Business, error) {
	b, err := LockBusiness(ctx, r, businessID)
	if err != nil {
		return nil, err
	}
	if b.OwnerUserID != actorID {
		return nil, domain.ErrForbidden
	}
	return b, nil
}

// activeLimits cuotas del plan de la suscripción activa del usuario.
func activeLimits(ctx context.Context, r ports.Repos, userID string) (entity.PlanLimits, error) {
	sub, err := r.Subscriptions.GetActiveByUser(ctx, userID)
	if err != nil {
		return entity.PlanLimits{}, err
	}
	if sub == nil {
		return entity.PlanLimits{}, domain.ErrSubscriptionNotFound
	}
	plan, err := r.Plans.GetByID(ctx, sub.PlanID)
	if err != nil {
		return entity.PlanLimits{}, err
	}
	if plan == nil {
		return entity.PlanLimits{}, domain.ErrPlanNotFound
	}
	return plan.Limits, nil
}
