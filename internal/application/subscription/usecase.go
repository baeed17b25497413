package subscription

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Tenancy-api/internal/application/dto"
	"github.com/jhoicas/Tenancy-api/internal/application/ports"
	"github.com/jhoicas/Tenancy-api/internal/domain"
	"github.com/jhoicas/Tenancy-api/internal/domain/entitlement"
	"github.com/jhoicas/Tenancy-api/internal/domain/entity"
	"github.com/jhoicas/Tenancy-api/internal/metrics"
	"github.com/jhoicas/Tenancy-api/pkg/logger"
)

// SubscriptionUseCase cambio de plan con conciliación de cuotas, suscripción activa e historial.
type SubscriptionUseCase struct {
	tx      ports.TxRunner
	policy  entitlement.Policy
	log     *logger.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewSubscriptionUseCase construye el caso de uso con la política de downgrade configurada.
func NewSubscriptionUseCase(tx ports.TxRunner, policy entitlement.Policy, log *logger.Logger, m *metrics.Metrics) *SubscriptionUseCase {
	return &SubscriptionUseCase{
		tx:      tx,
		policy:  policy,
		log:     logger.OrNop(log).Component("subscription"),
		metrics: m,
		now:     time.Now,
	}
}

// SetClock reemplaza el reloj (tests).
func (uc *SubscriptionUseCase) SetClock(now func() time.Time) { uc.now = now }

// ChangePlan mueve al usuario al plan indicado.
// Si ya está en ese plan no escribe nada. En otro caso concilia sus negocios con las cuotas del plan
// (según la política), cierra la suscripción vigente y abre la nueva, todo en una transacción.
func (uc *SubscriptionUseCase) ChangePlan(ctx context.Context, userID string, in dto.ChangePlanRequest) (*dto.ChangePlanResponse, error) {
	var (
		plan    *entity.Plan
		sub     *entity.Subscription
		res     entitlement.Result
		changed bool
	)
	err := uc.tx.Run(ctx, func(r ports.Repos) error {
		var err error
		plan, err = r.Plans.GetByID(ctx, in.PlanID)
		if err != nil {
			return err
		}
		if plan == nil {
			return domain.ErrPlanNotFound
		}
		if err := r.Users.LockForUpdate(ctx, userID); err != nil {
			return err
		}
		current, err := r.Subscriptions.GetActiveByUser(ctx, userID)
		if err != nil {
			return err
		}
		if current != nil && current.PlanID == plan.ID {
			sub = current
			return nil
		}

		businesses, err := r.Businesses.ListByOwner(ctx, userID)
		if err != nil {
			return err
		}
		res, err = entitlement.Reconcile(businesses, plan.Limits, uc.policy)
		if err != nil {
			return err
		}

		now := uc.now().UTC()
		if current != nil {
			current.End(now)
			if err := r.Subscriptions.Update(ctx, current); err != nil {
				return err
			}
		}
		byID := make(map[string]*entity.Business, len(businesses))
		for _, b := range businesses {
			byID[b.ID] = b
		}
		for _, id := range res.ChangedBusinesses() {
			if err := r.Businesses.Save(ctx, byID[id]); err != nil {
				return err
			}
		}
		sub = entity.NewSubscription(uuid.New().String(), userID, plan.ID, entity.ReasonChangePlan, now)
		if err := r.Subscriptions.Create(ctx, sub); err != nil {
			return err
		}
		changed = true
		return nil
	})
	if err != nil {
		outcome := metrics.OutcomeError
		if errors.Is(err, domain.ErrDowngradeBlocked) {
			outcome = metrics.OutcomeBlocked
			uc.log.Info().Str("user_id", userID).Str("plan_id", in.PlanID).Msg("cambio de plan bloqueado por cuotas")
		}
		uc.metrics.RecordPlanChange(string(uc.policy), outcome, 0, 0)
		return nil, err
	}

	if !changed {
		uc.metrics.RecordPlanChange(string(uc.policy), metrics.OutcomeUnchanged, 0, 0)
		return &dto.ChangePlanResponse{
			Subscription:          toSubscriptionResponse(sub, plan.Name),
			DeactivatedBusinesses: []string{},
			DeactivatedMembers:    []dto.MemberRefResponse{},
		}, nil
	}

	uc.metrics.RecordPlanChange(string(uc.policy), metrics.OutcomeChanged, len(res.DeactivatedBusinesses), len(res.DeactivatedMembers))
	uc.log.Info().
		Str("user_id", userID).
		Str("plan_id", plan.ID).
		Str("policy", string(uc.policy)).
		Strs("deactivated_businesses", res.DeactivatedBusinesses).
		Int("deactivated_members", len(res.DeactivatedMembers)).
		Msg("plan cambiado")

	out := &dto.ChangePlanResponse{
		Subscription:          toSubscriptionResponse(sub, plan.Name),
		Changed:               true,
		DeactivatedBusinesses: append([]string{}, res.DeactivatedBusinesses...),
		DeactivatedMembers:    make([]dto.MemberRefResponse, 0, len(res.DeactivatedMembers)),
	}
	for _, m := range res.DeactivatedMembers {
		out.DeactivatedMembers = append(out.DeactivatedMembers, dto.MemberRefResponse{BusinessID: m.BusinessID, UserID: m.UserID})
	}
	return out, nil
}

// GetActive devuelve la suscripción activa del usuario o ErrSubscriptionNotFound.
func (uc *SubscriptionUseCase) GetActive(ctx context.Context, userID string) (*dto.SubscriptionResponse, error) {
	var out *dto.SubscriptionResponse
	err := uc.tx.Run(ctx, func(r ports.Repos) error {
		sub, err := r.Subscriptions.GetActiveByUser(ctx, userID)
		if err != nil {
			return err
		}
		if sub == nil {
			return domain.ErrSubscriptionNotFound
		}
		names, err := planNames(ctx, r)
		if err != nil {
			return err
		}
		resp := toSubscriptionResponse(sub, names[sub.PlanID])
		out = &resp
		return nil
	})
	return out, err
}

// History devuelve todas las suscripciones del usuario, la más reciente primero.
func (uc *SubscriptionUseCase) History(ctx context.Context, userID string) ([]dto.SubscriptionResponse, error) {
	out := []dto.SubscriptionResponse{}
	err := uc.tx.Run(ctx, func(r ports.Repos) error {
		subs, err := r.Subscriptions.ListByUser(ctx, userID)
		if err != nil {
			return err
		}
		names, err := planNames(ctx, r)
		if err != nil {
			return err
		}
		for _, s := range subs {
			out = append(out, toSubscriptionResponse(s, names[s.PlanID]))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func planNames(ctx context.Context, r ports.Repos) (map[string]string, error) {
	plans, err := r.Plans.List(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(plans))
	for _, p := range plans {
		names[p.ID] = p.Name
	}
	return names, nil
}

func toSubscriptionResponse(s *entity.Subscription, planName string) dto.SubscriptionResponse {
	return dto.SubscriptionResponse{
		ID:       s.ID,
		PlanID:   s.PlanID,
		PlanName: planName,
		Status:   string(s.Status),
		StartAt:  s.StartAt,
		EndAt:    s.EndAt,
		Reason:   s.Reason,
	}
}
