package invite

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Tenancy-api/internal/application/dto"
	"github.com/jhoicas/Tenancy-api/internal/application/ports"
	"github.com/jhoicas/Tenancy-api/internal/application/usecase"
	"github.com/jhoicas/Tenancy-api/internal/domain"
	"github.com/jhoicas/Tenancy-api/internal/domain/entity"
	"github.com/jhoicas/Tenancy-api/internal/metrics"
	"github.com/jhoicas/Tenancy-api/pkg/logger"
	"github.com/jhoicas/Tenancy-api/pkg/security"
	"github.com/jhoicas/Tenancy-api/pkg/validation"
)

// notifyTimeout límite para entregar la invitación por el canal externo.
const notifyTimeout = 10 * time.Second

// InviteUseCase ciclo de vida de las invitaciones a negocios.
type InviteUseCase struct {
	tx       ports.TxRunner
	notifier ports.InviteNotifier
	ttl      time.Duration
	log      *logger.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
}

// NewInviteUseCase construye el caso de uso. notifier puede ser nil (no se entrega nada).
func NewInviteUseCase(tx ports.TxRunner, notifier ports.InviteNotifier, ttl time.Duration, log *logger.Logger, m *metrics.Metrics) *InviteUseCase {
	return &InviteUseCase{
		tx:       tx,
		notifier: notifier,
		ttl:      ttl,
		log:      logger.OrNop(log).Component("invite"),
		metrics:  m,
		now:      time.Now,
	}
}

// SetClock reemplaza el reloj (tests).
func (uc *InviteUseCase) SetClock(now func() time.Time) { uc.now = now }

// Create emite una invitación pendiente. Solo owner o admin activos del negocio pueden invitar.
// Devuelve la vista y el token en claro; el token se entrega además por el notificador.
func (uc *InviteUseCase) Create(ctx context.Context, actorID string, in dto.CreateInviteRequest) (*dto.InviteResponse, string, error) {
	role := entity.MemberRole(in.RoleToGrant)
	if role != entity.RoleAdmin && role != entity.RoleMember {
		return nil, "", domain.ErrInvalidInput
	}
	email := validation.NormalizeEmail(in.InvitedEmail)
	if email == "" {
		return nil, "", domain.ErrInvalidInput
	}
	plain, err := security.NewToken()
	if err != nil {
		return nil, "", err
	}

	var (
		inv      *entity.BusinessInvite
		business *entity.Business
	)
	err = uc.tx.Run(ctx, func(r ports.Repos) error {
		var err error
		business, err = r.Businesses.GetByID(ctx, in.BusinessID)
		if err != nil {
			return err
		}
		if business == nil {
			return domain.ErrBusinessNotFound
		}
		if !business.HasActiveRole(actorID, entity.RoleOwner, entity.RoleAdmin) {
			return domain.ErrForbidden
		}
		now := uc.now().UTC()
		inv = &entity.BusinessInvite{
			ID:              uuid.New().String(),
			BusinessID:      business.ID,
			InvitedEmail:    email,
			InvitedByUserID: actorID,
			RoleToGrant:     role,
			TokenHash:       security.HashToken(plain),
			ExpiresAt:       now.Add(uc.ttl),
			Status:          entity.InvitePending,
			CreatedAt:       now,
		}
		return r.Invites.Create(ctx, inv)
	})
	if err != nil {
		return nil, "", err
	}
	uc.metrics.RecordInviteTransition(string(entity.InvitePending))
	uc.log.Info().Str("invite_id", inv.ID).Str("business_id", inv.BusinessID).Str("role", string(role)).Msg("invitación creada")

	uc.notify(ctx, ports.InviteMessage{
		InviteID:     inv.ID,
		BusinessName: business.Name,
		InvitedEmail: inv.InvitedEmail,
		Role:         string(inv.RoleToGrant),
		Token:        plain,
	})
	return toInviteResponse(inv), plain, nil
}

// Revoke pasa una invitación pendiente a revoked. Solo owner o admin activos del negocio.
func (uc *InviteUseCase) Revoke(ctx context.Context, actorID, inviteID string) error {
	err := uc.tx.Run(ctx, func(r ports.Repos) error {
		inv, err := r.Invites.GetByID(ctx, inviteID)
		if err != nil {
			return err
		}
		if inv == nil {
			return domain.ErrInviteNotFound
		}
		business, err := r.Businesses.GetByID(ctx, inv.BusinessID)
		if err != nil {
			return err
		}
		if business == nil {
			return domain.ErrBusinessNotFound
		}
		if !business.HasActiveRole(actorID, entity.RoleOwner, entity.RoleAdmin) {
			return domain.ErrForbidden
		}
		if err := inv.Revoke(); err != nil {
			return err
		}
		return r.Invites.UpdateStatus(ctx, inv)
	})
	if err != nil {
		return err
	}
	uc.metrics.RecordInviteTransition(string(entity.InviteRevoked))
	uc.log.Info().Str("invite_id", inviteID).Msg("invitación revocada")
	return nil
}

// Accept canjea el token: la invitación pasa a accepted y el usuario queda como miembro activo
// con el rol otorgado. La aceptación depende solo de poseer el token; el email invitado no se compara.
// Si la invitación venció, la transición a expired se confirma y se devuelve ErrInviteExpired.
func (uc *InviteUseCase) Accept(ctx context.Context, userID string, in dto.AcceptInviteRequest) (*dto.BusinessResponse, error) {
	var (
		business *entity.Business
		inv      *entity.BusinessInvite
		expired  bool
	)
	err := uc.tx.Run(ctx, func(r ports.Repos) error {
		var err error
		inv, err = r.Invites.GetByTokenHash(ctx, security.HashToken(in.Token))
		if err != nil {
			return err
		}
		if inv == nil {
			return domain.ErrInvalidToken
		}
		if !inv.IsPending() {
			return domain.ErrInvalidStatus
		}
		now := uc.now().UTC()
		if inv.IsExpired(now) {
			if err := inv.Expire(); err != nil {
				return err
			}
			if err := r.Invites.UpdateStatus(ctx, inv); err != nil {
				return err
			}
			expired = true
			return nil
		}
		business, err = usecase.LockBusiness(ctx, r, inv.BusinessID)
		if err != nil {
			return err
		}
		user, err := r.Users.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		if user == nil {
			return domain.ErrUserNotFound
		}
		if err := inv.Accept(); err != nil {
			return err
		}
		if err := r.Invites.UpdateStatus(ctx, inv); err != nil {
			return err
		}
		if _, err := business.AddOrReactivate(userID, inv.RoleToGrant, now); err != nil {
			return err
		}
		return r.Businesses.Save(ctx, business)
	})
	if err != nil {
		return nil, err
	}
	if expired {
		uc.metrics.RecordInviteTransition(string(entity.InviteExpired))
		uc.log.Info().Str("invite_id", inv.ID).Msg("invitación expirada al intentar aceptarla")
		return nil, domain.ErrInviteExpired
	}
	uc.metrics.RecordInviteTransition(string(entity.InviteAccepted))
	uc.log.Info().Str("invite_id", inv.ID).Str("business_id", business.ID).Str("user_id", userID).Msg("invitación aceptada")
	return usecase.BusinessToResponse(business), nil
}

// notify entrega la invitación fuera de banda. Un fallo no deshace la invitación: se registra y el
// llamador ya tiene el token.
func (uc *InviteUseCase) notify(ctx context.Context, msg ports.InviteMessage) {
	if uc.notifier == nil {
		return
	}
	nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	defer cancel()
	if err := uc.notifier.SendInvite(nctx, msg); err != nil {
		uc.log.Warn().Err(err).
			Str("invite_id", msg.InviteID).
			Str("email", msg.InvitedEmail).
			Bool("timeout", errors.Is(err, context.DeadlineExceeded)).
			Msg("no se pudo enviar la invitación")
	}
}

func toInviteResponse(i *entity.BusinessInvite) *dto.InviteResponse {
	return &dto.InviteResponse{
		ID:           i.ID,
		BusinessID:   i.BusinessID,
		InvitedEmail: i.InvitedEmail,
		RoleToGrant:  string(i.RoleToGrant),
		ExpiresAt:    i.ExpiresAt,
		Status:       string(i.Status),
	}
}
