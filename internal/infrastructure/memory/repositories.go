package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/jhoicas/Tenancy-api/internal/domain"
	"github.com/jhoicas/Tenancy-api/internal/domain/entity"
	"github.com/jhoicas/Tenancy-api/internal/domain/repository"
)

var (
	_ repository.UserRepository         = (*userRepo)(nil)
	_ repository.PlanRepository         = (*planRepo)(nil)
	_ repository.SubscriptionRepository = (*subscriptionRepo)(nil)
	_ repository.BusinessRepository     = (*businessRepo)(nil)
	_ repository.InviteRepository       = (*inviteRepo)(nil)
	_ repository.RefreshTokenRepository = (*refreshTokenRepo)(nil)
)

// ── Usuarios ─────────────────────────────────────────────────────────────────

type userRepo struct{ st *state }

func (r *userRepo) Create(_ context.Context, u *entity.User) error {
	if _, ok := r.st.emailIndex[u.Email]; ok {
		return domain.ErrEmailAlreadyExists
	}
	r.st.users[u.ID] = copyUser(u)
	r.st.emailIndex[u.Email] = u.ID
	return nil
}

func (r *userRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	u, ok := r.st.users[id]
	if !ok {
		return nil, nil
	}
	return copyUser(u), nil
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	id, ok := r.st.emailIndex[email]
	if !ok {
		return nil, nil
	}
	return r.GetByID(ctx, id)
}

func (r *userRepo) Update(_ context.Context, u *entity.User) error {
	cur, ok := r.st.users[u.ID]
	if !ok {
		return domain.ErrUserNotFound
	}
	cur.PasswordHash = u.PasswordHash
	cur.IsAdmin = u.IsAdmin
	return nil
}

// LockForUpdate no hace nada: Run ya serializa todas las operaciones.
func (r *userRepo) LockForUpdate(_ context.Context, id string) error {
	if _, ok := r.st.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	return nil
}

// ── Planes ───────────────────────────────────────────────────────────────────

type planRepo struct{ st *state }

func (r *planRepo) Create(_ context.Context, p *entity.Plan) error {
	for _, cur := range r.st.plans {
		if cur.Name == p.Name {
			return domain.ErrPlanNameExists
		}
	}
	r.st.plans[p.ID] = copyPlan(p)
	r.st.planOrder = append(r.st.planOrder, p.ID)
	return nil
}

func (r *planRepo) GetByID(_ context.Context, id string) (*entity.Plan, error) {
	p, ok := r.st.plans[id]
	if !ok {
		return nil, nil
	}
	return copyPlan(p), nil
}

func (r *planRepo) GetByName(_ context.Context, name string) (*entity.Plan, error) {
	for _, p := range r.st.plans {
		if p.Name == name {
			return copyPlan(p), nil
		}
	}
	return nil, nil
}

func (r *planRepo) List(_ context.Context) ([]*entity.Plan, error) {
	out := make([]*entity.Plan, 0, len(r.st.planOrder))
	for _, id := range r.st.planOrder {
		out = append(out, copyPlan(r.st.plans[id]))
	}
	return out, nil
}

func (r *planRepo) Update(_ context.Context, p *entity.Plan) error {
	if _, ok := r.st.plans[p.ID]; !ok {
		return domain.ErrPlanNotFound
	}
	for id, cur := range r.st.plans {
		if id != p.ID && cur.Name == p.Name {
			return domain.ErrPlanNameExists
		}
	}
	r.st.plans[p.ID] = copyPlan(p)
	return nil
}

func (r *planRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.st.plans[id]; !ok {
		return domain.ErrPlanNotFound
	}
	for _, s := range r.st.subs {
		if s.PlanID == id {
			return fmt.Errorf("plan %s referenciado por suscripciones: %w", id, domain.ErrConflict)
		}
	}
	delete(r.st.plans, id)
	r.st.planOrder = without(r.st.planOrder, id)
	return nil
}

// ── Suscripciones ────────────────────────────────────────────────────────────

type subscriptionRepo struct{ st *state }

func (r *subscriptionRepo) Create(_ context.Context, s *entity.Subscription) error {
	if s.IsActive() {
		for _, cur := range r.st.subs {
			if cur.UserID == s.UserID && cur.IsActive() {
				return fmt.Errorf("usuario %s ya tiene suscripción activa: %w", s.UserID, domain.ErrConflict)
			}
		}
	}
	r.st.subs[s.ID] = copySubscription(s)
	r.st.subOrder = append(r.st.subOrder, s.ID)
	return nil
}

func (r *subscriptionRepo) Update(_ context.Context, s *entity.Subscription) error {
	cur, ok := r.st.subs[s.ID]
	if !ok {
		return domain.ErrSubscriptionNotFound
	}
	next := copySubscription(s)
	next.UserID, next.PlanID, next.StartAt = cur.UserID, cur.PlanID, cur.StartAt
	r.st.subs[s.ID] = next
	return nil
}

func (r *subscriptionRepo) GetActiveByUser(ctx context.Context, userID string) (*entity.Subscription, error) {
	list, _ := r.ListByUser(ctx, userID)
	for _, s := range list {
		if s.IsActive() {
			return s, nil
		}
	}
	return nil, nil
}

// ListByUser historial por StartAt descendente; a igual StartAt, la más reciente primero.
func (r *subscriptionRepo) ListByUser(_ context.Context, userID string) ([]*entity.Subscription, error) {
	var out []*entity.Subscription
	for i := len(r.st.subOrder) - 1; i >= 0; i-- {
		s := r.st.subs[r.st.subOrder[i]]
		if s.UserID == userID {
			out = append(out, copySubscription(s))
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartAt.After(out[j].StartAt) })
	return out, nil
}

// ── Negocios ─────────────────────────────────────────────────────────────────

type businessRepo struct{ st *state }

func (r *businessRepo) Create(_ context.Context, b *entity.Business) error {
	if _, ok := r.st.businesses[b.ID]; ok {
		return domain.ErrDuplicate
	}
	stored := b.Clone()
	stored.MarkPersisted()
	r.st.businesses[b.ID] = stored
	r.st.businessOrder = append(r.st.businessOrder, b.ID)
	b.MarkPersisted()
	return nil
}

func (r *businessRepo) GetByID(_ context.Context, id string) (*entity.Business, error) {
	b, ok := r.st.businesses[id]
	if !ok {
		return nil, nil
	}
	return b.Clone(), nil
}

func (r *businessRepo) OwnerOf(_ context.Context, id string) (string, error) {
	if b, ok := r.st.businesses[id]; ok {
		return b.OwnerUserID, nil
	}
	return "", nil
}

func (r *businessRepo) ListByOwner(_ context.Context, ownerUserID string) ([]*entity.Business, error) {
	var out []*entity.Business
	for _, id := range r.st.businessOrder {
		if b := r.st.businesses[id]; b.OwnerUserID == ownerUserID {
			out = append(out, b.Clone())
		}
	}
	return out, nil
}

func (r *businessRepo) CountActiveByOwner(_ context.Context, ownerUserID string) (int, error) {
	n := 0
	for _, b := range r.st.businesses {
		if b.OwnerUserID == ownerUserID && b.IsActive {
			n++
		}
	}
	return n, nil
}

// Save aplica nombre, estado y solo los miembros con cambios; conserva el orden de ingreso y
// agrega al final los nuevos.
func (r *businessRepo) Save(_ context.Context, b *entity.Business) error {
	cur, ok := r.st.businesses[b.ID]
	if !ok {
		return domain.ErrBusinessNotFound
	}
	next := cur.Clone()
	next.Name = b.Name
	next.IsActive = b.IsActive
	for _, m := range b.ChangedMembers() {
		mc := *m
		replaced := false
		for i, existing := range next.Members {
			if existing.UserID == m.UserID {
				next.Members[i] = &mc
				replaced = true
				break
			}
		}
		if !replaced {
			next.Members = append(next.Members, &mc)
		}
	}
	next.MarkPersisted()
	r.st.businesses[b.ID] = next
	b.MarkPersisted()
	return nil
}

// ── Invitaciones ─────────────────────────────────────────────────────────────

type inviteRepo struct{ st *state }

func (r *inviteRepo) Create(_ context.Context, inv *entity.BusinessInvite) error {
	for _, cur := range r.st.invites {
		if cur.TokenHash == inv.TokenHash {
			return domain.ErrDuplicate
		}
	}
	r.st.invites[inv.ID] = copyInvite(inv)
	return nil
}

func (r *inviteRepo) GetByID(_ context.Context, id string) (*entity.BusinessInvite, error) {
	inv, ok := r.st.invites[id]
	if !ok {
		return nil, nil
	}
	return copyInvite(inv), nil
}

func (r *inviteRepo) GetByTokenHash(_ context.Context, tokenHash string) (*entity.BusinessInvite, error) {
	for _, inv := range r.st.invites {
		if inv.TokenHash == tokenHash {
			return copyInvite(inv), nil
		}
	}
	return nil, nil
}

func (r *inviteRepo) UpdateStatus(_ context.Context, inv *entity.BusinessInvite) error {
	cur, ok := r.st.invites[inv.ID]
	if !ok {
		return domain.ErrInviteNotFound
	}
	if !cur.IsPending() {
		return domain.ErrInvalidStatus
	}
	cur.Status = inv.Status
	return nil
}

// ── Refresh tokens ───────────────────────────────────────────────────────────

type refreshTokenRepo struct{ st *state }

func (r *refreshTokenRepo) Create(_ context.Context, t *entity.RefreshToken) error {
	for _, cur := range r.st.refresh {
		if cur.TokenHash == t.TokenHash {
			return domain.ErrDuplicate
		}
	}
	r.st.refresh[t.ID] = copyRefresh(t)
	return nil
}

func (r *refreshTokenRepo) GetActiveByHash(_ context.Context, tokenHash string) (*entity.RefreshToken, error) {
	for _, t := range r.st.refresh {
		if t.TokenHash == tokenHash && !t.IsRevoked() {
			return copyRefresh(t), nil
		}
	}
	return nil, nil
}

func (r *refreshTokenRepo) GetByHashAndUser(_ context.Context, tokenHash, userID string) (*entity.RefreshToken, error) {
	for _, t := range r.st.refresh {
		if t.TokenHash == tokenHash && t.UserID == userID {
			return copyRefresh(t), nil
		}
	}
	return nil, nil
}

func (r *refreshTokenRepo) Revoke(_ context.Context, t *entity.RefreshToken) error {
	cur, ok := r.st.refresh[t.ID]
	if !ok || cur.IsRevoked() {
		return domain.ErrInvalidRefreshToken
	}
	if t.RevokedAt == nil {
		return fmt.Errorf("revoke refresh token %s: RevokedAt vacío", t.ID)
	}
	at := *t.RevokedAt
	cur.RevokedAt = &at
	return nil
}

func without(ids []string, id string) []string {
	out := ids[:0:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
