// Package memory implementa los puertos de persistencia en memoria.
// Cada llamada a Run trabaja sobre una copia del estado y la publica solo si fn no falla,
// con lo que las operaciones son atómicas y serializables (un único mutex).
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/Tenancy-api/internal/application/ports"
	"github.com/jhoicas/Tenancy-api/internal/domain/entity"
)

var _ ports.TxRunner = (*Store)(nil)

type state struct {
	users         map[string]*entity.User
	emailIndex    map[string]string // email -> user id
	plans         map[string]*entity.Plan
	planOrder     []string
	subs          map[string]*entity.Subscription
	subOrder      []string
	businesses    map[string]*entity.Business
	businessOrder []string
	invites       map[string]*entity.BusinessInvite
	refresh       map[string]*entity.RefreshToken
}

func newState() *state {
	return &state{
		users:      map[string]*entity.User{},
		emailIndex: map[string]string{},
		plans:      map[string]*entity.Plan{},
		subs:       map[string]*entity.Subscription{},
		businesses: map[string]*entity.Business{},
		invites:    map[string]*entity.BusinessInvite{},
		refresh:    map[string]*entity.RefreshToken{},
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.users {
		c.users[k] = copyUser(v)
	}
	for k, v := range s.emailIndex {
		c.emailIndex[k] = v
	}
	for k, v := range s.plans {
		c.plans[k] = copyPlan(v)
	}
	for k, v := range s.subs {
		c.subs[k] = copySubscription(v)
	}
	for k, v := range s.businesses {
		c.businesses[k] = v.Clone()
	}
	for k, v := range s.invites {
		c.invites[k] = copyInvite(v)
	}
	for k, v := range s.refresh {
		c.refresh[k] = copyRefresh(v)
	}
	c.planOrder = append([]string(nil), s.planOrder...)
	c.subOrder = append([]string(nil), s.subOrder...)
	c.businessOrder = append([]string(nil), s.businessOrder...)
	return c
}

// Store almacén en memoria. Implementa ports.TxRunner.
type Store struct {
	mu sync.Mutex
	st *state
}

// NewStore crea un almacén vacío con los planes de sistema sembrados.
func NewStore() *Store {
	st := newState()
	for _, p := range SystemPlans() {
		st.plans[p.ID] = copyPlan(p)
		st.planOrder = append(st.planOrder, p.ID)
	}
	return &Store{st: st}
}

// SystemPlans catálogo inicial (mismos ids y cuotas que la migración SQL).
func SystemPlans() []*entity.Plan {
	return []*entity.Plan{
		{ID: entity.PlanFreeID, Name: "Free", IsSystem: true, IsActive: true, Limits: entity.PlanLimits{MaxBusinesses: 1, MaxMembersPerBusiness: 2}},
		{ID: entity.PlanProID, Name: "Pro", IsSystem: true, IsActive: true, Limits: entity.PlanLimits{MaxBusinesses: 3, MaxMembersPerBusiness: 5}},
		{ID: entity.PlanBusinessID, Name: "Business", IsSystem: true, IsActive: true, Limits: entity.PlanLimits{MaxBusinesses: 10, MaxMembersPerBusiness: 20}},
	}
}

// Run ejecuta fn sobre una copia del estado; la copia reemplaza al estado solo si fn devuelve nil.
func (s *Store) Run(ctx context.Context, fn func(r ports.Repos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := s.st.clone()
	if err := fn(reposFor(tx)); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.st = tx
	return nil
}

func reposFor(st *state) ports.Repos {
	return ports.Repos{
		Users:         &userRepo{st: st},
		Plans:         &planRepo{st: st},
		Subscriptions: &subscriptionRepo{st: st},
		Businesses:    &businessRepo{st: st},
		Invites:       &inviteRepo{st: st},
		RefreshTokens: &refreshTokenRepo{st: st},
	}
}

func copyUser(u *entity.User) *entity.User {
	c := *u
	return &c
}

func copyPlan(p *entity.Plan) *entity.Plan {
	c := *p
	return &c
}

func copySubscription(s *entity.Subscription) *entity.Subscription {
	c := *s
	if s.EndAt != nil {
		end := *s.EndAt
		c.EndAt = &end
	}
	return &c
}

func copyInvite(i *entity.BusinessInvite) *entity.BusinessInvite {
	c := *i
	return &c
}

func copyRefresh(t *entity.RefreshToken) *entity.RefreshToken {
	c := *t
	if t.RevokedAt != nil {
		at := *t.RevokedAt
		c.RevokedAt = &at
	}
	return &c
}
