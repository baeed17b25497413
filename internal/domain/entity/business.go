package entity

import (
	"time"

	"github.com/jhoicas/Tenancy-api/internal/domain"
)

// MemberRole rol de un usuario dentro de un negocio.
type MemberRole string

const (
	RoleOwner  MemberRole = "owner"
	RoleAdmin  MemberRole = "admin"
	RoleMember MemberRole = "member"
)

// Valid informa si el rol es uno de los conocidos.
func (r MemberRole) Valid() bool {
	switch r {
	case RoleOwner, RoleAdmin, RoleMember:
		return true
	}
	return false
}

// MemberStatus estado de una membresía. Las bajas son lógicas: nunca se borra la fila.
type MemberStatus string

const (
	MemberActive   MemberStatus = "active"
	MemberInactive MemberStatus = "inactive"
)

// BusinessMember membresía de un usuario en un negocio (identidad compuesta business+user).
type BusinessMember struct {
	BusinessID string
	UserID     string
	Role       MemberRole
	Status     MemberStatus
	JoinedAt   time.Time

	// changed: rol o estado modificados desde la última carga/persistencia.
	changed bool
}

// IsActive informa si la membresía está activa.
func (m *BusinessMember) IsActive() bool { return m.Status == MemberActive }

// IsOwner informa si el miembro es el owner del negocio.
func (m *BusinessMember) IsOwner() bool { return m.Role == RoleOwner }

// Deactivate baja lógica; JoinedAt se conserva para el orden de desempate.
func (m *BusinessMember) Deactivate() { m.setStatus(MemberInactive) }

// Activate reactiva la membresía.
func (m *BusinessMember) Activate() { m.setStatus(MemberActive) }

// Changed informa si el miembro tiene cambios sin persistir.
func (m *BusinessMember) Changed() bool { return m.changed }

func (m *BusinessMember) setStatus(st MemberStatus) {
	if m.Status != st {
		m.Status = st
		m.changed = true
	}
}

func (m *BusinessMember) setRole(r MemberRole) {
	if m.Role != r {
		m.Role = r
		m.changed = true
	}
}

// Business representa un negocio (tenant) con su colección ordenada de miembros.
// El orden de Members es el orden de ingreso.
type Business struct {
	ID          string
	OwnerUserID string
	Name        string
	IsActive    bool
	CreatedAt   time.Time
	Members     []*BusinessMember
}

// NewBusiness construye un negocio activo cuyo único miembro es el owner.
func NewBusiness(id, ownerUserID, name string, now time.Time) *Business {
	return &Business{
		ID:          id,
		OwnerUserID: ownerUserID,
		Name:        name,
		IsActive:    true,
		CreatedAt:   now,
		Members: []*BusinessMember{{
			BusinessID: id,
			UserID:     ownerUserID,
			Role:       RoleOwner,
			Status:     MemberActive,
			JoinedAt:   now,
		}},
	}
}

// Deactivate desactiva el negocio. No toca a los miembros.
func (b *Business) Deactivate() { b.IsActive = false }

// Activate reactiva el negocio.
func (b *Business) Activate() { b.IsActive = true }

// Member devuelve la membresía del usuario o nil.
func (b *Business) Member(userID string) *BusinessMember {
	for _, m := range b.Members {
		if m.UserID == userID {
			return m
		}
	}
	return nil
}

// ActiveMembers devuelve los miembros activos en orden de ingreso.
func (b *Business) ActiveMembers() []*BusinessMember {
	out := make([]*BusinessMember, 0, len(b.Members))
	for _, m := range b.Members {
		if m.IsActive() {
			out = append(out, m)
		}
	}
	return out
}

// HasActiveRole informa si userID tiene una membresía activa con alguno de los roles.
func (b *Business) HasActiveRole(userID string, roles ...MemberRole) bool {
	m := b.Member(userID)
	if m == nil || !m.IsActive() {
		return false
	}
	for _, r := range roles {
		if m.Role == r {
			return true
		}
	}
	return false
}

// AddOrReactivate crea la membresía activa si no existe; si existe (activa o no) fija el rol y la activa.
// Es el punto donde convergen re-invitación y aceptación de invitaciones.
// Nunca otorga Owner, y si el usuario ya es owner su membresía queda intacta.
func (b *Business) AddOrReactivate(userID string, role MemberRole, now time.Time) (*BusinessMember, error) {
	if role == RoleOwner {
		return nil, domain.ErrOwnerProtected
	}
	if !role.Valid() {
		return nil, domain.ErrInvalidInput
	}
	if m := b.Member(userID); m != nil {
		if m.IsOwner() {
			m.Activate()
			return m, nil
		}
		m.setRole(role)
		m.Activate()
		return m, nil
	}
	m := &BusinessMember{
		BusinessID: b.ID,
		UserID:     userID,
		Role:       role,
		Status:     MemberActive,
		JoinedAt:   now,
		changed:    true,
	}
	b.Members = append(b.Members, m)
	return m, nil
}

// DeactivateMember baja lógica de un miembro. El owner está protegido.
func (b *Business) DeactivateMember(userID string) error {
	m := b.Member(userID)
	if m == nil {
		return domain.ErrMemberNotFound
	}
	if m.IsOwner() {
		return domain.ErrOwnerProtected
	}
	m.Deactivate()
	return nil
}

// ChangeMemberRole cambia el rol de un miembro. El owner no puede cambiar de rol
// y nadie puede recibir Owner por esta vía.
func (b *Business) ChangeMemberRole(userID string, role MemberRole) error {
	m := b.Member(userID)
	if m == nil {
		return domain.ErrMemberNotFound
	}
	if m.IsOwner() || role == RoleOwner {
		return domain.ErrOwnerProtected
	}
	if !role.Valid() {
		return domain.ErrInvalidInput
	}
	m.setRole(role)
	return nil
}

// ChangedMembers miembros con cambios sin persistir, en orden de ingreso.
func (b *Business) ChangedMembers() []*BusinessMember {
	var out []*BusinessMember
	for _, m := range b.Members {
		if m.changed {
			out = append(out, m)
		}
	}
	return out
}

// MarkPersisted limpia las marcas de cambio; lo llama el repositorio tras guardar.
func (b *Business) MarkPersisted() {
	for _, m := range b.Members {
		m.changed = false
	}
}

// Clone copia profunda del agregado (miembros incluidos).
func (b *Business) Clone() *Business {
	c := *b
	c.Members = make([]*BusinessMember, len(b.Members))
	for i, m := range b.Members {
		mc := *m
		c.Members[i] = &mc
	}
	return &c
}
