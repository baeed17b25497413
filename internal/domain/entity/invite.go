package entity

import (
	"time"

	"github.com/jhoicas/Tenancy-api/internal/domain"
)

// InviteStatus estado de una invitación. pending -> {accepted, revoked, expired}; los finales son absorbentes.
type InviteStatus string

const (
	InvitePending  InviteStatus = "pending"
	InviteAccepted InviteStatus = "accepted"
	InviteRevoked  InviteStatus = "revoked"
	InviteExpired  InviteStatus = "expired"
)

// BusinessInvite invitación a un negocio protegida por un token de un solo uso (solo se guarda el hash).
type BusinessInvite struct {
	ID              string
	BusinessID      string
	InvitedEmail    string
	InvitedByUserID string
	RoleToGrant     MemberRole
	TokenHash       string
	ExpiresAt       time.Time
	Status          InviteStatus
	CreatedAt       time.Time
}

// IsPending informa si la invitación sigue pendiente.
func (i *BusinessInvite) IsPending() bool { return i.Status == InvitePending }

// IsExpired informa si now alcanzó la fecha de expiración.
func (i *BusinessInvite) IsExpired(now time.Time) bool { return !now.Before(i.ExpiresAt) }

// Accept pending -> accepted.
func (i *BusinessInvite) Accept() error { return i.transition(InviteAccepted) }

// Revoke pending -> revoked.
func (i *BusinessInvite) Revoke() error { return i.transition(InviteRevoked) }

// Expire pending -> expired.
func (i *BusinessInvite) Expire() error { return i.transition(InviteExpired) }

func (i *BusinessInvite) transition(to InviteStatus) error {
	if i.Status != InvitePending {
		return domain.ErrInvalidStatus
	}
	i.Status = to
	return nil
}
