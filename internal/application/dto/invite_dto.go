package dto

import "time"

// CreateInviteRequest entrada para invitar a un email a un negocio.
type CreateInviteRequest struct {
	BusinessID   string `json:"business_id" validate:"required,uuid"`
	InvitedEmail string `json:"invited_email" validate:"required,email,max=320"`
	RoleToGrant  string `json:"role_to_grant" validate:"required,member_role"`
}

// AcceptInviteRequest entrada para aceptar una invitación con su token.
type AcceptInviteRequest struct {
	Token string `json:"token" validate:"required"`
}

// InviteResponse salida de una invitación. Nunca incluye el token ni su hash.
type InviteResponse struct {
	ID           string    `json:"id"`
	BusinessID   string    `json:"business_id"`
	InvitedEmail string    `json:"invited_email"`
	RoleToGrant  string    `json:"role_to_grant"`
	ExpiresAt    time.Time `json:"expires_at"`
	Status       string    `json:"status"`
}

// CreateInviteResponse salida al crear una invitación. Token solo viaja cuando el servidor
// expone tokens (desarrollo); en producción se entrega únicamente por correo.
type CreateInviteResponse struct {
	Invite InviteResponse `json:"invite"`
	Token  string         `json:"token,omitempty"`
}
