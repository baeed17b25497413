package dto

import "time"

// CreateBusinessRequest entrada para crear un negocio.
type CreateBusinessRequest struct {
	Name string `json:"name" validate:"required,max=200"`
}

// AddMemberRequest entrada para agregar (o reactivar) un miembro.
type AddMemberRequest struct {
	UserID string `json:"user_id" validate:"required,uuid"`
	Role   string `json:"role" validate:"required,member_role"`
}

// ChangeMemberRoleRequest entrada para cambiar el rol de un miembro.
type ChangeMemberRoleRequest struct {
	Role string `json:"role" validate:"required,member_role"`
}

// BusinessResponse salida de un negocio con sus miembros en orden de ingreso.
type BusinessResponse struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	IsActive    bool             `json:"is_active"`
	CreatedAt   time.Time        `json:"created_at"`
	OwnerUserID string           `json:"owner_user_id"`
	Members     []MemberResponse `json:"members"`
}

// MemberResponse salida de una membresía.
type MemberResponse struct {
	UserID   string    `json:"user_id"`
	Role     string    `json:"role"`
	IsActive bool      `json:"is_active"`
	JoinedAt time.Time `json:"joined_at"`
}
