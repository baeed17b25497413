package dto

import "time"

// ChangePlanRequest entrada para cambiar de plan.
type ChangePlanRequest struct {
	PlanID string `json:"plan_id" validate:"required,uuid"`
}

// SubscriptionResponse salida de una suscripción (activa o del historial).
type SubscriptionResponse struct {
	ID       string     `json:"id"`
	PlanID   string     `json:"plan_id"`
	PlanName string     `json:"plan_name"`
	Status   string     `json:"status"`
	StartAt  time.Time  `json:"start_at"`
	EndAt    *time.Time `json:"end_at,omitempty"`
	Reason   string     `json:"reason"`
}

// ChangePlanResponse resultado de un cambio de plan con lo que se desactivó al reconciliar.
type ChangePlanResponse struct {
	Subscription          SubscriptionResponse `json:"subscription"`
	Changed               bool                 `json:"changed"`
	DeactivatedBusinesses []string             `json:"deactivated_businesses"`
	DeactivatedMembers    []MemberRefResponse  `json:"deactivated_members"`
}

// MemberRefResponse referencia a una membresía desactivada.
type MemberRefResponse struct {
	BusinessID string `json:"business_id"`
	UserID     string `json:"user_id"`
}
