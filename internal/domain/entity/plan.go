package entity

// IDs fijos de los planes de sistema (sembrados por la migración inicial).
const (
	PlanFreeID     = "11111111-1111-1111-1111-111111111111"
	PlanProID      = "22222222-2222-2222-2222-222222222222"
	PlanBusinessID = "33333333-3333-3333-3333-333333333333"
)

// PlanLimits cuotas que otorga un plan.
type PlanLimits struct {
	MaxBusinesses         int
	MaxMembersPerBusiness int
}

// Plan representa un plan de suscripción del catálogo.
// Los planes de sistema (IsSystem) no se pueden eliminar.
type Plan struct {
	ID       string
	Name     string
	IsSystem bool
	IsActive bool
	Limits   PlanLimits
}
