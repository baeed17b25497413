package dto

// PlanRequest entrada para crear o actualizar un plan.
type PlanRequest struct {
	Name                  string `json:"name" validate:"required,max=100"`
	IsActive              bool   `json:"is_active"`
	MaxBusinesses         int    `json:"max_businesses" validate:"gt=0"`
	MaxMembersPerBusiness int    `json:"max_members_per_business" validate:"gt=0"`
}

// PlanResponse salida de un plan del catálogo.
type PlanResponse struct {
	ID                    string `json:"id"`
	Name                  string `json:"name"`
	IsSystem              bool   `json:"is_system"`
	IsActive              bool   `json:"is_active"`
	MaxBusinesses         int    `json:"max_businesses"`
	MaxMembersPerBusiness int    `json:"max_members_per_business"`
}
