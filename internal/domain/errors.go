package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrConflict           = errors.New("conflicto con el estado actual")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrInvalidCredentials = errors.New("credenciales inválidas")

	// Catálogo de planes y suscripciones.
	ErrPlanNotFound         = errors.New("plan no encontrado")
	ErrPlanNameExists       = errors.New("ya existe un plan con ese nombre")
	ErrPlanSystemProtected  = errors.New("no se puede eliminar un plan de sistema")
	ErrSubscriptionNotFound = errors.New("no hay suscripción activa")
	ErrDowngradeBlocked     = errors.New("el nuevo plan no admite los recursos actuales")

	// Negocios y membresías.
	ErrBusinessNotFound     = errors.New("negocio no encontrado")
	ErrBusinessLimitReached = errors.New("límite de negocios alcanzado para el plan")
	ErrMemberNotFound       = errors.New("miembro no encontrado")
	ErrMemberLimitReached   = errors.New("límite de miembros alcanzado para el negocio")
	ErrOwnerProtected       = errors.New("el owner no puede removerse ni cambiar de rol")

	// Invitaciones.
	ErrInviteNotFound = errors.New("invitación no encontrada")
	ErrInvalidStatus  = errors.New("la invitación no está pendiente")
	ErrInvalidToken   = errors.New("invitación inválida")
	ErrInviteExpired  = errors.New("invitación expirada")

	// Refresh tokens.
	ErrInvalidRefreshToken = errors.New("refresh token inválido")
	ErrExpiredRefreshToken = errors.New("refresh token expirado")
)
