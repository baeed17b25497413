package entity

import "time"

// RefreshToken credencial de renovación. Solo se persiste el hash del valor en claro.
type RefreshToken struct {
	ID        string
	UserID    string
	TokenHash string
	ExpiresAt time.Time
	CreatedAt time.Time
	RevokedAt *time.Time
}

// IsRevoked informa si el token fue revocado.
func (t *RefreshToken) IsRevoked() bool { return t.RevokedAt != nil }

// IsExpired informa si now alcanzó la expiración.
func (t *RefreshToken) IsExpired(now time.Time) bool { return !now.Before(t.ExpiresAt) }

// Usable: no revocado y no expirado. Revisar siempre ambas condiciones.
func (t *RefreshToken) Usable(now time.Time) bool {
	return !t.IsRevoked() && !t.IsExpired(now)
}

// Revoke marca el token como revocado en now.
func (t *RefreshToken) Revoke(now time.Time) {
	at := now
	t.RevokedAt = &at
}
