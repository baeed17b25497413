package entity

import "time"

// User representa una cuenta del sistema. Solo PasswordHash e IsAdmin son mutables.
type User struct {
	ID           string
	Email        string
	PasswordHash string // bcrypt hash, nunca plano en dominio después de persistir
	IsAdmin      bool
	CreatedAt    time.Time
}
