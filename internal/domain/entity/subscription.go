package entity

import "time"

// SubscriptionStatus estado de una suscripción.
type SubscriptionStatus string

const (
	SubscriptionActive SubscriptionStatus = "active"
	SubscriptionEnded  SubscriptionStatus = "ended"
)

// Motivos registrados en Subscription.Reason.
const (
	ReasonRegister   = "register"
	ReasonChangePlan = "change_plan"
)

// Subscription vincula un usuario con un plan durante un intervalo.
// Como máximo una suscripción activa por usuario (índice único parcial en subscriptions).
type Subscription struct {
	ID      string
	UserID  string
	PlanID  string
	Status  SubscriptionStatus
	StartAt time.Time
	EndAt   *time.Time // nil mientras está activa
	Reason  string
}

// NewSubscription construye una suscripción activa que inicia en now.
func NewSubscription(id, userID, planID, reason string, now time.Time) *Subscription {
	return &Subscription{
		ID:      id,
		UserID:  userID,
		PlanID:  planID,
		Status:  SubscriptionActive,
		StartAt: now,
		Reason:  reason,
	}
}

// IsActive informa si la suscripción está vigente.
func (s *Subscription) IsActive() bool {
	return s.Status == SubscriptionActive
}

// End cierra la suscripción con fecha de fin now.
func (s *Subscription) End(now time.Time) {
	s.Status = SubscriptionEnded
	end := now
	s.EndAt = &end
}
