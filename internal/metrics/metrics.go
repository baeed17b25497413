// Package metrics instrumentación Prometheus de las transiciones de suscripciones, invitaciones y credenciales.
package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Resultados de un cambio de plan.
const (
	OutcomeChanged   = "changed"
	OutcomeUnchanged = "unchanged"
	OutcomeBlocked   = "blocked"
	OutcomeError     = "error"
)

// Metrics contadores del núcleo de suscripciones y accesos.
type Metrics struct {
	planChanges        *prometheus.CounterVec
	reconciledBusiness prometheus.Counter
	reconciledMembers  prometheus.Counter
	inviteTransitions  *prometheus.CounterVec
	refreshRotations   *prometheus.CounterVec
	httpRequests       *prometheus.CounterVec
	httpDuration       *prometheus.HistogramVec
}

var (
	instance *Metrics
	once     sync.Once
)

// Get devuelve la instancia única registrada en el registry por defecto.
func Get() *Metrics {
	once.Do(func() {
		instance = New(prometheus.DefaultRegisterer)
	})
	return instance
}

// New crea los contadores y los registra en reg. Con reg nil no se registra nada (tests).
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		planChanges: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "tenancy",
				Subsystem: "subscriptions",
				Name:      "plan_changes_total",
				Help:      "Total plan change requests by policy and outcome",
			},
			[]string{"policy", "outcome"},
		),
		reconciledBusiness: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "tenancy",
				Subsystem: "subscriptions",
				Name:      "reconciled_businesses_total",
				Help:      "Total businesses deactivated by downgrade reconciliation",
			},
		),
		reconciledMembers: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "tenancy",
				Subsystem: "subscriptions",
				Name:      "reconciled_members_total",
				Help:      "Total memberships deactivated by downgrade reconciliation",
			},
		),
		inviteTransitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "tenancy",
				Subsystem: "invites",
				Name:      "transitions_total",
				Help:      "Total invite state transitions by target status",
			},
			[]string{"status"},
		),
		refreshRotations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "tenancy",
				Subsystem: "auth",
				Name:      "refresh_rotations_total",
				Help:      "Total refresh token rotations by result",
			},
			[]string{"result"},
		),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "tenancy",
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total HTTP requests handled by the API",
			},
			[]string{"method", "route", "status"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "tenancy",
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request duration observed at the API layer",
				Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
			},
			[]string{"method", "route"},
		),
	}
	if reg != nil {
		reg.MustRegister(
			m.planChanges, m.reconciledBusiness, m.reconciledMembers,
			m.inviteTransitions, m.refreshRotations, m.httpRequests, m.httpDuration,
		)
	}
	return m
}

// RecordPlanChange cuenta un cambio de plan y, si hubo reconciliación, lo desactivado.
func (m *Metrics) RecordPlanChange(policy, outcome string, businesses, members int) {
	if m == nil {
		return
	}
	m.planChanges.WithLabelValues(policy, outcome).Inc()
	m.reconciledBusiness.Add(float64(businesses))
	m.reconciledMembers.Add(float64(members))
}

// RecordInviteTransition cuenta una transición de invitación (pending, accepted, revoked, expired).
func (m *Metrics) RecordInviteTransition(status string) {
	if m == nil {
		return
	}
	m.inviteTransitions.WithLabelValues(status).Inc()
}

// RecordRefreshRotation cuenta una rotación (ok, invalid, expired).
func (m *Metrics) RecordRefreshRotation(result string) {
	if m == nil {
		return
	}
	m.refreshRotations.WithLabelValues(result).Inc()
}

// RecordHTTPRequest observa una petición HTTP ya respondida.
func (m *Metrics) RecordHTTPRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}
