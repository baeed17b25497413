package metrics_test

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Tenancy-api/internal/metrics"
)

func TestMetrics_RegistraContadores(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	m.RecordPlanChange("enforce", metrics.OutcomeChanged, 1, 2)
	m.RecordInviteTransition("accepted")
	m.RecordRefreshRotation("ok")
	m.RecordHTTPRequest("GET", "/health", 200, 3*time.Millisecond)

	n, err := testutil.GatherAndCount(reg,
		"tenancy_subscriptions_plan_changes_total",
		"tenancy_subscriptions_reconciled_members_total",
		"tenancy_invites_transitions_total",
	)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestMetrics_NilEsSeguro(t *testing.T) {
	var m *metrics.Metrics
	assert.NotPanics(t, func() {
		m.RecordPlanChange("block", metrics.OutcomeBlocked, 0, 0)
		m.RecordInviteTransition("expired")
		m.RecordRefreshRotation("invalid")
		m.RecordHTTPRequest("POST", "/x", 500, time.Second)
	})
}
