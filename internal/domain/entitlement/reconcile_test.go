package entitlement_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Tenancy-api/internal/domain"
	"github.com/jhoicas/Tenancy-api/internal/domain/entitlement"
	"github.com/jhoicas/Tenancy-api/internal/domain/entity"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

var t0 = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

func business(id string, createdAt time.Time, memberIDs ...string) *entity.Business {
	b := entity.NewBusiness(id, "owner", id, createdAt)
	for i, uid := range memberIDs {
		_, err := b.AddOrReactivate(uid, entity.RoleMember, createdAt.Add(time.Duration(i+1)*time.Minute))
		if err != nil {
			panic(err)
		}
	}
	return b
}

func activeIDs(bs []*entity.Business) []string {
	var out []string
	for _, b := range bs {
		if b.IsActive {
			out = append(out, b.ID)
		}
	}
	return out
}

func activeMemberIDs(b *entity.Business) []string {
	var out []string
	for _, m := range b.ActiveMembers() {
		out = append(out, m.UserID)
	}
	return out
}

// ──────────────────────────────────────────────────────────────────────────────
// Política Block
// ──────────────────────────────────────────────────────────────────────────────

func TestReconcile_BlockExcesoNegocios_NoMuta(t *testing.T) {
	bs := []*entity.Business{
		business("b1", t0),
		business("b2", t0.Add(time.Hour)),
	}
	before := []*entity.Business{bs[0].Clone(), bs[1].Clone()}

	res, err := entitlement.Reconcile(bs, entity.PlanLimits{MaxBusinesses: 1, MaxMembersPerBusiness: 5}, entitlement.PolicyBlock)

	require.ErrorIs(t, err, domain.ErrDowngradeBlocked)
	assert.False(t, res.Changed())
	assert.Equal(t, before, bs, "Block no debe tocar ningún negocio ni miembro")
}

func TestReconcile_BlockExcesoMiembros_NoMuta(t *testing.T) {
	bs := []*entity.Business{business("b1", t0, "u1", "u2")}
	before := bs[0].Clone()

	_, err := entitlement.Reconcile(bs, entity.PlanLimits{MaxBusinesses: 3, MaxMembersPerBusiness: 2}, entitlement.PolicyBlock)

	require.ErrorIs(t, err, domain.ErrDowngradeBlocked)
	assert.Equal(t, before, bs[0])
}

func TestReconcile_BlockDentroDeCuota_OK(t *testing.T) {
	bs := []*entity.Business{business("b1", t0, "u1")}

	res, err := entitlement.Reconcile(bs, entity.PlanLimits{MaxBusinesses: 1, MaxMembersPerBusiness: 2}, entitlement.PolicyBlock)

	require.NoError(t, err)
	assert.False(t, res.Changed())
}

func TestReconcile_BlockIgnoraMiembrosDeNegociosInactivos(t *testing.T) {
	b := business("b1", t0, "u1", "u2", "u3")
	b.Deactivate()

	_, err := entitlement.Reconcile([]*entity.Business{b}, entity.PlanLimits{MaxBusinesses: 1, MaxMembersPerBusiness: 1}, entitlement.PolicyBlock)

	assert.NoError(t, err, "los miembros de un negocio inactivo no cuentan")
}

// ──────────────────────────────────────────────────────────────────────────────
// Política Enforce: negocios
// ──────────────────────────────────────────────────────────────────────────────

// Ejemplo: plan con 1 negocio y 2 miembros; U tiene B1 (más antiguo) y B2 con 1 miembro cada uno.
func TestReconcile_EnforceConservaNegocioMasAntiguo(t *testing.T) {
	b1 := business("b1", t0)
	b2 := business("b2", t0.Add(time.Minute))
	bs := []*entity.Business{b2, b1} // el orden de entrada no importa

	res, err := entitlement.Reconcile(bs, entity.PlanLimits{MaxBusinesses: 1, MaxMembersPerBusiness: 2}, entitlement.PolicyEnforce)

	require.NoError(t, err)
	assert.True(t, b1.IsActive)
	assert.False(t, b2.IsActive)
	assert.Equal(t, []string{"b2"}, res.DeactivatedBusinesses)
	assert.Empty(t, res.DeactivatedMembers)
	assert.Len(t, b2.ActiveMembers(), 1, "desactivar el negocio no desactiva a sus miembros")
}

func TestReconcile_EnforcePreservaLosNMasAntiguos(t *testing.T) {
	var bs []*entity.Business
	for _, id := range []string{"b3", "b1", "b5", "b2", "b4"} {
		bs = append(bs, business(id, t0.Add(time.Duration(id[1]-'0')*time.Hour)))
	}

	_, err := entitlement.Reconcile(bs, entity.PlanLimits{MaxBusinesses: 3, MaxMembersPerBusiness: 5}, entitlement.PolicyEnforce)

	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"b1", "b2", "b3"}, activeIDs(bs))
}

func TestReconcile_EnforceEmpateCreatedAtUsaOrdenDeEntrada(t *testing.T) {
	bs := []*entity.Business{business("x", t0), business("y", t0), business("z", t0)}

	_, err := entitlement.Reconcile(bs, entity.PlanLimits{MaxBusinesses: 2, MaxMembersPerBusiness: 5}, entitlement.PolicyEnforce)

	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y"}, activeIDs(bs))
}

func TestReconcile_EnforceNoCuentaNegociosYaInactivos(t *testing.T) {
	old := business("old", t0)
	old.Deactivate()
	bs := []*entity.Business{old, business("a", t0.Add(time.Hour)), business("b", t0.Add(2*time.Hour))}

	res, err := entitlement.Reconcile(bs, entity.PlanLimits{MaxBusinesses: 2, MaxMembersPerBusiness: 5}, entitlement.PolicyEnforce)

	require.NoError(t, err)
	assert.False(t, res.Changed())
	assert.Equal(t, []string{"a", "b"}, activeIDs(bs))
}

// ──────────────────────────────────────────────────────────────────────────────
// Política Enforce: miembros
// ──────────────────────────────────────────────────────────────────────────────

func TestReconcile_EnforceOwnerSiempreSobrevive(t *testing.T) {
	b := business("b1", t0, "u1", "u2", "u3")
	// el owner se unió después de todos (no debería pasar, pero el orden no depende de la fecha)
	b.Member("owner").JoinedAt = t0.Add(24 * time.Hour)

	res, err := entitlement.Reconcile([]*entity.Business{b}, entity.PlanLimits{MaxBusinesses: 1, MaxMembersPerBusiness: 2}, entitlement.PolicyEnforce)

	require.NoError(t, err)
	assert.Equal(t, []string{"owner", "u1"}, activeMemberIDs(b))
	assert.ElementsMatch(t, []entitlement.MemberRef{
		{BusinessID: "b1", UserID: "u2"},
		{BusinessID: "b1", UserID: "u3"},
	}, res.DeactivatedMembers)
}

func TestReconcile_EnforceConservaMiembrosMasAntiguos(t *testing.T) {
	b := business("b1", t0, "u1", "u2", "u3")
	// u3 se unió antes que u1 y u2
	b.Member("u3").JoinedAt = t0.Add(30 * time.Second)

	_, err := entitlement.Reconcile([]*entity.Business{b}, entity.PlanLimits{MaxBusinesses: 1, MaxMembersPerBusiness: 3}, entitlement.PolicyEnforce)

	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"owner", "u3", "u1"}, activeMemberIDs(b))
	assert.False(t, b.Member("u2").IsActive())
	assert.Equal(t, t0.Add(2*time.Minute), b.Member("u2").JoinedAt, "JoinedAt se preserva al desactivar")
}

func TestReconcile_EnforceIgnoraMiembrosInactivos(t *testing.T) {
	b := business("b1", t0, "u1", "u2")
	require.NoError(t, b.DeactivateMember("u1"))

	res, err := entitlement.Reconcile([]*entity.Business{b}, entity.PlanLimits{MaxBusinesses: 1, MaxMembersPerBusiness: 2}, entitlement.PolicyEnforce)

	require.NoError(t, err)
	assert.False(t, res.Changed())
}

func TestReconcile_EnforceSoloRevisaMiembrosDeNegociosSobrevivientes(t *testing.T) {
	b1 := business("b1", t0, "u1")
	b2 := business("b2", t0.Add(time.Hour), "u1", "u2", "u3")

	res, err := entitlement.Reconcile([]*entity.Business{b1, b2}, entity.PlanLimits{MaxBusinesses: 1, MaxMembersPerBusiness: 2}, entitlement.PolicyEnforce)

	require.NoError(t, err)
	assert.Equal(t, []string{"b2"}, res.DeactivatedBusinesses)
	assert.Empty(t, res.DeactivatedMembers)
	assert.Len(t, b2.ActiveMembers(), 4, "los miembros del negocio desactivado quedan como estaban")
	assert.Equal(t, []string{"b2"}, res.ChangedBusinesses())
}

func TestReconcile_EnforceCumpleCuotas(t *testing.T) {
	bs := []*entity.Business{
		business("b1", t0, "a", "b", "c", "d"),
		business("b2", t0.Add(time.Hour), "a", "b"),
		business("b3", t0.Add(2*time.Hour), "a"),
	}
	limits := entity.PlanLimits{MaxBusinesses: 2, MaxMembersPerBusiness: 2}

	_, err := entitlement.Reconcile(bs, limits, entitlement.PolicyEnforce)
	require.NoError(t, err)

	active := 0
	for _, b := range bs {
		if !b.IsActive {
			continue
		}
		active++
		assert.LessOrEqual(t, len(b.ActiveMembers()), limits.MaxMembersPerBusiness)
		assert.True(t, b.Member("owner").IsActive())
	}
	assert.LessOrEqual(t, active, limits.MaxBusinesses)

	// Idempotente: una segunda pasada no cambia nada.
	res, err := entitlement.Reconcile(bs, limits, entitlement.PolicyEnforce)
	require.NoError(t, err)
	assert.False(t, res.Changed())
}

// ──────────────────────────────────────────────────────────────────────────────
// ParsePolicy
// ──────────────────────────────────────────────────────────────────────────────

func TestParsePolicy(t *testing.T) {
	p, err := entitlement.ParsePolicy("Enforce")
	require.NoError(t, err)
	assert.Equal(t, entitlement.PolicyEnforce, p)

	p, err = entitlement.ParsePolicy("")
	require.NoError(t, err)
	assert.Equal(t, entitlement.PolicyBlock, p, "por defecto se bloquea")

	_, err = entitlement.ParsePolicy("purge")
	assert.Error(t, err)
}
