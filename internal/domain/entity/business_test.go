package entity_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Tenancy-api/internal/domain"
	"github.com/jhoicas/Tenancy-api/internal/domain/entity"
)

var now = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func TestNewBusiness_CreaOwnerActivo(t *testing.T) {
	b := entity.NewBusiness("b1", "owner", "Tienda", now)

	require.Len(t, b.Members, 1)
	owner := b.Members[0]
	assert.Equal(t, entity.RoleOwner, owner.Role)
	assert.True(t, owner.IsActive())
	assert.Equal(t, now, owner.JoinedAt)
	assert.True(t, b.IsActive)
}

func TestAddOrReactivate_CreaYReactiva(t *testing.T) {
	b := entity.NewBusiness("b1", "owner", "Tienda", now)

	m, err := b.AddOrReactivate("u1", entity.RoleMember, now.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, entity.RoleMember, m.Role)
	assert.True(t, m.IsActive())

	require.NoError(t, b.DeactivateMember("u1"))
	assert.False(t, b.Member("u1").IsActive())

	// Re-invitación: misma fila, nuevo rol, JoinedAt intacto.
	m, err = b.AddOrReactivate("u1", entity.RoleAdmin, now.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, entity.RoleAdmin, m.Role)
	assert.True(t, m.IsActive())
	assert.Equal(t, now.Add(time.Minute), m.JoinedAt)
	assert.Len(t, b.Members, 2)
}

func TestAddOrReactivate_NoDegradaAlOwner(t *testing.T) {
	b := entity.NewBusiness("b1", "owner", "Tienda", now)

	m, err := b.AddOrReactivate("owner", entity.RoleMember, now)
	require.NoError(t, err)
	assert.Equal(t, entity.RoleOwner, m.Role)

	_, err = b.AddOrReactivate("u2", entity.RoleOwner, now)
	assert.ErrorIs(t, err, domain.ErrOwnerProtected)

	_, err = b.AddOrReactivate("u2", entity.MemberRole("root"), now)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestDeactivateMember_OwnerProtegido(t *testing.T) {
	b := entity.NewBusiness("b1", "owner", "Tienda", now)

	assert.ErrorIs(t, b.DeactivateMember("owner"), domain.ErrOwnerProtected)
	assert.ErrorIs(t, b.DeactivateMember("nadie"), domain.ErrMemberNotFound)
	assert.True(t, b.Member("owner").IsActive())
}

func TestChangeMemberRole(t *testing.T) {
	b := entity.NewBusiness("b1", "owner", "Tienda", now)
	_, err := b.AddOrReactivate("u1", entity.RoleMember, now)
	require.NoError(t, err)

	require.NoError(t, b.ChangeMemberRole("u1", entity.RoleAdmin))
	assert.Equal(t, entity.RoleAdmin, b.Member("u1").Role)

	assert.ErrorIs(t, b.ChangeMemberRole("owner", entity.RoleAdmin), domain.ErrOwnerProtected)
	assert.ErrorIs(t, b.ChangeMemberRole("u1", entity.RoleOwner), domain.ErrOwnerProtected)
	assert.ErrorIs(t, b.ChangeMemberRole("nadie", entity.RoleAdmin), domain.ErrMemberNotFound)
}

func TestHasActiveRole(t *testing.T) {
	b := entity.NewBusiness("b1", "owner", "Tienda", now)
	_, _ = b.AddOrReactivate("admin", entity.RoleAdmin, now)
	_, _ = b.AddOrReactivate("m", entity.RoleMember, now)

	assert.True(t, b.HasActiveRole("owner", entity.RoleOwner, entity.RoleAdmin))
	assert.True(t, b.HasActiveRole("admin", entity.RoleOwner, entity.RoleAdmin))
	assert.False(t, b.HasActiveRole("m", entity.RoleOwner, entity.RoleAdmin))

	require.NoError(t, b.DeactivateMember("admin"))
	assert.False(t, b.HasActiveRole("admin", entity.RoleOwner, entity.RoleAdmin), "un admin inactivo no cuenta")
}

func TestClone_EsCopiaProfunda(t *testing.T) {
	b := entity.NewBusiness("b1", "owner", "Tienda", now)
	c := b.Clone()
	c.Members[0].Status = entity.MemberInactive
	c.Deactivate()

	assert.True(t, b.Members[0].IsActive())
	assert.True(t, b.IsActive)
}

func TestChangedMembers_SoloLoModificado(t *testing.T) {
	b := entity.NewBusiness("b1", "owner", "Tienda", now)
	_, _ = b.AddOrReactivate("u1", entity.RoleMember, now)
	_, _ = b.AddOrReactivate("u2", entity.RoleMember, now)
	require.Len(t, b.ChangedMembers(), 2, "los miembros nuevos cuentan como cambios")

	b.MarkPersisted()
	assert.Empty(t, b.ChangedMembers())

	// sin cambio real no hay nada que guardar
	_, _ = b.AddOrReactivate("owner", entity.RoleMember, now)
	_, _ = b.AddOrReactivate("u1", entity.RoleMember, now)
	require.NoError(t, b.ChangeMemberRole("u2", entity.RoleMember))
	assert.Empty(t, b.ChangedMembers())

	require.NoError(t, b.DeactivateMember("u2"))
	require.NoError(t, b.ChangeMemberRole("u1", entity.RoleAdmin))
	changed := b.ChangedMembers()
	require.Len(t, changed, 2)
	assert.Equal(t, "u1", changed[0].UserID, "en orden de ingreso")
	assert.Equal(t, "u2", changed[1].UserID)
	assert.True(t, b.Clone().Member("u1").Changed(), "Clone conserva las marcas")
}

// ── Invitaciones ──────────────────────────────────────────────────────────────

func TestInvite_TransicionesSoloDesdePending(t *testing.T) {
	inv := &entity.BusinessInvite{Status: entity.InvitePending, ExpiresAt: now.Add(time.Hour)}

	require.NoError(t, inv.Accept())
	assert.Equal(t, entity.InviteAccepted, inv.Status)

	assert.ErrorIs(t, inv.Revoke(), domain.ErrInvalidStatus)
	assert.ErrorIs(t, inv.Expire(), domain.ErrInvalidStatus)
	assert.ErrorIs(t, inv.Accept(), domain.ErrInvalidStatus)
	assert.Equal(t, entity.InviteAccepted, inv.Status, "los estados finales son absorbentes")
}

func TestInvite_IsExpiredEnElLimite(t *testing.T) {
	inv := &entity.BusinessInvite{ExpiresAt: now}

	assert.False(t, inv.IsExpired(now.Add(-time.Nanosecond)))
	assert.True(t, inv.IsExpired(now))
}

// ── Refresh tokens ────────────────────────────────────────────────────────────

func TestRefreshToken_Usable(t *testing.T) {
	tok := &entity.RefreshToken{ExpiresAt: now.Add(time.Hour)}
	assert.True(t, tok.Usable(now))
	assert.False(t, tok.Usable(now.Add(time.Hour)), "expirado aunque no esté revocado")

	tok.Revoke(now)
	assert.True(t, tok.IsRevoked())
	assert.False(t, tok.Usable(now))
}

func TestSubscription_End(t *testing.T) {
	s := entity.NewSubscription("s1", "u1", entity.PlanFreeID, entity.ReasonRegister, now)
	assert.True(t, s.IsActive())
	assert.Nil(t, s.EndAt)

	s.End(now.Add(time.Hour))
	assert.Equal(t, entity.SubscriptionEnded, s.Status)
	require.NotNil(t, s.EndAt)
	assert.Equal(t, now.Add(time.Hour), *s.EndAt)
}
