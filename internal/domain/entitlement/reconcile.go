package entitlement

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jhoicas/Tenancy-api/internal/domain"
	"github.com/jhoicas/Tenancy-api/internal/domain/entity"
)

// Policy política de downgrade cuando el nuevo plan no alcanza para los recursos actuales.
type Policy string

const (
	// PolicyBlock rechaza el cambio de plan (ErrDowngradeBlocked) sin mutar nada.
	PolicyBlock Policy = "block"
	// PolicyEnforce desactiva los recursos sobrantes de forma determinista.
	PolicyEnforce Policy = "enforce"
)

// ParsePolicy interpreta el valor de configuración (insensible a mayúsculas).
func ParsePolicy(s string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(s))) {
	case PolicyBlock, "":
		return PolicyBlock, nil
	case PolicyEnforce:
		return PolicyEnforce, nil
	}
	return "", fmt.Errorf("entitlement: política de downgrade desconocida %q", s)
}

// MemberRef identifica una membresía desactivada por la conciliación.
type MemberRef struct {
	BusinessID string
	UserID     string
}

// Result detalle de lo que desactivó la conciliación.
type Result struct {
	DeactivatedBusinesses []string
	DeactivatedMembers    []MemberRef
}

// Changed informa si la conciliación mutó algún negocio.
func (r Result) Changed() bool {
	return len(r.DeactivatedBusinesses) > 0 || len(r.DeactivatedMembers) > 0
}

// ChangedBusinesses IDs de negocios que deben persistirse (desactivados o con miembros desactivados).
func (r Result) ChangedBusinesses() []string {
	seen := make(map[string]struct{})
	out := make([]string, 0, len(r.DeactivatedBusinesses)+len(r.DeactivatedMembers))
	add := func(id string) {
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	for _, id := range r.DeactivatedBusinesses {
		add(id)
	}
	for _, m := range r.DeactivatedMembers {
		add(m.BusinessID)
	}
	return out
}

// Reconcile ajusta los negocios de un usuario a las cuotas del plan destino.
//
// Con PolicyBlock primero se verifican ambas cuotas y, si alguna se excede, se devuelve
// ErrDowngradeBlocked sin tocar los negocios. Con PolicyEnforce:
//   - negocios activos ordenados por CreatedAt ascendente; sobreviven los MaxBusinesses más antiguos.
//   - en cada negocio que sigue activo, miembros activos con el Owner primero y luego por JoinedAt
//     ascendente; sobreviven los primeros MaxMembersPerBusiness.
//
// Los empates se resuelven por el orden de entrada (sort estable). Desactivar un negocio no
// desactiva a sus miembros.
func Reconcile(businesses []*entity.Business, limits entity.PlanLimits, policy Policy) (Result, error) {
	if policy == PolicyBlock {
		if exceeds(businesses, limits) {
			return Result{}, domain.ErrDowngradeBlocked
		}
		return Result{}, nil
	}

	var res Result

	active := activeBusinesses(businesses)
	if len(active) > limits.MaxBusinesses {
		sort.SliceStable(active, func(i, j int) bool {
			return active[i].CreatedAt.Before(active[j].CreatedAt)
		})
		keep := max(limits.MaxBusinesses, 0)
		for _, b := range active[keep:] {
			b.Deactivate()
			res.DeactivatedBusinesses = append(res.DeactivatedBusinesses, b.ID)
		}
		active = active[:keep]
	}

	for _, b := range active {
		members := b.ActiveMembers()
		if len(members) <= limits.MaxMembersPerBusiness {
			continue
		}
		sort.SliceStable(members, func(i, j int) bool {
			oi, oj := members[i].IsOwner(), members[j].IsOwner()
			if oi != oj {
				return oi
			}
			return members[i].JoinedAt.Before(members[j].JoinedAt)
		})
		keep := max(limits.MaxMembersPerBusiness, 0)
		for _, m := range members[keep:] {
			m.Deactivate()
			res.DeactivatedMembers = append(res.DeactivatedMembers, MemberRef{BusinessID: b.ID, UserID: m.UserID})
		}
	}
	return res, nil
}

// exceeds informa si los negocios actuales violan alguna cuota (sin mutar).
func exceeds(businesses []*entity.Business, limits entity.PlanLimits) bool {
	active := activeBusinesses(businesses)
	if len(active) > limits.MaxBusinesses {
		return true
	}
	for _, b := range active {
		if len(b.ActiveMembers()) > limits.MaxMembersPerBusiness {
			return true
		}
	}
	return false
}

func activeBusinesses(businesses []*entity.Business) []*entity.Business {
	out := make([]*entity.Business, 0, len(businesses))
	for _, b := range businesses {
		if b.IsActive {
			out = append(out, b)
		}
	}
	return out
}
