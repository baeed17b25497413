package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Tenancy-api/internal/application/auth"
	"github.com/jhoicas/Tenancy-api/internal/application/dto"
	"github.com/jhoicas/Tenancy-api/internal/application/invite"
	"github.com/jhoicas/Tenancy-api/internal/application/subscription"
	"github.com/jhoicas/Tenancy-api/internal/application/usecase"
	"github.com/jhoicas/Tenancy-api/internal/domain/entitlement"
	"github.com/jhoicas/Tenancy-api/internal/domain/entity"
	"github.com/jhoicas/Tenancy-api/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/Tenancy-api/internal/interfaces/http"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	adminEmail    = "root@test.com"
	adminPassword = "rootpassword"
)

func newAPI(t *testing.T) *fiber.App {
	t.Helper()
	store := memory.NewStore()
	authUC := auth.NewAuthUseCase(
		store,
		auth.NewRefreshTokenService(14*24*time.Hour),
		auth.JWTConfig{Secret: testJWTSecret, ExpMinutes: 15, Issuer: testIssuer},
		entity.PlanFreeID,
		nil, nil,
	)
	_, err := authUC.EnsureAdmin(context.Background(), adminEmail, adminPassword)
	require.NoError(t, err)

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		AuthUC:            authUC,
		PlanUC:            usecase.NewPlanUseCase(store, nil),
		SubscriptionUC:    subscription.NewSubscriptionUseCase(store, entitlement.PolicyBlock, nil, nil),
		BusinessUC:        usecase.NewBusinessUseCase(store, nil),
		InviteUC:          invite.NewInviteUseCase(store, nil, 72*time.Hour, nil, nil),
		JWTSecret:         testJWTSecret,
		ExposeInviteToken: true,
	})
	return app
}

// call hace la petición y decodifica el cuerpo JSON en out (si no es nil).
func call(t *testing.T, app *fiber.App, method, path, token string, body any, out any) int {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		raw, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		if len(raw) > 0 {
			require.NoError(t, json.Unmarshal(raw, out), string(raw))
		}
	}
	return resp.StatusCode
}

func signup(t *testing.T, app *fiber.App, email string) dto.AuthResponse {
	t.Helper()
	var out dto.AuthResponse
	status := call(t, app, http.MethodPost, "/api/auth/register", "", dto.RegisterRequest{Email: email, Password: "password123"}, &out)
	require.Equal(t, http.StatusCreated, status)
	return out
}

// ──────────────────────────────────────────────────────────────────────────────
// Auth
// ──────────────────────────────────────────────────────────────────────────────

func TestAPI_RegistroValidaElCuerpo(t *testing.T) {
	app := newAPI(t)

	var errBody dto.ErrorResponse
	status := call(t, app, http.MethodPost, "/api/auth/register", "", dto.RegisterRequest{Email: "no-es-email", Password: "corta"}, &errBody)

	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION", errBody.Code)
	assert.Contains(t, errBody.Details, "email")
	assert.Contains(t, errBody.Details, "password")
}

func TestAPI_RegistroDuplicado(t *testing.T) {
	app := newAPI(t)
	signup(t, app, "ana@test.com")

	var errBody dto.ErrorResponse
	status := call(t, app, http.MethodPost, "/api/auth/register", "", dto.RegisterRequest{Email: "ANA@test.com", Password: "password123"}, &errBody)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "EMAIL_EXISTS", errBody.Code)
}

func TestAPI_RefreshRotaYLogout(t *testing.T) {
	app := newAPI(t)
	first := signup(t, app, "ana@test.com")

	var second dto.AuthResponse
	status := call(t, app, http.MethodPost, "/api/auth/refresh", "", dto.RefreshRequest{RefreshToken: first.RefreshToken}, &second)
	require.Equal(t, http.StatusOK, status)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)

	var errBody dto.ErrorResponse
	status = call(t, app, http.MethodPost, "/api/auth/refresh", "", dto.RefreshRequest{RefreshToken: first.RefreshToken}, &errBody)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "INVALID_REFRESH_TOKEN", errBody.Code)

	status = call(t, app, http.MethodPost, "/api/auth/logout", second.AccessToken, dto.LogoutRequest{RefreshToken: second.RefreshToken}, nil)
	assert.Equal(t, http.StatusOK, status)

	status = call(t, app, http.MethodPost, "/api/auth/refresh", "", dto.RefreshRequest{RefreshToken: second.RefreshToken}, nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	var me dto.MeResponse
	status = call(t, app, http.MethodGet, "/api/auth/me", second.AccessToken, nil, &me)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ana@test.com", me.Email)
}

func TestAPI_LoginInvalido(t *testing.T) {
	app := newAPI(t)
	signup(t, app, "ana@test.com")

	var errBody dto.ErrorResponse
	status := call(t, app, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Email: "ana@test.com", Password: "incorrecta"}, &errBody)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "INVALID_CREDENTIALS", errBody.Code)
}

// ──────────────────────────────────────────────────────────────────────────────
// Planes
// ──────────────────────────────────────────────────────────────────────────────

func TestAPI_PlanesSoloAdminEscribe(t *testing.T) {
	app := newAPI(t)
	user := signup(t, app, "ana@test.com")
	req := dto.PlanRequest{Name: "Starter", IsActive: true, MaxBusinesses: 2, MaxMembersPerBusiness: 3}

	var plans []dto.PlanResponse
	require.Equal(t, http.StatusOK, call(t, app, http.MethodGet, "/api/plans", "", nil, &plans))
	assert.Len(t, plans, 3)

	assert.Equal(t, http.StatusUnauthorized, call(t, app, http.MethodPost, "/api/plans", "", req, nil))
	assert.Equal(t, http.StatusForbidden, call(t, app, http.MethodPost, "/api/plans", user.AccessToken, req, nil))

	var admin dto.AuthResponse
	require.Equal(t, http.StatusOK, call(t, app, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Email: adminEmail, Password: adminPassword}, &admin))
	require.True(t, admin.IsAdmin)

	var created dto.PlanResponse
	require.Equal(t, http.StatusCreated, call(t, app, http.MethodPost, "/api/plans", admin.AccessToken, req, &created))
	assert.Equal(t, "Starter", created.Name)

	var errBody dto.ErrorResponse
	status := call(t, app, http.MethodDelete, "/api/plans/"+entity.PlanFreeID, admin.AccessToken, nil, &errBody)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "PLAN_SYSTEM_PROTECTED", errBody.Code)

	assert.Equal(t, http.StatusNoContent, call(t, app, http.MethodDelete, "/api/plans/"+created.ID, admin.AccessToken, nil, nil))
	assert.Equal(t, http.StatusNotFound, call(t, app, http.MethodGet, "/api/plans/no-es-uuid", "", nil, nil))
}

// ──────────────────────────────────────────────────────────────────────────────
// Flujo completo: negocio, invitación, cambio de plan
// ──────────────────────────────────────────────────────────────────────────────

func TestAPI_FlujoNegocioInvitacionYPlan(t *testing.T) {
	app := newAPI(t)
	owner := signup(t, app, "owner@test.com")
	guest := signup(t, app, "guest@test.com")

	var sub dto.SubscriptionResponse
	require.Equal(t, http.StatusOK, call(t, app, http.MethodGet, "/api/subscriptions/me/active", owner.AccessToken, nil, &sub))
	assert.Equal(t, "Free", sub.PlanName)

	var biz dto.BusinessResponse
	require.Equal(t, http.StatusCreated, call(t, app, http.MethodPost, "/api/businesses", owner.AccessToken, dto.CreateBusinessRequest{Name: "Panadería"}, &biz))

	// Free admite un solo negocio.
	var errBody dto.ErrorResponse
	status := call(t, app, http.MethodPost, "/api/businesses", owner.AccessToken, dto.CreateBusinessRequest{Name: "Otra"}, &errBody)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "BUSINESS_LIMIT_REACHED", errBody.Code)

	// guest aún no es miembro.
	assert.Equal(t, http.StatusForbidden, call(t, app, http.MethodGet, "/api/businesses/"+biz.ID, guest.AccessToken, nil, nil))

	var created dto.CreateInviteResponse
	require.Equal(t, http.StatusCreated, call(t, app, http.MethodPost, "/api/invites", owner.AccessToken,
		dto.CreateInviteRequest{BusinessID: biz.ID, InvitedEmail: "guest@test.com", RoleToGrant: "member"}, &created))
	require.NotEmpty(t, created.Token)
	assert.Equal(t, "pending", created.Invite.Status)

	var joined dto.BusinessResponse
	require.Equal(t, http.StatusOK, call(t, app, http.MethodPost, "/api/invites/accept", guest.AccessToken, dto.AcceptInviteRequest{Token: created.Token}, &joined))
	require.Len(t, joined.Members, 2)
	assert.Equal(t, guest.UserID, joined.Members[1].UserID)
	assert.Equal(t, "member", joined.Members[1].Role)

	status = call(t, app, http.MethodPost, "/api/invites/accept", guest.AccessToken, dto.AcceptInviteRequest{Token: created.Token}, &errBody)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "INVALID_STATUS", errBody.Code)

	// Upgrade a Pro y segundo negocio.
	var changed dto.ChangePlanResponse
	require.Equal(t, http.StatusOK, call(t, app, http.MethodPost, "/api/subscriptions/change-plan", owner.AccessToken, dto.ChangePlanRequest{PlanID: entity.PlanProID}, &changed))
	assert.True(t, changed.Changed)
	assert.Equal(t, "Pro", changed.Subscription.PlanName)
	require.Equal(t, http.StatusCreated, call(t, app, http.MethodPost, "/api/businesses", owner.AccessToken, dto.CreateBusinessRequest{Name: "Otra"}, nil))

	// Volver a Free excede la cuota de negocios: con block se rechaza.
	status = call(t, app, http.MethodPost, "/api/subscriptions/change-plan", owner.AccessToken, dto.ChangePlanRequest{PlanID: entity.PlanFreeID}, &errBody)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "DOWNGRADE_BLOCKED", errBody.Code)

	var history []dto.SubscriptionResponse
	require.Equal(t, http.StatusOK, call(t, app, http.MethodGet, "/api/subscriptions/me/history", owner.AccessToken, nil, &history))
	require.Len(t, history, 2)
	assert.Equal(t, "Pro", history[0].PlanName)

	var mine []dto.BusinessResponse
	require.Equal(t, http.StatusOK, call(t, app, http.MethodGet, "/api/businesses/mine", owner.AccessToken, nil, &mine))
	assert.Len(t, mine, 2)
}

func TestAPI_MiembrosSoloOwner(t *testing.T) {
	app := newAPI(t)
	owner := signup(t, app, "owner@test.com")
	other := signup(t, app, "other@test.com")

	var biz dto.BusinessResponse
	require.Equal(t, http.StatusCreated, call(t, app, http.MethodPost, "/api/businesses", owner.AccessToken, dto.CreateBusinessRequest{Name: "Tienda"}, &biz))

	add := dto.AddMemberRequest{UserID: other.UserID, Role: "admin"}
	assert.Equal(t, http.StatusForbidden, call(t, app, http.MethodPost, "/api/businesses/"+biz.ID+"/members", other.AccessToken, add, nil))

	var out dto.BusinessResponse
	require.Equal(t, http.StatusOK, call(t, app, http.MethodPost, "/api/businesses/"+biz.ID+"/members", owner.AccessToken, add, &out))
	assert.Len(t, out.Members, 2)

	var errBody dto.ErrorResponse
	status := call(t, app, http.MethodDelete, "/api/businesses/"+biz.ID+"/members/"+owner.UserID, owner.AccessToken, nil, &errBody)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "OWNER_PROTECTED", errBody.Code)

	require.Equal(t, http.StatusOK, call(t, app, http.MethodPut, "/api/businesses/"+biz.ID+"/members/"+other.UserID+"/role", owner.AccessToken,
		dto.ChangeMemberRoleRequest{Role: "member"}, &out))
	assert.Equal(t, "member", out.Members[1].Role)

	require.Equal(t, http.StatusOK, call(t, app, http.MethodDelete, "/api/businesses/"+biz.ID+"/members/"+other.UserID, owner.AccessToken, nil, &out))
	assert.False(t, out.Members[1].IsActive)
}
