package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Tenancy-api/internal/application/auth"
	"github.com/jhoicas/Tenancy-api/internal/application/invite"
	"github.com/jhoicas/Tenancy-api/internal/application/subscription"
	"github.com/jhoicas/Tenancy-api/internal/application/usecase"
	"github.com/jhoicas/Tenancy-api/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC         *auth.AuthUseCase
	PlanUC         *usecase.PlanUseCase
	SubscriptionUC *subscription.SubscriptionUseCase
	BusinessUC     *usecase.BusinessUseCase
	InviteUC       *invite.InviteUseCase
	JWTSecret      string
	// AuthLimiter se aplica a las rutas públicas de /api/auth (nil = sin límite).
	AuthLimiter fiber.Handler
	// ExposeInviteToken devuelve el token de invitación al crearla (solo desarrollo).
	ExposeInviteToken bool
	Log               *logger.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	log := logger.OrNop(deps.Log).Component("http")
	api := app.Group("/api")
	requireAuth := AuthMiddleware(deps.JWTSecret)

	limiter := deps.AuthLimiter
	if limiter == nil {
		limiter = func(c *fiber.Ctx) error { return c.Next() }
	}

	// Auth
	authHandler := NewAuthHandler(deps.AuthUC, log)
	authGroup := api.Group("/auth")
	authGroup.Post("/register", limiter, authHandler.Register)
	authGroup.Post("/login", limiter, authHandler.Login)
	authGroup.Post("/refresh", limiter, authHandler.Refresh)
	authGroup.Post("/logout", requireAuth, authHandler.Logout)
	authGroup.Get("/me", requireAuth, authHandler.Me)

	// Plans: lectura pública, escritura solo admin
	planHandler := NewPlanHandler(deps.PlanUC, log)
	plans := api.Group("/plans")
	plans.Get("/", planHandler.List)
	plans.Get("/:id", planHandler.GetByID)
	plans.Post("/", requireAuth, RequireAdmin(), planHandler.Create)
	plans.Put("/:id", requireAuth, RequireAdmin(), planHandler.Update)
	plans.Delete("/:id", requireAuth, RequireAdmin(), planHandler.Delete)

	// Subscriptions (protegido)
	subHandler := NewSubscriptionHandler(deps.SubscriptionUC, log)
	subs := api.Group("/subscriptions", requireAuth)
	subs.Post("/change-plan", subHandler.ChangePlan)
	subs.Get("/me/active", subHandler.Active)
	subs.Get("/me/history", subHandler.History)

	// Businesses (protegido)
	bizHandler := NewBusinessHandler(deps.BusinessUC, log)
	biz := api.Group("/businesses", requireAuth)
	biz.Post("/", bizHandler.Create)
	biz.Get("/mine", bizHandler.ListMine)
	biz.Get("/:id", bizHandler.GetByID)
	biz.Post("/:id/members", bizHandler.AddMember)
	biz.Delete("/:id/members/:userId", bizHandler.RemoveMember)
	biz.Put("/:id/members/:userId/role", bizHandler.ChangeMemberRole)

	// Invites (protegido)
	invHandler := NewInviteHandler(deps.InviteUC, deps.ExposeInviteToken, log)
	inv := api.Group("/invites", requireAuth)
	inv.Post("/", invHandler.Create)
	inv.Post("/accept", invHandler.Accept)
	inv.Post("/:id/revoke", invHandler.Revoke)
}
