package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	_ "github.com/jhoicas/Tenancy-api/docs"
	"github.com/jhoicas/Tenancy-api/internal/application/auth"
	"github.com/jhoicas/Tenancy-api/internal/application/invite"
	"github.com/jhoicas/Tenancy-api/internal/application/ports"
	"github.com/jhoicas/Tenancy-api/internal/application/subscription"
	"github.com/jhoicas/Tenancy-api/internal/application/usecase"
	"github.com/jhoicas/Tenancy-api/internal/domain/entitlement"
	"github.com/jhoicas/Tenancy-api/internal/infrastructure/mail"
	"github.com/jhoicas/Tenancy-api/internal/infrastructure/memory"
	"github.com/jhoicas/Tenancy-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Tenancy-api/internal/infrastructure/ratelimit"
	httpRouter "github.com/jhoicas/Tenancy-api/internal/interfaces/http"
	"github.com/jhoicas/Tenancy-api/internal/metrics"
	"github.com/jhoicas/Tenancy-api/pkg/config"
	"github.com/jhoicas/Tenancy-api/pkg/logger"
)

// @title						Tenancy API
// @version					1.0
// @description				Planes, suscripciones, negocios, membresías, invitaciones y sesiones.
// @BasePath					/
// @securityDefinitions.apikey	Bearer
// @in							header
// @name						Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
		App:   cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("store", cfg.App.StoreDriver).
		Msg("iniciando aplicación")

	if cfg.JWT.Secret == "" {
		// solo llega aquí en development (config.validate lo exige en el resto)
		cfg.JWT.Secret = "dev-secret-no-usar-en-produccion"
		log.Warn().Msg("JWT_SECRET vacío, usando secreto de desarrollo")
	}

	ctx := context.Background()

	var txRunner ports.TxRunner
	switch cfg.App.StoreDriver {
	case "memory":
		txRunner = memory.NewStore()
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
	default:
		if cfg.DB.AutoMigrate {
			if err := postgres.RunMigrations(cfg.DB.ConnectionString(), postgres.MigrateUp, log); err != nil {
				log.Fatal().Err(err).Msg("migraciones")
			}
		}
		pool, err := postgres.NewPool(ctx, cfg.DB, cfg.App.Name)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		txRunner = postgres.NewTxRunner(pool)
	}

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.Get()
	}

	policy, err := entitlement.ParsePolicy(cfg.Subscription.DowngradeMode)
	if err != nil {
		log.Fatal().Err(err).Msg("política de downgrade")
	}

	var notifier ports.InviteNotifier
	if cfg.Mailgun.Enabled() {
		notifier = mail.NewMailgunNotifier(cfg.Mailgun.Domain, cfg.Mailgun.APIKey, cfg.Mailgun.Sender)
	} else {
		notifier = mail.NewLogNotifier(log, cfg.App.IsDevelopment())
		log.Warn().Msg("Mailgun no configurado: las invitaciones solo se registran en el log")
	}

	authUC := auth.NewAuthUseCase(txRunner, auth.NewRefreshTokenService(cfg.Auth.RefreshTTL()), auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	}, cfg.Subscription.DefaultPlanID, log, m)
	planUC := usecase.NewPlanUseCase(txRunner, log)
	subscriptionUC := subscription.NewSubscriptionUseCase(txRunner, policy, log, m)
	businessUC := usecase.NewBusinessUseCase(txRunner, log)
	inviteUC := invite.NewInviteUseCase(txRunner, notifier, cfg.Invite.TTL(), log, m)

	if cfg.Admin.Email != "" && cfg.Admin.Password != "" {
		if _, err := authUC.EnsureAdmin(ctx, cfg.Admin.Email, cfg.Admin.Password); err != nil {
			log.Fatal().Err(err).Msg("sembrar administrador")
		}
	}

	var authLimiter fiber.Handler
	if cfg.Redis.Addr != "" {
		rdb := ratelimit.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		defer rdb.Close()
		authLimiter = ratelimit.New(ratelimit.NewRedisCounter(rdb), ratelimit.Config{
			Max:    cfg.RateLimit.Max,
			Window: cfg.RateLimit.Window(),
			Prefix: "auth",
		}, log)
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestMetrics(m))

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Tenancy API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})
	if m != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	}

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:            authUC,
		PlanUC:            planUC,
		SubscriptionUC:    subscriptionUC,
		BusinessUC:        businessUC,
		InviteUC:          inviteUC,
		JWTSecret:         cfg.JWT.Secret,
		AuthLimiter:       authLimiter,
		ExposeInviteToken: cfg.App.IsDevelopment(),
		Log:               log,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
