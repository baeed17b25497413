package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/jhoicas/Tenancy-api/internal/application/auth"
	"github.com/jhoicas/Tenancy-api/internal/infrastructure/postgres"
)

var (
	seedEmail    string
	seedPassword string
)

var seedAdminCmd = &cobra.Command{
	Use:   "seed-admin",
	Short: "Crea (o promueve) el usuario administrador de plataforma",
	Long: `Crea el usuario administrador si no existe, o lo marca como admin si ya existe.
Sin flags usa ADMIN_EMAIL y ADMIN_PASSWORD.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := bootstrap()
		if err != nil {
			return err
		}
		email, password := seedEmail, seedPassword
		if email == "" {
			email = cfg.Admin.Email
		}
		if password == "" {
			password = cfg.Admin.Password
		}
		if email == "" || password == "" {
			return errors.New("email y password del administrador son obligatorios")
		}

		ctx := cmd.Context()
		pool, err := postgres.NewPool(ctx, cfg.DB, cfg.App.Name)
		if err != nil {
			return err
		}
		defer pool.Close()

		// JWT y plan por defecto no intervienen al sembrar
		authUC := auth.NewAuthUseCase(postgres.NewTxRunner(pool), auth.NewRefreshTokenService(cfg.Auth.RefreshTTL()),
			auth.JWTConfig{}, "", log, nil)
		_, err = authUC.EnsureAdmin(ctx, email, password)
		return err
	},
}

func init() {
	seedAdminCmd.Flags().StringVar(&seedEmail, "email", "", "email del administrador (por defecto ADMIN_EMAIL)")
	seedAdminCmd.Flags().StringVar(&seedPassword, "password", "", "contraseña (por defecto ADMIN_PASSWORD)")
}
