// Comando admin: tareas operativas sobre la base (migraciones, administrador inicial).
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/jhoicas/Tenancy-api/pkg/config"
	"github.com/jhoicas/Tenancy-api/pkg/logger"
)

var osExit = os.Exit

var rootCmd = &cobra.Command{
	Use:           "admin",
	Short:         "Herramientas de administración de Tenancy API",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	_ = godotenv.Load()

	rootCmd.AddCommand(migrateCmd, seedAdminCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		osExit(1)
	}
}

// bootstrap carga configuración y logger comunes a los subcomandos.
func bootstrap() (*config.Config, *logger.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, App: "admin"})
	return cfg, log, nil
}
