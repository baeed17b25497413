package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jhoicas/Tenancy-api/internal/infrastructure/postgres"
)

var migrateCmd = &cobra.Command{
	Use:       "migrate [up|down]",
	Short:     "Aplica o revierte las migraciones embebidas",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{string(postgres.MigrateUp), string(postgres.MigrateDown)},
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := postgres.MigrateDirection(args[0])
		if dir != postgres.MigrateUp && dir != postgres.MigrateDown {
			return fmt.Errorf("dirección inválida %q (use up o down)", args[0])
		}
		cfg, log, err := bootstrap()
		if err != nil {
			return err
		}
		return postgres.RunMigrations(cfg.DB.ConnectionString(), dir, log)
	},
}
