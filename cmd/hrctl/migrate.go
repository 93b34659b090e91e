package main

import (
	"github.com/Ali-shok/employee-management/internal/migrations"
	"github.com/Ali-shok/employee-management/internal/shared/connection"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:       "migrate [up|down|status|version|redo|reset]",
	Short:     "Run the embedded SQL migrations for the configured driver",
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"up", "down", "status", "version", "redo", "reset"},
	RunE:      runMigration,
}

func runMigration(cmd *cobra.Command, args []string) error {
	command := "up"
	if len(args) == 1 {
		command = args[0]
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	db, err := connection.OpenSQL(cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	return migrations.Run(cmd.Context(), db, cfg.Database.Driver, command)
}
