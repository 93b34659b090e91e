package main

import (
	"fmt"

	"github.com/Ali-shok/employee-management/internal/employee"
	"github.com/Ali-shok/employee-management/internal/seed"
	"github.com/Ali-shok/employee-management/internal/shared/connection"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert the HR contacts and sample employees",
	RunE:  runSeed,
}

func runSeed(cmd *cobra.Command, _ []string) error {
	logger := zap.L().Named("hrctl")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	gormDB, err := connection.ConnectGORMWithRetry(cfg.Database, logger)
	if err != nil {
		return err
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	res, err := seed.NewSeeder(gormDB, employee.NewRepository(gormDB), logger).Run(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "hr contacts: %d, employees: %d, skipped: %d\n", res.HRContacts, res.Employees, res.Skipped)
	return nil
}
