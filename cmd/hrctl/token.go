package main

import (
	"fmt"
	"time"

	"github.com/Ali-shok/employee-management/internal/employee"
	"github.com/Ali-shok/employee-management/internal/middleware"

	"github.com/spf13/cobra"
)

var (
	tokenEmployeeID int64
	tokenRole       string
	tokenTTL        time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Print a signed bearer token for local testing",
	RunE:  runToken,
}

func init() {
	tokenCmd.Flags().Int64VarP(&tokenEmployeeID, "employee", "e", 0, "employee id carried by the token")
	tokenCmd.Flags().StringVarP(&tokenRole, "role", "r", employee.RoleEmployee, "role: employee, hr or admin")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 0, "token lifetime (defaults to JWT_TTL)")
	_ = tokenCmd.MarkFlagRequired("employee")
}

func runToken(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ttl := tokenTTL
	if ttl <= 0 {
		ttl = cfg.Auth.TokenTTL
	}

	token, err := middleware.IssueToken(cfg.Auth.JWTSecret, tokenEmployeeID, tokenRole, ttl, time.Now())
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}
