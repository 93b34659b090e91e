// Package migrations holds the SQL schema for every supported database and
// applies it with goose.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
)

//go:embed postgres/*.sql mysql/*.sql
var files embed.FS

const tableName = "schema_migrations"

// Dir returns the embedded migration directory for driver ("postgres" or "mysql").
func Dir(driver string) (string, error) {
	switch driver {
	case "postgres", "mysql":
		return driver, nil
	default:
		return "", fmt.Errorf("unsupported database driver %q", driver)
	}
}

// Run executes a goose command (up, down, status, version, redo, reset).
func Run(ctx context.Context, db *sql.DB, driver, command string, args ...string) error {
	dir, err := Dir(driver)
	if err != nil {
		return err
	}

	goose.SetBaseFS(files)
	goose.SetTableName(tableName)
	if err := goose.SetDialect(driver); err != nil {
		return err
	}

	return goose.RunContext(ctx, command, db, dir, args...)
}
