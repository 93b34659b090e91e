package migrations

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDir(t *testing.T) {
	dir, err := Dir("postgres")
	assert.NoError(t, err)
	assert.Equal(t, "postgres", dir)

	_, err = Dir("sqlserver")
	assert.Error(t, err)
}

func TestEmbeddedMigrations(t *testing.T) {
	for _, driver := range []string{"postgres", "mysql"} {
		t.Run(driver, func(t *testing.T) {
			entries, err := fs.ReadDir(files, driver)
			assert.NoError(t, err)
			assert.Len(t, entries, 2)

			for _, e := range entries {
				body, err := fs.ReadFile(files, driver+"/"+e.Name())
				assert.NoError(t, err)
				assert.Contains(t, string(body), "-- +goose Up")
				assert.Contains(t, string(body), "-- +goose Down")
			}

			schema, err := fs.ReadFile(files, driver+"/00001_create_hr_tables.sql")
			assert.NoError(t, err)
			for _, table := range []string{"employees", "hr", "leave_requests", "performance", "salaries"} {
				assert.True(t, strings.Contains(string(schema), "CREATE TABLE IF NOT EXISTS "+table+" ("), table)
			}
		})
	}
}
