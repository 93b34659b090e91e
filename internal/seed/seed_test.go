package seed

import (
	"context"
	"testing"

	"github.com/Ali-shok/employee-management/internal/employee"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newSeedDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	assert.NoError(t, err)
	sqlDB, err := db.DB()
	assert.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	assert.NoError(t, db.AutoMigrate(&employee.Employee{}, &HRContact{}))
	return db
}

func TestSeeder_Run(t *testing.T) {
	ctx := context.Background()
	db := newSeedDB(t)
	repo := employee.NewRepository(db)

	s := NewSeeder(db, repo, zap.NewNop())
	s.cost = bcrypt.MinCost

	res, err := s.Run(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 4, res.HRContacts)
	assert.Equal(t, len(SampleEmployees), res.Employees)

	admin, err := repo.FindByEmail(ctx, "salma@example.com")
	assert.NoError(t, err)
	assert.Equal(t, employee.RoleAdmin, admin.Role)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte(DefaultPassword)))

	again, err := s.Run(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 0, again.Employees)
	assert.Equal(t, len(SampleEmployees), again.Skipped)

	var count int64
	assert.NoError(t, db.Model(&HRContact{}).Count(&count).Error)
	assert.Equal(t, int64(4), count)
}
