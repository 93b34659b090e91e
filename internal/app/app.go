package app

import (
	"github.com/Ali-shok/employee-management/internal/config"
	"github.com/Ali-shok/employee-management/internal/shared/connection"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// BuildApp connects the infrastructure and mounts every module on router.
// The returned cleanup closes the connections opened here.
func BuildApp(router *gin.Engine, cfg *config.Config) (func(), error) {
	logger := zap.L().Named("app")

	// 1. Setup Infrastructure
	gormDB, err := connection.ConnectGORMWithRetry(cfg.Database, logger)
	if err != nil {
		return nil, err
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, err
	}
	logger.Info("database connection established", zap.String("driver", cfg.Database.Driver))

	redisClient, err := connection.ConnectRedisWithRetry(cfg.Redis, cfg.Database.MaxRetries, logger)
	if err != nil {
		sqlDB.Close()
		return nil, err
	}
	logger.Info("redis connection established")

	cleanup := func() {
		_ = redisClient.Close()
		_ = sqlDB.Close()
	}

	// 2. Register Modules & Routes
	if err := registerModules(router, cfg, sqlx.NewDb(sqlDB, cfg.Database.SQLDriverName()), gormDB, redisClient, logger); err != nil {
		cleanup()
		return nil, err
	}

	return cleanup, nil
}
