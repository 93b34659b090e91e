package app

import (
	"time"

	"github.com/Ali-shok/employee-management/internal/config"
	"github.com/Ali-shok/employee-management/internal/health"
	"github.com/Ali-shok/employee-management/internal/leave"
	"github.com/Ali-shok/employee-management/internal/messaging/kafka"
	"github.com/Ali-shok/employee-management/internal/middleware"
	"github.com/Ali-shok/employee-management/internal/rbac"
	"github.com/Ali-shok/employee-management/internal/rbac/infra"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

func registerModules(
	router *gin.Engine,
	cfg *config.Config,
	db *sqlx.DB,
	gormDB *gorm.DB,
	rdb *redis.Client,
	logger *zap.Logger,
) error {
	limit := rate.Limit(cfg.RateLimit.RPS)

	router.Use(
		middleware.RequestID(),
		middleware.ContextLogger(logger),
		cors.New(corsConfig(cfg.HTTP.CORSAllowedOrigins)),
		middleware.RateLimitByIP(limit, cfg.RateLimit.Burst),
	)

	// --- Repositories ---
	leaveRepo := leave.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(db)

	// --- RBAC Core ---
	enforcer, err := infra.NewEnforcer()
	if err != nil {
		return err
	}
	rbacService, err := rbac.NewService(enforcer, rbac.DefaultPolicy(), logger)
	if err != nil {
		return err
	}

	// --- Services ---
	leaveService := leave.NewServiceWithOutbox(db.DB, leaveRepo, outboxRepo, leave.Options{
		AnnualAllotment: cfg.Leave.AnnualAllotment,
	}, logger)

	// --- Handlers ---
	healthHandler := health.NewHandler(db, rdb, logger)
	leaveHandler := leave.NewHandler(leaveService, rdb, logger)
	rbacHandler := rbac.NewHandler(rbacService)

	// --- Routes Registration ---
	health.RegisterRoutes(router, healthHandler)

	auth := middleware.AuthMiddleware(cfg.Auth.JWTSecret)
	api := router.Group("/api/v1")
	{
		leave.RegisterRoutes(api, leaveHandler, rbacService, auth, middleware.RateLimitByUser(limit, cfg.RateLimit.Burst), rdb)
		rbac.RegisterRoutes(api, rbacHandler, auth)
	}

	return nil
}

func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{
			"Origin", "Content-Type", "Authorization",
			middleware.IdempotencyHeader, middleware.RequestIDHeader,
		},
		ExposeHeaders: []string{middleware.RequestIDHeader, "Idempotent-Replayed"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		c.AllowAllOrigins = true
		return c
	}
	for _, o := range origins {
		if o == "*" {
			c.AllowAllOrigins = true
			return c
		}
	}
	c.AllowOrigins = origins
	return c
}
