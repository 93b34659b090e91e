// Package health serves liveness and readiness probes.
package health

import (
	"context"
	"net/http"
	"time"

	"github.com/Ali-shok/employee-management/internal/shared/apperror"
	"github.com/Ali-shok/employee-management/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const defaultTimeout = 2 * time.Second

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Handler struct {
	db      Pinger
	rdb     redis.Cmdable
	timeout time.Duration
	logger  *zap.Logger
}

// NewHandler checks db and, when rdb is not nil, redis on readiness.
func NewHandler(db Pinger, rdb redis.Cmdable, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("health.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("health.handler")
	}
	return &Handler{db: db, rdb: rdb, timeout: defaultTimeout, logger: l}
}

func (h *Handler) Live(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{"status": "ok"}, nil)
}

// Ready pings every dependency concurrently and fails on the first error.
func (h *Handler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return h.db.PingContext(gctx)
	})
	if h.rdb != nil {
		g.Go(func() error {
			return h.rdb.Ping(gctx).Err()
		})
	}

	if err := g.Wait(); err != nil {
		h.logger.Warn("readiness check failed", zap.Error(err))
		e := apperror.ErrServiceUnavailable
		response.Error(c, e.HTTPStatus, e.Code, e.Message, nil)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"status": "ready"}, nil)
}

func RegisterRoutes(r gin.IRouter, h *Handler) {
	r.GET("/healthz", h.Live)
	r.GET("/readyz", h.Ready)
}
