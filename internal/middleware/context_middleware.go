package middleware

import (
	"github.com/Ali-shok/employee-management/internal/shared/contextutil"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ContextLogger attaches a request scoped logger. Register it after
// AuthMiddleware so the employee id is known.
func ContextLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		rid := contextutil.GetRequestID(ctx)
		if rid == "" {
			rid = uuid.New().String()
			ctx = contextutil.WithRequestID(ctx, rid)
			c.Header("X-Request-ID", rid)
		}

		// Logger ini yang dipakai sepanjang request
		reqLogger := logger.With(
			zap.String("request_id", rid),
			zap.String("employee_id", c.GetString("employee_id")),
		)

		c.Request = c.Request.WithContext(contextutil.WithLogger(ctx, reqLogger))
		c.Next()
	}
}
