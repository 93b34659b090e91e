package leave

import (
	"github.com/Ali-shok/employee-management/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const (
	resourceLeave = "leave"

	actionSubmit  = "submit"
	actionReadOwn = "read_own"
	actionReview  = "review"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService middleware.RBACService,
	auth gin.HandlerFunc,
	submitLimit gin.HandlerFunc,
	rdb ...*redis.Client,
) {
	var redisClient *redis.Client
	if len(rdb) > 0 {
		redisClient = rdb[0]
	}

	ownOrReview := func(param, action string) []gin.HandlerFunc {
		return []gin.HandlerFunc{
			middleware.RBACAuthorize(rbacService, resourceLeave, action),
			middleware.SelfOrAuthorize(rbacService, param, resourceLeave, actionReview),
		}
	}

	leaves := r.Group("/leave")
	leaves.Use(auth)
	{
		leaves.GET("/balance/:employeeId", append(ownOrReview("employeeId", actionReadOwn), handler.GetBalance)...)

		submit := []gin.HandlerFunc{submitLimit}
		if redisClient != nil {
			submit = append(submit, middleware.Idempotency(redisClient))
		}
		submit = append(submit, ownOrReview("employeeId", actionSubmit)...)
		leaves.POST("/requests/:employeeId", append(submit, handler.Submit)...)

		leaves.GET("/requests", middleware.RBACAuthorize(rbacService, resourceLeave, actionReview), handler.ListAll)
		leaves.GET("/requests/:employeeId", append(ownOrReview("employeeId", actionReadOwn), handler.ListByEmployee)...)
		leaves.PUT("/requests/:id", middleware.RBACAuthorize(rbacService, resourceLeave, actionReview), handler.UpdateStatus)
		leaves.DELETE("/requests/:id", middleware.RBACAuthorize(rbacService, resourceLeave, actionReview), handler.Delete)
	}
}
