package middleware

import (
	"github.com/Ali-shok/employee-management/internal/domain"
	"github.com/Ali-shok/employee-management/internal/shared/apperror"
	"github.com/Ali-shok/employee-management/internal/shared/response"

	"github.com/gin-gonic/gin"
)

// RBACService adalah interface lokal.
// Apapun package yang punya method Enforce(domain.EnforceRequest) bisa masuk ke sini.
type RBACService interface {
	Enforce(req domain.EnforceRequest) (bool, error)
}

func allowed(c *gin.Context, service RBACService, resource, action string) (bool, bool) {
	role, ok := c.Get("role")
	if !ok {
		abortWith(c, apperror.ErrUnauthorized)
		return false, false
	}
	roleStr, _ := role.(string)

	ok, err := service.Enforce(domain.EnforceRequest{
		Role:     roleStr,
		Resource: resource,
		Action:   action,
	})
	if err != nil {
		abortWith(c, apperror.ErrInternal)
		return false, false
	}
	return ok, true
}

func RBACAuthorize(service RBACService, resource, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, proceed := allowed(c, service, resource, action)
		if !proceed {
			return
		}
		if !ok {
			response.Abort(c, apperror.ErrForbidden.HTTPStatus, apperror.ErrForbidden.Code,
				apperror.ErrForbidden.Message, gin.H{"required": resource + ":" + action})
			return
		}
		c.Next()
	}
}

// SelfOrAuthorize lets the caller through when the path parameter names
// their own employee id, and otherwise requires resource:action.
func SelfOrAuthorize(service RBACService, param, resource, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		self := c.GetString("employee_id")
		if self != "" && self == c.Param(param) {
			c.Next()
			return
		}

		ok, proceed := allowed(c, service, resource, action)
		if !proceed {
			return
		}
		if !ok {
			response.Abort(c, apperror.ErrForbidden.HTTPStatus, apperror.ErrForbidden.Code,
				"You can only access your own leave records", gin.H{"required": resource + ":" + action})
			return
		}
		c.Next()
	}
}
