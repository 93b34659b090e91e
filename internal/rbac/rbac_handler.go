package rbac

import (
	"net/http"
	"strings"

	"github.com/Ali-shok/employee-management/internal/domain"
	"github.com/Ali-shok/employee-management/internal/shared/apperror"
	"github.com/Ali-shok/employee-management/internal/shared/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

type enforceBody struct {
	Resource string `json:"resource" binding:"required"`
	Action   string `json:"action" binding:"required"`
}

// Enforce checks a permission for the caller's own role.
func (h *Handler) Enforce(c *gin.Context) {
	var body enforceBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Input tidak valid", err.Error())
		return
	}

	allowed, err := h.service.Enforce(domain.EnforceRequest{
		Role:     c.GetString("role"),
		Resource: strings.TrimSpace(body.Resource),
		Action:   strings.TrimSpace(body.Action),
	})
	if err != nil {
		httpErr := apperror.ToHTTP(err)
		response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
		return
	}

	response.Success(c, http.StatusOK, domain.EnforceResponse{Allowed: allowed}, nil)
}

func (h *Handler) Me(c *gin.Context) {
	role := c.GetString("role")

	perms, err := h.service.Permissions(role)
	if err != nil {
		httpErr := apperror.ToHTTP(err)
		response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
		return
	}

	response.Success(c, http.StatusOK, domain.RoleResponse{Name: role, Permissions: perms}, nil)
}
