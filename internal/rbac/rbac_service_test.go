package rbac

import (
	"testing"

	"github.com/Ali-shok/employee-management/internal/domain"
	"github.com/Ali-shok/employee-management/internal/rbac/infra"

	"github.com/casbin/casbin/v2"
	"github.com/stretchr/testify/assert"
)

func newTestEnforcer(t *testing.T) *casbin.Enforcer {
	e, err := infra.NewEnforcer()
	assert.NoError(t, err)
	return e
}

func TestRBACService_Enforce(t *testing.T) {
	svc, err := NewService(newTestEnforcer(t), DefaultPolicy())
	assert.NoError(t, err)

	tests := []struct {
		name    string
		role    string
		action  string
		allowed bool
	}{
		{name: "employee submits", role: "employee", action: "submit", allowed: true},
		{name: "employee reads own", role: "employee", action: "read_own", allowed: true},
		{name: "employee cannot review", role: "employee", action: "review", allowed: false},
		{name: "hr reviews", role: "hr", action: "review", allowed: true},
		{name: "hr inherits submit", role: "hr", action: "submit", allowed: true},
		{name: "admin inherits review", role: "admin", action: "review", allowed: true},
		{name: "admin inherits read own", role: "admin", action: "read_own", allowed: true},
		{name: "unknown role", role: "contractor", action: "submit", allowed: false},
		{name: "empty role", role: "", action: "submit", allowed: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			allowed, err := svc.Enforce(domain.EnforceRequest{Role: tt.role, Resource: "leave", Action: tt.action})
			assert.NoError(t, err)
			assert.Equal(t, tt.allowed, allowed)
		})
	}
}

func TestRBACService_UnknownResource(t *testing.T) {
	svc, err := NewService(newTestEnforcer(t), DefaultPolicy())
	assert.NoError(t, err)

	allowed, err := svc.Enforce(domain.EnforceRequest{Role: "admin", Resource: "salary", Action: "delete"})
	assert.NoError(t, err)
	assert.False(t, allowed)
}

func TestRBACService_Permissions(t *testing.T) {
	svc, err := NewService(newTestEnforcer(t), DefaultPolicy())
	assert.NoError(t, err)

	perms, err := svc.Permissions("admin")
	assert.NoError(t, err)
	assert.ElementsMatch(t, []domain.PermissionResponse{
		{Resource: "leave", Action: "review"},
		{Resource: "leave", Action: "submit"},
		{Resource: "leave", Action: "read_own"},
	}, perms)

	perms, err = svc.Permissions("employee")
	assert.NoError(t, err)
	assert.Len(t, perms, 2)
}

func TestRBACService_LoadPolicyReplaces(t *testing.T) {
	svc, err := NewService(newTestEnforcer(t), DefaultPolicy())
	assert.NoError(t, err)

	err = svc.LoadPolicy(Policy{
		Permissions: [][]string{{"auditor", "leave", "review"}},
	})
	assert.NoError(t, err)

	allowed, err := svc.Enforce(domain.EnforceRequest{Role: "auditor", Resource: "leave", Action: "review"})
	assert.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = svc.Enforce(domain.EnforceRequest{Role: "hr", Resource: "leave", Action: "review"})
	assert.NoError(t, err)
	assert.False(t, allowed)
}
