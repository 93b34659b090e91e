package rbac

import "github.com/Ali-shok/employee-management/internal/employee"

// Policy is the static role table: permissions per role plus role inheritance
// as (child, parent) pairs.
type Policy struct {
	Permissions [][]string
	Inherits    [][]string
}

func DefaultPolicy() Policy {
	return Policy{
		Permissions: [][]string{
			{employee.RoleEmployee, "leave", "submit"},
			{employee.RoleEmployee, "leave", "read_own"},
			{employee.RoleHR, "leave", "review"},
		},
		Inherits: [][]string{
			{employee.RoleHR, employee.RoleEmployee},
			{employee.RoleAdmin, employee.RoleHR},
		},
	}
}
