package services

import "weldvault/contexts/identity-access/access-control/domain/entities"

// EffectiveDataScope resolves an employee's data-access breadth. An assigned
// active role's declared scope overrides the employee-record default.
func EffectiveDataScope(employee entities.Employee, role entities.Role, roleFound bool) entities.DataScope {
	if roleFound && role.IsActive && role.DataScope != "" {
		return role.DataScope
	}
	if employee.DataScope != "" {
		return employee.DataScope
	}
	return entities.DataScopeFactory
}

// DefaultPolicyGrants is the conservative fallback for employees with no
// assigned role: view and create are allowed, everything else is not. The
// creator-only exception for edit/delete needs the resource and is applied by
// the access resolver, not here.
func DefaultPolicyGrants(action entities.Action) bool {
	return action == entities.ActionView || action == entities.ActionCreate
}
