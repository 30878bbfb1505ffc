package ports

import (
	"context"
	"time"

	"weldvault/contexts/identity-access/access-control/domain/entities"
)

// Clock abstracts current time for deterministic tests.
type Clock interface {
	Now() time.Time
}

// IDGenerator abstracts UUID generation for role rows.
type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

// Directory is the identity/membership boundary. Authentication happens
// upstream; this module only reads membership facts.
type Directory interface {
	IsCompanyOwner(ctx context.Context, userID, companyID string) (bool, error)
	GetActiveEmployee(ctx context.Context, userID, companyID string) (entities.Employee, bool, error)
	IsSystemAdmin(ctx context.Context, userID string) (bool, error)
}

// RoleRepository stores per-company role definitions. Matrix writes must be
// single-statement so readers never observe a half-written matrix.
type RoleRepository interface {
	GetRole(ctx context.Context, roleID string) (entities.Role, error)
	ListRoles(ctx context.Context, companyID string) ([]entities.Role, error)
	SaveRole(ctx context.Context, role entities.Role) error
	DeactivateRole(ctx context.Context, roleID string, at time.Time) error
}
