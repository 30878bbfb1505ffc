package queries

import (
	"context"
	"errors"
	"log/slog"

	application "weldvault/contexts/identity-access/access-control/application"
	"weldvault/contexts/identity-access/access-control/domain/entities"
	domainerrors "weldvault/contexts/identity-access/access-control/domain/errors"
	"weldvault/contexts/identity-access/access-control/domain/services"
	"weldvault/contexts/identity-access/access-control/ports"
)

// ResolvePermissionQuery asks whether an actor holds one permission bit
// inside one company. Membership is assumed to be established by the caller;
// a non-member simply resolves to false.
type ResolvePermissionQuery struct {
	ActorID   string
	CompanyID string
	Module    entities.Module
	Action    entities.Action
}

// ResolvePermissionUseCase walks the permission ladder: company owner, admin
// employee flag, default no-role policy, then the role's permission matrix.
type ResolvePermissionUseCase struct {
	Directory ports.Directory
	Roles     ports.RoleRepository
	Logger    *slog.Logger
}

func (u ResolvePermissionUseCase) Execute(ctx context.Context, query ResolvePermissionQuery) (bool, error) {
	if query.ActorID == "" || query.CompanyID == "" {
		return false, domainerrors.ErrInvalidInput
	}
	logger := application.ResolveLogger(u.Logger)

	owner, err := u.Directory.IsCompanyOwner(ctx, query.ActorID, query.CompanyID)
	if err != nil {
		return false, err
	}
	if owner {
		return true, nil
	}

	employee, found, err := u.Directory.GetActiveEmployee(ctx, query.ActorID, query.CompanyID)
	if err != nil {
		return false, err
	}
	if !found {
		return false, nil
	}
	if employee.IsAdmin {
		return true, nil
	}

	if employee.RoleID == "" {
		return services.DefaultPolicyGrants(query.Action), nil
	}

	role, err := u.Roles.GetRole(ctx, employee.RoleID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrRoleNotFound) {
			// A dangling role id behaves like no role at all.
			return services.DefaultPolicyGrants(query.Action), nil
		}
		return false, err
	}

	allowed := role.Grants(query.Module, query.Action)
	if !allowed {
		logger.Debug("permission bit missing",
			"event", "access_permission_missing",
			"module", "identity-access/access-control",
			"layer", "application",
			"actor_id", query.ActorID,
			"company_id", query.CompanyID,
			"permission_module", query.Module.ManagementKey(),
			"action", string(query.Action),
			"role_id", role.RoleID,
		)
	}
	return allowed, nil
}
