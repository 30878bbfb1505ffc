package queries

import (
	"context"
	"errors"
	"log/slog"
	"time"

	application "weldvault/contexts/identity-access/access-control/application"
	"weldvault/contexts/identity-access/access-control/domain/entities"
	domainerrors "weldvault/contexts/identity-access/access-control/domain/errors"
	"weldvault/contexts/identity-access/access-control/domain/services"
	"weldvault/contexts/identity-access/access-control/ports"
)

// CheckAccessQuery is one single-resource authorization question.
type CheckAccessQuery struct {
	ActorID  string
	Resource entities.Scopable
	Kind     entities.ResourceKind
	Action   entities.Action
	Scope    entities.WorkspaceContext
}

// CheckAccessUseCase decides whether an actor may act on one resource under
// one scope. Denials always carry a machine-readable reason so callers can
// tell "request membership" apart from "request a role grant".
type CheckAccessUseCase struct {
	Directory         ports.Directory
	Roles             ports.RoleRepository
	ResolvePermission ResolvePermissionUseCase
	Clock             ports.Clock
	Logger            *slog.Logger
}

func (u CheckAccessUseCase) Execute(ctx context.Context, query CheckAccessQuery) (entities.Decision, error) {
	if query.ActorID == "" || query.Resource == nil {
		return entities.Decision{}, domainerrors.ErrInvalidInput
	}
	if !query.Action.IsValid() {
		return entities.Decision{}, domainerrors.ErrInvalidInput
	}
	if err := query.Scope.Validate(); err != nil {
		return entities.Decision{}, err
	}

	logger := application.ResolveLogger(u.Logger)
	now := u.now()
	resource := query.Resource

	// Personal resources are visible to their creator and nobody else,
	// regardless of any role the actor may hold elsewhere.
	if resource.ResourceScopeKind() == entities.ScopePersonal {
		if resource.ResourceOwnerID() == query.ActorID {
			return entities.Allow(query.ActorID, now), nil
		}
		return u.deny(logger, query, entities.DenyPrivateResource,
			"personal resources are visible only to their creator", now), nil
	}

	companyID := resource.ResourceCompanyID()
	if companyID == "" {
		return entities.Decision{}, domainerrors.ErrInvalidInput
	}

	owner, err := u.Directory.IsCompanyOwner(ctx, query.ActorID, companyID)
	if err != nil {
		return entities.Decision{}, err
	}
	if owner {
		return entities.Allow(query.ActorID, now), nil
	}

	employee, member, err := u.Directory.GetActiveEmployee(ctx, query.ActorID, companyID)
	if err != nil {
		return entities.Decision{}, err
	}
	if !member {
		return u.deny(logger, query, entities.DenyNotAMember,
			"actor is not an active member of the owning company", now), nil
	}

	level := resource.ResourceAccessLevel()
	// A factory-level resource that was never assigned to a factory is
	// company-level in practice.
	if level == entities.LevelFactory && resource.ResourceFactoryID() == "" {
		level = entities.LevelCompany
	}

	switch level {
	case entities.LevelPrivate:
		if resource.ResourceOwnerID() == query.ActorID {
			return entities.Allow(query.ActorID, now), nil
		}
		return u.deny(logger, query, entities.DenyPrivateResource,
			"private resources are visible only to their creator", now), nil

	case entities.LevelFactory:
		if employee.FactoryID == resource.ResourceFactoryID() && employee.FactoryID != "" {
			return entities.Allow(query.ActorID, now), nil
		}
		scope, err := u.effectiveDataScope(ctx, employee)
		if err != nil {
			return entities.Decision{}, err
		}
		if scope == entities.DataScopeCompany {
			return entities.Allow(query.ActorID, now), nil
		}
		return u.deny(logger, query, entities.DenyWrongScope,
			"resource belongs to another factory", now), nil

	case entities.LevelPublic:
		if query.Action == entities.ActionView {
			return entities.Allow(query.ActorID, now), nil
		}
		return u.permissionDecision(ctx, logger, query, employee, companyID, now)

	default: // LevelCompany
		return u.permissionDecision(ctx, logger, query, employee, companyID, now)
	}
}

// permissionDecision delegates to the role-permission ladder and applies the
// creator-only exception of the default no-role policy for edit/delete.
func (u CheckAccessUseCase) permissionDecision(
	ctx context.Context,
	logger *slog.Logger,
	query CheckAccessQuery,
	employee entities.Employee,
	companyID string,
	now time.Time,
) (entities.Decision, error) {
	if !employee.IsAdmin && employee.RoleID == "" &&
		(query.Action == entities.ActionEdit || query.Action == entities.ActionDelete) {
		if query.Resource.ResourceOwnerID() == query.ActorID {
			return entities.Allow(query.ActorID, now), nil
		}
		return u.deny(logger, query, entities.DenyMissingPermission,
			"without a role, edit and delete are restricted to the creator", now), nil
	}

	allowed, err := u.ResolvePermission.Execute(ctx, ResolvePermissionQuery{
		ActorID:   query.ActorID,
		CompanyID: companyID,
		Module:    query.Kind.Module,
		Action:    query.Action,
	})
	if err != nil {
		return entities.Decision{}, err
	}
	if allowed {
		return entities.Allow(query.ActorID, now), nil
	}
	return u.deny(logger, query, entities.DenyMissingPermission,
		"role does not grant "+string(query.Action)+" on "+query.Kind.Module.ManagementKey(), now), nil
}

func (u CheckAccessUseCase) deny(
	logger *slog.Logger,
	query CheckAccessQuery,
	reason entities.DenyReason,
	detail string,
	now time.Time,
) entities.Decision {
	logger.Debug("access denied",
		"event", "access_check_denied",
		"module", "identity-access/access-control",
		"layer", "application",
		"actor_id", query.ActorID,
		"resource_kind", query.Kind.Name,
		"action", string(query.Action),
		"reason", string(reason),
	)
	return entities.Deny(query.ActorID, reason, detail, now)
}

func (u CheckAccessUseCase) effectiveDataScope(ctx context.Context, employee entities.Employee) (entities.DataScope, error) {
	var role entities.Role
	roleFound := false
	if employee.RoleID != "" {
		found, err := u.Roles.GetRole(ctx, employee.RoleID)
		if err != nil && !errors.Is(err, domainerrors.ErrRoleNotFound) {
			return "", err
		}
		if err == nil {
			role = found
			roleFound = true
		}
	}
	return services.EffectiveDataScope(employee, role, roleFound), nil
}

func (u CheckAccessUseCase) now() time.Time {
	if u.Clock != nil {
		return u.Clock.Now().UTC()
	}
	return time.Now().UTC()
}
