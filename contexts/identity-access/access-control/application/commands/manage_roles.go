package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "weldvault/contexts/identity-access/access-control/application"
	"weldvault/contexts/identity-access/access-control/domain/entities"
	domainerrors "weldvault/contexts/identity-access/access-control/domain/errors"
	"weldvault/contexts/identity-access/access-control/ports"
)

// SaveRoleCommand creates or updates a company role definition.
type SaveRoleCommand struct {
	ActorID   string
	CompanyID string
	RoleID    string
	Name      string
	Matrix    map[entities.PermissionKey]bool
	DataScope entities.DataScope
}

// DeactivateRoleCommand turns a role off; everywhere the role is read it then
// grants nothing.
type DeactivateRoleCommand struct {
	ActorID string
	RoleID  string
}

// RoleAdminUseCase mutates the role catalog. Only the company owner or an
// admin-flagged employee may call it; the matrix is written in one statement
// so readers never see a partial update.
type RoleAdminUseCase struct {
	Directory ports.Directory
	Roles     ports.RoleRepository
	Clock     ports.Clock
	IDGen     ports.IDGenerator
	Logger    *slog.Logger
}

func (u RoleAdminUseCase) SaveRole(ctx context.Context, cmd SaveRoleCommand) (entities.Role, error) {
	logger := application.ResolveLogger(u.Logger)
	if cmd.ActorID == "" || cmd.CompanyID == "" || strings.TrimSpace(cmd.Name) == "" {
		return entities.Role{}, domainerrors.ErrInvalidInput
	}
	for key := range cmd.Matrix {
		if !key.Module.IsValid() || !key.Action.IsValid() {
			return entities.Role{}, domainerrors.ErrInvalidInput
		}
	}

	if err := u.requireAdmin(ctx, cmd.ActorID, cmd.CompanyID); err != nil {
		return entities.Role{}, err
	}

	now := u.now()
	role := entities.Role{
		RoleID:    cmd.RoleID,
		CompanyID: cmd.CompanyID,
		Name:      strings.TrimSpace(cmd.Name),
		Matrix:    cmd.Matrix,
		DataScope: cmd.DataScope,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if role.DataScope == "" {
		role.DataScope = entities.DataScopeFactory
	}
	if role.RoleID == "" {
		id, err := u.IDGen.NewID(ctx)
		if err != nil {
			return entities.Role{}, err
		}
		role.RoleID = id
	} else {
		existing, err := u.Roles.GetRole(ctx, role.RoleID)
		if err != nil {
			return entities.Role{}, err
		}
		if existing.CompanyID != cmd.CompanyID {
			return entities.Role{}, domainerrors.ErrForbidden
		}
		role.CreatedAt = existing.CreatedAt
	}

	if err := u.Roles.SaveRole(ctx, role); err != nil {
		return entities.Role{}, err
	}

	logger.Info("role saved",
		"event", "access_role_saved",
		"module", "identity-access/access-control",
		"layer", "application",
		"actor_id", cmd.ActorID,
		"company_id", cmd.CompanyID,
		"role_id", role.RoleID,
		"data_scope", string(role.DataScope),
	)
	return role, nil
}

func (u RoleAdminUseCase) DeactivateRole(ctx context.Context, cmd DeactivateRoleCommand) error {
	logger := application.ResolveLogger(u.Logger)
	if cmd.ActorID == "" || cmd.RoleID == "" {
		return domainerrors.ErrInvalidInput
	}

	role, err := u.Roles.GetRole(ctx, cmd.RoleID)
	if err != nil {
		return err
	}
	if err := u.requireAdmin(ctx, cmd.ActorID, role.CompanyID); err != nil {
		return err
	}

	if err := u.Roles.DeactivateRole(ctx, cmd.RoleID, u.now()); err != nil {
		return err
	}
	logger.Info("role deactivated",
		"event", "access_role_deactivated",
		"module", "identity-access/access-control",
		"layer", "application",
		"actor_id", cmd.ActorID,
		"company_id", role.CompanyID,
		"role_id", cmd.RoleID,
	)
	return nil
}

func (u RoleAdminUseCase) ListRoles(ctx context.Context, actorID, companyID string) ([]entities.Role, error) {
	if actorID == "" || companyID == "" {
		return nil, domainerrors.ErrInvalidInput
	}
	if err := u.requireAdmin(ctx, actorID, companyID); err != nil {
		return nil, err
	}
	return u.Roles.ListRoles(ctx, companyID)
}

func (u RoleAdminUseCase) requireAdmin(ctx context.Context, actorID, companyID string) error {
	owner, err := u.Directory.IsCompanyOwner(ctx, actorID, companyID)
	if err != nil {
		return err
	}
	if owner {
		return nil
	}
	employee, found, err := u.Directory.GetActiveEmployee(ctx, actorID, companyID)
	if err != nil {
		return err
	}
	if !found {
		return domainerrors.ErrNotAMember
	}
	if !employee.IsAdmin {
		return domainerrors.ErrForbidden
	}
	return nil
}

func (u RoleAdminUseCase) now() time.Time {
	if u.Clock != nil {
		return u.Clock.Now().UTC()
	}
	return time.Now().UTC()
}
