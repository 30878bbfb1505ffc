package httpadapter

import (
	"context"
	"log/slog"

	application "weldvault/contexts/identity-access/access-control/application"
	"weldvault/contexts/identity-access/access-control/application/commands"
	"weldvault/contexts/identity-access/access-control/application/queries"
	"weldvault/contexts/identity-access/access-control/domain/entities"
	domainerrors "weldvault/contexts/identity-access/access-control/domain/errors"
	httptransport "weldvault/contexts/identity-access/access-control/transport/http"
)

// Handler maps HTTP DTOs to application commands/queries.
type Handler struct {
	CheckAccess CheckAccessPort
	ScopeFilter ScopeFilterPort
	RoleAdmin   commands.RoleAdminUseCase
	Logger      *slog.Logger
}

// CheckAccessPort and ScopeFilterPort keep the handler testable without the
// full use-case wiring.
type CheckAccessPort interface {
	Execute(ctx context.Context, query queries.CheckAccessQuery) (entities.Decision, error)
}

type ScopeFilterPort interface {
	Execute(ctx context.Context, query queries.ScopeFilterQuery) (entities.ScopeFilter, error)
}

// resourceRef adapts the transport resource payload to the Scopable contract.
type resourceRef struct {
	scopeKind entities.ScopeKind
	ownerID   string
	companyID string
	factoryID string
	level     entities.AccessLevel
}

func (r resourceRef) ResourceScopeKind() entities.ScopeKind     { return r.scopeKind }
func (r resourceRef) ResourceOwnerID() string                   { return r.ownerID }
func (r resourceRef) ResourceCompanyID() string                 { return r.companyID }
func (r resourceRef) ResourceFactoryID() string                 { return r.factoryID }
func (r resourceRef) ResourceAccessLevel() entities.AccessLevel { return r.level }

func (h Handler) CheckAccessHandler(
	ctx context.Context,
	actorID string,
	request httptransport.CheckAccessRequest,
) (httptransport.CheckAccessResponse, error) {
	logger := application.ResolveLogger(h.Logger)

	kind, ok := entities.KindByName(request.Resource.Kind)
	if !ok {
		return httptransport.CheckAccessResponse{}, domainerrors.ErrUnknownResource
	}
	level := entities.AccessLevel(request.Resource.AccessLevel)
	if !level.IsValid() {
		return httptransport.CheckAccessResponse{}, domainerrors.ErrInvalidInput
	}

	decision, err := h.CheckAccess.Execute(ctx, queries.CheckAccessQuery{
		ActorID: actorID,
		Resource: resourceRef{
			scopeKind: entities.ScopeKind(request.Resource.ScopeKind),
			ownerID:   request.Resource.OwnerID,
			companyID: request.Resource.CompanyID,
			factoryID: request.Resource.FactoryID,
			level:     level,
		},
		Kind:   kind,
		Action: entities.Action(request.Action),
		Scope:  scopeFromDTO(actorID, request.Scope),
	})
	if err != nil {
		logger.Error("http access check failed",
			"event", "access_http_check_failed",
			"module", "identity-access/access-control",
			"layer", "transport",
			"actor_id", actorID,
			"resource_kind", request.Resource.Kind,
			"error", err.Error(),
		)
		return httptransport.CheckAccessResponse{}, err
	}
	return httptransport.CheckAccessResponse{
		ActorID:   decision.ActorID,
		Allowed:   decision.Allowed,
		Reason:    string(decision.Reason),
		Detail:    decision.Detail,
		CheckedAt: decision.CheckedAt,
	}, nil
}

func (h Handler) ScopeFilterHandler(
	ctx context.Context,
	actorID string,
	request httptransport.ScopeFilterRequest,
) (httptransport.ScopeFilterResponse, error) {
	kind, ok := entities.KindByName(request.ResourceKind)
	if !ok {
		return httptransport.ScopeFilterResponse{}, domainerrors.ErrUnknownResource
	}

	filter, err := h.ScopeFilter.Execute(ctx, queries.ScopeFilterQuery{
		ActorID: actorID,
		Kind:    kind,
		Scope:   scopeFromDTO(actorID, request.Scope),
	})
	if err != nil {
		return httptransport.ScopeFilterResponse{}, err
	}
	return httptransport.ScopeFilterResponse{
		MatchNone: filter.MatchNone,
		ScopeKind: string(filter.ScopeKind),
		OwnerID:   filter.OwnerID,
		CompanyID: filter.CompanyID,
		FactoryID: filter.FactoryID,
	}, nil
}

func (h Handler) SaveRoleHandler(
	ctx context.Context,
	actorID string,
	request httptransport.SaveRoleRequest,
) (httptransport.RoleDTO, error) {
	matrix := make(map[entities.PermissionKey]bool, len(request.Matrix))
	for _, cell := range request.Matrix {
		if cell.Granted {
			matrix[entities.PermissionKey{
				Module: entities.Module(cell.Module),
				Action: entities.Action(cell.Action),
			}] = true
		}
	}

	role, err := h.RoleAdmin.SaveRole(ctx, commands.SaveRoleCommand{
		ActorID:   actorID,
		CompanyID: request.CompanyID,
		RoleID:    request.RoleID,
		Name:      request.Name,
		Matrix:    matrix,
		DataScope: entities.DataScope(request.DataScope),
	})
	if err != nil {
		return httptransport.RoleDTO{}, err
	}
	return roleDTO(role), nil
}

func (h Handler) DeactivateRoleHandler(ctx context.Context, actorID, roleID string) error {
	return h.RoleAdmin.DeactivateRole(ctx, commands.DeactivateRoleCommand{
		ActorID: actorID,
		RoleID:  roleID,
	})
}

func (h Handler) ListRolesHandler(ctx context.Context, actorID, companyID string) (httptransport.ListRolesResponse, error) {
	roles, err := h.RoleAdmin.ListRoles(ctx, actorID, companyID)
	if err != nil {
		return httptransport.ListRolesResponse{}, err
	}
	items := make([]httptransport.RoleDTO, 0, len(roles))
	for _, role := range roles {
		items = append(items, roleDTO(role))
	}
	return httptransport.ListRolesResponse{CompanyID: companyID, Roles: items}, nil
}

func scopeFromDTO(actorID string, dto httptransport.ScopeDTO) entities.WorkspaceContext {
	return entities.WorkspaceContext{
		ActorID:   actorID,
		Kind:      entities.ScopeKind(dto.Kind),
		CompanyID: dto.CompanyID,
		FactoryID: dto.FactoryID,
	}
}

func roleDTO(role entities.Role) httptransport.RoleDTO {
	cells := make([]httptransport.PermissionCellDTO, 0, len(role.Matrix))
	for key, granted := range role.Matrix {
		cells = append(cells, httptransport.PermissionCellDTO{
			Module:  string(key.Module),
			Action:  string(key.Action),
			Granted: granted,
		})
	}
	return httptransport.RoleDTO{
		RoleID:    role.RoleID,
		CompanyID: role.CompanyID,
		Name:      role.Name,
		Matrix:    cells,
		DataScope: string(role.DataScope),
		IsActive:  role.IsActive,
		CreatedAt: role.CreatedAt,
		UpdatedAt: role.UpdatedAt,
	}
}
