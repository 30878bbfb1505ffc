package httptransport

import "time"

// ScopeDTO carries the workspace context of a request.
type ScopeDTO struct {
	Kind      string `json:"kind"`
	CompanyID string `json:"company_id,omitempty"`
	FactoryID string `json:"factory_id,omitempty"`
}

// ResourceDTO is the access profile of the resource under decision.
type ResourceDTO struct {
	Kind        string `json:"kind"`
	ScopeKind   string `json:"scope_kind"`
	OwnerID     string `json:"owner_id"`
	CompanyID   string `json:"company_id,omitempty"`
	FactoryID   string `json:"factory_id,omitempty"`
	AccessLevel string `json:"access_level"`
}

type CheckAccessRequest struct {
	Resource ResourceDTO `json:"resource"`
	Action   string      `json:"action"`
	Scope    ScopeDTO    `json:"scope"`
}

type CheckAccessResponse struct {
	ActorID   string    `json:"actor_id"`
	Allowed   bool      `json:"allowed"`
	Reason    string    `json:"reason,omitempty"`
	Detail    string    `json:"detail,omitempty"`
	CheckedAt time.Time `json:"checked_at"`
}

type ScopeFilterRequest struct {
	ResourceKind string   `json:"resource_kind"`
	Scope        ScopeDTO `json:"scope"`
}

type ScopeFilterResponse struct {
	MatchNone bool   `json:"match_none"`
	ScopeKind string `json:"scope_kind,omitempty"`
	OwnerID   string `json:"owner_id,omitempty"`
	CompanyID string `json:"company_id,omitempty"`
	FactoryID string `json:"factory_id,omitempty"`
}

type PermissionCellDTO struct {
	Module  string `json:"module"`
	Action  string `json:"action"`
	Granted bool   `json:"granted"`
}

type RoleDTO struct {
	RoleID    string              `json:"role_id"`
	CompanyID string              `json:"company_id"`
	Name      string              `json:"name"`
	Matrix    []PermissionCellDTO `json:"matrix"`
	DataScope string              `json:"data_scope"`
	IsActive  bool                `json:"is_active"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}

type SaveRoleRequest struct {
	RoleID    string              `json:"role_id,omitempty"`
	CompanyID string              `json:"company_id"`
	Name      string              `json:"name"`
	Matrix    []PermissionCellDTO `json:"matrix"`
	DataScope string              `json:"data_scope,omitempty"`
}

type ListRolesResponse struct {
	CompanyID string    `json:"company_id"`
	Roles     []RoleDTO `json:"roles"`
}

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
