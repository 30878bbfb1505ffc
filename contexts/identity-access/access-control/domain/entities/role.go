package entities

import "time"

// Module enumerates the resource modules a role can grant permissions on.
// Unknown modules are always denied; there is no open-ended permission map.
type Module string

const (
	ModuleWPS       Module = "wps"
	ModulePQR       Module = "pqr"
	ModuleWelder    Module = "welder"
	ModuleMaterials Module = "materials"
	ModuleEquipment Module = "equipment"
)

var knownModules = map[Module]bool{
	ModuleWPS:       true,
	ModulePQR:       true,
	ModuleWelder:    true,
	ModuleMaterials: true,
	ModuleEquipment: true,
}

func (m Module) IsValid() bool {
	return knownModules[m]
}

// ManagementKey is the permission-matrix key convention for a resource module.
func (m Module) ManagementKey() string {
	return string(m) + "_management"
}

// ModuleForDocumentType maps an approval document type onto its module.
// Returns false for document types no module claims.
func ModuleForDocumentType(documentType string) (Module, bool) {
	m := Module(documentType)
	if knownModules[m] {
		return m, true
	}
	return "", false
}

// Action enumerates the operations a permission matrix can grant.
type Action string

const (
	ActionView    Action = "view"
	ActionCreate  Action = "create"
	ActionEdit    Action = "edit"
	ActionDelete  Action = "delete"
	ActionShare   Action = "share"
	ActionApprove Action = "approve"
)

var knownActions = map[Action]bool{
	ActionView:    true,
	ActionCreate:  true,
	ActionEdit:    true,
	ActionDelete:  true,
	ActionShare:   true,
	ActionApprove: true,
}

func (a Action) IsValid() bool {
	return knownActions[a]
}

// PermissionKey addresses one cell of a role's permission matrix.
type PermissionKey struct {
	Module Module
	Action Action
}

// DataScope is the data-access breadth a role or employee record declares.
type DataScope string

const (
	DataScopeFactory DataScope = "factory"
	DataScopeCompany DataScope = "company"
)

// Role is a company-defined bundle of per-module permissions plus a declared
// data-access breadth. An inactive role grants nothing anywhere it is read.
type Role struct {
	RoleID    string
	CompanyID string
	Name      string
	Matrix    map[PermissionKey]bool
	DataScope DataScope
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Grants evaluates one matrix cell. Unknown modules and missing entries deny.
func (r Role) Grants(module Module, action Action) bool {
	if !r.IsActive {
		return false
	}
	if !module.IsValid() || !action.IsValid() {
		return false
	}
	return r.Matrix[PermissionKey{Module: module, Action: action}]
}

// Employee is the directory record for one user inside one company.
// DataScope is the record-level default; an assigned role's scope overrides it.
type Employee struct {
	UserID    string
	CompanyID string
	RoleID    string
	FactoryID string
	DataScope DataScope
	IsAdmin   bool
	IsActive  bool
}
