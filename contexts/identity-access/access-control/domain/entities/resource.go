package entities

// Scopable is implemented by every resource type that participates in access
// decisions. The explicit interface replaces runtime attribute probing; a
// resource either has these fields or it does not compile against this module.
type Scopable interface {
	ResourceScopeKind() ScopeKind
	ResourceOwnerID() string
	ResourceCompanyID() string
	ResourceFactoryID() string
	ResourceAccessLevel() AccessLevel
}

// ResourceKind describes one resource type's storage capabilities for bulk
// query scoping. HasFactory controls whether factory narrowing applies at all:
// a type without a factory column skips the narrowing entirely.
type ResourceKind struct {
	Name       string
	Module     Module
	HasFactory bool
}

// Resource kinds registered with the platform's document services.
var (
	KindWPS       = ResourceKind{Name: "wps_records", Module: ModuleWPS, HasFactory: true}
	KindPQR       = ResourceKind{Name: "pqr_records", Module: ModulePQR, HasFactory: true}
	KindWelder    = ResourceKind{Name: "welder_records", Module: ModuleWelder, HasFactory: true}
	KindMaterials = ResourceKind{Name: "material_records", Module: ModuleMaterials, HasFactory: false}
	KindEquipment = ResourceKind{Name: "equipment_records", Module: ModuleEquipment, HasFactory: true}
)

// KindByName resolves a registered resource kind from its storage name.
func KindByName(name string) (ResourceKind, bool) {
	for _, kind := range []ResourceKind{KindWPS, KindPQR, KindWelder, KindMaterials, KindEquipment} {
		if kind.Name == name || string(kind.Module) == name {
			return kind, true
		}
	}
	return ResourceKind{}, false
}

// ScopeFilter is the declarative result of bulk-query scoping. Adapters lower
// it onto their storage; the filter itself is computed without loading rows
// and applying it twice with the same inputs yields the same set.
type ScopeFilter struct {
	// MatchNone guarantees an empty result set (non-member of the company).
	MatchNone bool
	// ScopeKind narrows to rows of one workspace kind.
	ScopeKind ScopeKind
	// OwnerID narrows to rows created by one user.
	OwnerID string
	// CompanyID narrows to one company's rows.
	CompanyID string
	// FactoryID narrows to one factory's rows plus rows with no factory
	// assignment (those are company-level by definition).
	FactoryID string
}
