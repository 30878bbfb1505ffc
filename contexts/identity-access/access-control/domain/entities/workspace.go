package entities

import domainerrors "weldvault/contexts/identity-access/access-control/domain/errors"

// ScopeKind says which tenancy boundary an operation executes under.
type ScopeKind string

const (
	ScopePersonal   ScopeKind = "personal"
	ScopeEnterprise ScopeKind = "enterprise"
)

// WorkspaceContext describes where an operation happens: an individual's
// private space, or a company (optionally factory) shared space.
type WorkspaceContext struct {
	ActorID   string
	Kind      ScopeKind
	CompanyID string
	FactoryID string
}

// Validate rejects an enterprise scope without a company id. Absence is a
// hard error, never a silent fallback to personal.
func (c WorkspaceContext) Validate() error {
	switch c.Kind {
	case ScopePersonal:
		return nil
	case ScopeEnterprise:
		if c.CompanyID == "" {
			return domainerrors.ErrInvalidScope
		}
		return nil
	default:
		return domainerrors.ErrInvalidScope
	}
}

func (c WorkspaceContext) IsPersonal() bool {
	return c.Kind == ScopePersonal
}

func (c WorkspaceContext) IsEnterprise() bool {
	return c.Kind == ScopeEnterprise
}

// AccessLevel is a resource-declared visibility breadth. Levels form a total
// order of increasing breadth: Private < Factory < Company < Public.
type AccessLevel string

const (
	LevelPrivate AccessLevel = "private"
	LevelFactory AccessLevel = "factory"
	LevelCompany AccessLevel = "company"
	LevelPublic  AccessLevel = "public"
)

var levelRank = map[AccessLevel]int{
	LevelPrivate: 0,
	LevelFactory: 1,
	LevelCompany: 2,
	LevelPublic:  3,
}

// Covers reports whether the level is at least as broad as other.
func (l AccessLevel) Covers(other AccessLevel) bool {
	return levelRank[l] >= levelRank[other]
}

func (l AccessLevel) IsValid() bool {
	_, ok := levelRank[l]
	return ok
}
