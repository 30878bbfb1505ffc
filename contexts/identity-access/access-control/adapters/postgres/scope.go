package postgres

import (
	"gorm.io/gorm"

	"weldvault/contexts/identity-access/access-control/domain/entities"
)

// ApplyScopeFilter lowers a declarative scope filter onto a gorm query for
// one resource kind. Document services chain it as a gorm scope:
//
//	db.Scopes(postgres.ApplyScopeFilter(filter, kind)).Find(&rows)
//
// Applying the same filter twice narrows to the same set.
func ApplyScopeFilter(filter entities.ScopeFilter, kind entities.ResourceKind) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		if filter.MatchNone {
			// Guaranteed-empty set for non-members.
			return tx.Where("1 = 0")
		}
		if filter.ScopeKind != "" {
			tx = tx.Where("workspace_kind = ?", string(filter.ScopeKind))
		}
		if filter.OwnerID != "" {
			tx = tx.Where("owner_id = ?", filter.OwnerID)
		}
		if filter.CompanyID != "" {
			tx = tx.Where("company_id = ?", filter.CompanyID)
		}
		if filter.FactoryID != "" && kind.HasFactory {
			// Rows without a factory assignment are company-level and stay
			// visible to factory-scoped employees.
			tx = tx.Where("factory_id = ? OR factory_id IS NULL OR factory_id = ''", filter.FactoryID)
		}
		return tx
	}
}
