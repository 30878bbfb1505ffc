package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"weldvault/contexts/identity-access/access-control/domain/entities"
	domainerrors "weldvault/contexts/identity-access/access-control/domain/errors"

	"gorm.io/gorm"
)

// Repository adapter for PostgreSQL. It reads the company/employee directory
// projections and owns role storage; the permission matrix is one jsonb
// column so a role write is a single statement.
type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{db: db, logger: logger}
}

// ── Directory port ──

func (r *Repository) IsCompanyOwner(ctx context.Context, userID, companyID string) (bool, error) {
	var row companyModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(companyID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, r.logError("access_repo_get_company_failed", err, "company_id", companyID)
	}
	return row.OwnerID == strings.TrimSpace(userID), nil
}

func (r *Repository) GetActiveEmployee(ctx context.Context, userID, companyID string) (entities.Employee, bool, error) {
	var row employeeModel
	err := r.db.WithContext(ctx).
		Where("user_id = ?", strings.TrimSpace(userID)).
		Where("company_id = ?", strings.TrimSpace(companyID)).
		Where("is_active = ?", true).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Employee{}, false, nil
		}
		return entities.Employee{}, false, r.logError("access_repo_get_employee_failed", err,
			"user_id", userID, "company_id", companyID)
	}
	return row.toEntity(), true, nil
}

func (r *Repository) IsSystemAdmin(ctx context.Context, userID string) (bool, error) {
	var row systemAdminModel
	err := r.db.WithContext(ctx).
		Where("user_id = ?", strings.TrimSpace(userID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, r.logError("access_repo_get_system_admin_failed", err, "user_id", userID)
	}
	return true, nil
}

// ── RoleRepository port ──

func (r *Repository) GetRole(ctx context.Context, roleID string) (entities.Role, error) {
	var row roleModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(roleID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Role{}, domainerrors.ErrRoleNotFound
		}
		return entities.Role{}, r.logError("access_repo_get_role_failed", err, "role_id", roleID)
	}
	return row.toEntity()
}

func (r *Repository) ListRoles(ctx context.Context, companyID string) ([]entities.Role, error) {
	var rows []roleModel
	if err := r.db.WithContext(ctx).
		Where("company_id = ?", strings.TrimSpace(companyID)).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("access_repo_list_roles_failed", err, "company_id", companyID)
	}
	items := make([]entities.Role, 0, len(rows))
	for _, row := range rows {
		role, err := row.toEntity()
		if err != nil {
			return nil, err
		}
		items = append(items, role)
	}
	return items, nil
}

func (r *Repository) SaveRole(ctx context.Context, role entities.Role) error {
	row, err := roleModelFromEntity(role)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Save(&row).Error; err != nil {
		return r.logError("access_repo_save_role_failed", err,
			"role_id", role.RoleID, "company_id", role.CompanyID)
	}
	return nil
}

func (r *Repository) DeactivateRole(ctx context.Context, roleID string, at time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&roleModel{}).
		Where("id = ?", strings.TrimSpace(roleID)).
		Updates(map[string]any{
			"is_active":  false,
			"updated_at": at.UTC(),
		})
	if result.Error != nil {
		return r.logError("access_repo_deactivate_role_failed", result.Error, "role_id", roleID)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrRoleNotFound
	}
	return nil
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "identity-access/access-control",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("access repository operation failed", fields...)
	return err
}

type companyModel struct {
	ID      string `gorm:"column:id;primaryKey"`
	OwnerID string `gorm:"column:owner_id"`
	Name    string `gorm:"column:name"`
}

func (companyModel) TableName() string {
	return "companies"
}

type employeeModel struct {
	UserID    string `gorm:"column:user_id;primaryKey"`
	CompanyID string `gorm:"column:company_id;primaryKey"`
	RoleID    string `gorm:"column:role_id"`
	FactoryID string `gorm:"column:factory_id"`
	DataScope string `gorm:"column:data_scope"`
	IsAdmin   bool   `gorm:"column:is_admin"`
	IsActive  bool   `gorm:"column:is_active"`
}

func (employeeModel) TableName() string {
	return "employees"
}

func (m employeeModel) toEntity() entities.Employee {
	return entities.Employee{
		UserID:    m.UserID,
		CompanyID: m.CompanyID,
		RoleID:    m.RoleID,
		FactoryID: m.FactoryID,
		DataScope: entities.DataScope(m.DataScope),
		IsAdmin:   m.IsAdmin,
		IsActive:  m.IsActive,
	}
}

type systemAdminModel struct {
	UserID string `gorm:"column:user_id;primaryKey"`
}

func (systemAdminModel) TableName() string {
	return "system_admins"
}

type roleModel struct {
	ID        string    `gorm:"column:id;primaryKey"`
	CompanyID string    `gorm:"column:company_id"`
	Name      string    `gorm:"column:name"`
	Matrix    []byte    `gorm:"column:permission_matrix;type:jsonb"`
	DataScope string    `gorm:"column:data_scope"`
	IsActive  bool      `gorm:"column:is_active"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (roleModel) TableName() string {
	return "company_roles"
}

// matrixDocument is the jsonb shape: module management key -> action -> bool.
type matrixDocument map[string]map[string]bool

func roleModelFromEntity(role entities.Role) (roleModel, error) {
	doc := make(matrixDocument)
	for key, granted := range role.Matrix {
		if !granted {
			continue
		}
		moduleKey := key.Module.ManagementKey()
		if doc[moduleKey] == nil {
			doc[moduleKey] = make(map[string]bool)
		}
		doc[moduleKey][string(key.Action)] = true
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return roleModel{}, err
	}
	return roleModel{
		ID:        strings.TrimSpace(role.RoleID),
		CompanyID: strings.TrimSpace(role.CompanyID),
		Name:      strings.TrimSpace(role.Name),
		Matrix:    raw,
		DataScope: string(role.DataScope),
		IsActive:  role.IsActive,
		CreatedAt: role.CreatedAt.UTC(),
		UpdatedAt: role.UpdatedAt.UTC(),
	}, nil
}

func (m roleModel) toEntity() (entities.Role, error) {
	matrix := make(map[entities.PermissionKey]bool)
	if len(m.Matrix) > 0 {
		var doc matrixDocument
		if err := json.Unmarshal(m.Matrix, &doc); err != nil {
			return entities.Role{}, err
		}
		for moduleKey, actions := range doc {
			module := entities.Module(strings.TrimSuffix(moduleKey, "_management"))
			if !module.IsValid() {
				// Unknown modules stay out of the matrix; they deny anyway.
				continue
			}
			for action, granted := range actions {
				if granted {
					matrix[entities.PermissionKey{Module: module, Action: entities.Action(action)}] = true
				}
			}
		}
	}
	return entities.Role{
		RoleID:    m.ID,
		CompanyID: m.CompanyID,
		Name:      m.Name,
		Matrix:    matrix,
		DataScope: entities.DataScope(m.DataScope),
		IsActive:  m.IsActive,
		CreatedAt: m.CreatedAt.UTC(),
		UpdatedAt: m.UpdatedAt.UTC(),
	}, nil
}
