package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"weldvault/contexts/document-approval/approval-engine/domain/entities"
	domainerrors "weldvault/contexts/document-approval/approval-engine/domain/errors"
	"weldvault/contexts/document-approval/approval-engine/ports"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	outboxStatusPending   = "pending"
	outboxStatusPublished = "published"
)

// Repository is the gorm-backed implementation of the approval-engine
// storage ports. Submit and transition writes run in one transaction so the
// instance row, history entry, document status and outbox row commit
// together. Duplicate active submissions are caught by the partial unique
// index on (document_type, document_id) over active statuses.
type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Directory.

func (r *Repository) GetActiveEmployee(ctx context.Context, userID, companyID string) (ports.EmployeeRef, bool, error) {
	var row employeeModel
	err := r.db.WithContext(ctx).
		Where("user_id = ?", strings.TrimSpace(userID)).
		Where("company_id = ?", strings.TrimSpace(companyID)).
		Where("is_active = ?", true).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.EmployeeRef{}, false, nil
		}
		return ports.EmployeeRef{}, false, r.logError("approval_repo_get_employee_failed", err,
			"user_id", strings.TrimSpace(userID),
			"company_id", strings.TrimSpace(companyID),
		)
	}
	return row.toRef(), true, nil
}

func (r *Repository) UsersWithRole(ctx context.Context, companyID, roleID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&employeeModel{}).
		Where("company_id = ?", strings.TrimSpace(companyID)).
		Where("role_id = ?", strings.TrimSpace(roleID)).
		Where("is_active = ?", true).
		Order("user_id ASC").
		Pluck("user_id", &ids).
		Error
	if err != nil {
		return nil, r.logError("approval_repo_users_with_role_failed", err,
			"company_id", strings.TrimSpace(companyID),
			"role_id", strings.TrimSpace(roleID),
		)
	}
	return ids, nil
}

func (r *Repository) UsersInDepartment(ctx context.Context, companyID, departmentID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&employeeModel{}).
		Where("company_id = ?", strings.TrimSpace(companyID)).
		Where("department_id = ?", strings.TrimSpace(departmentID)).
		Where("is_active = ?", true).
		Order("user_id ASC").
		Pluck("user_id", &ids).
		Error
	if err != nil {
		return nil, r.logError("approval_repo_users_in_department_failed", err,
			"company_id", strings.TrimSpace(companyID),
			"department_id", strings.TrimSpace(departmentID),
		)
	}
	return ids, nil
}

func (r *Repository) ActiveMembers(ctx context.Context, companyID string, userIDs []string) ([]string, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&employeeModel{}).
		Where("company_id = ?", strings.TrimSpace(companyID)).
		Where("user_id IN ?", userIDs).
		Where("is_active = ?", true).
		Pluck("user_id", &ids).
		Error
	if err != nil {
		return nil, r.logError("approval_repo_active_members_failed", err,
			"company_id", strings.TrimSpace(companyID),
		)
	}
	return ids, nil
}

// WorkflowRepository.

func (r *Repository) GetDefinition(ctx context.Context, workflowID string) (entities.WorkflowDefinition, error) {
	var row workflowModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(workflowID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.WorkflowDefinition{}, domainerrors.ErrWorkflowNotFound
		}
		return entities.WorkflowDefinition{}, r.logError("approval_repo_get_workflow_failed", err,
			"workflow_id", strings.TrimSpace(workflowID),
		)
	}
	return row.toEntity()
}

func (r *Repository) FindCompanyWorkflow(ctx context.Context, documentType, companyID string) (entities.WorkflowDefinition, bool, error) {
	if strings.TrimSpace(companyID) == "" {
		return entities.WorkflowDefinition{}, false, nil
	}
	var row workflowModel
	err := r.db.WithContext(ctx).
		Where("document_type = ?", strings.TrimSpace(documentType)).
		Where("company_id = ?", strings.TrimSpace(companyID)).
		Where("is_active = ?", true).
		Order("is_default DESC, created_at DESC").
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.WorkflowDefinition{}, false, nil
		}
		return entities.WorkflowDefinition{}, false, r.logError("approval_repo_find_company_workflow_failed", err,
			"document_type", strings.TrimSpace(documentType),
			"company_id", strings.TrimSpace(companyID),
		)
	}
	definition, convErr := row.toEntity()
	if convErr != nil {
		return entities.WorkflowDefinition{}, false, convErr
	}
	return definition, true, nil
}

func (r *Repository) FindSystemDefault(ctx context.Context, documentType string) (entities.WorkflowDefinition, bool, error) {
	var row workflowModel
	err := r.db.WithContext(ctx).
		Where("document_type = ?", strings.TrimSpace(documentType)).
		Where("company_id IS NULL OR company_id = ''").
		Where("is_active = ?", true).
		Order("created_at DESC").
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.WorkflowDefinition{}, false, nil
		}
		return entities.WorkflowDefinition{}, false, r.logError("approval_repo_find_system_default_failed", err,
			"document_type", strings.TrimSpace(documentType),
		)
	}
	definition, convErr := row.toEntity()
	if convErr != nil {
		return entities.WorkflowDefinition{}, false, convErr
	}
	return definition, true, nil
}

func (r *Repository) SaveDefinition(ctx context.Context, definition entities.WorkflowDefinition) error {
	row, err := workflowModelFromEntity(definition)
	if err != nil {
		return err
	}
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"document_type": row.DocumentType,
			"company_id":    row.CompanyID,
			"name":          row.Name,
			"steps":         row.Steps,
			"is_default":    row.IsDefault,
			"is_active":     row.IsActive,
			"updated_at":    row.UpdatedAt,
		}),
	}).Create(&row)
	if create.Error != nil {
		return r.logError("approval_repo_save_workflow_failed", create.Error,
			"workflow_id", row.ID,
			"document_type", row.DocumentType,
		)
	}
	return nil
}

func (r *Repository) ListDefinitions(ctx context.Context, companyID, documentType string) ([]entities.WorkflowDefinition, error) {
	tx := r.db.WithContext(ctx).Model(&workflowModel{})
	if strings.TrimSpace(companyID) == "" {
		tx = tx.Where("company_id IS NULL OR company_id = ''")
	} else {
		tx = tx.Where("company_id = ?", strings.TrimSpace(companyID))
	}
	if strings.TrimSpace(documentType) != "" {
		tx = tx.Where("document_type = ?", strings.TrimSpace(documentType))
	}
	var rows []workflowModel
	if err := tx.Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, r.logError("approval_repo_list_workflows_failed", err,
			"company_id", strings.TrimSpace(companyID),
		)
	}
	items := make([]entities.WorkflowDefinition, 0, len(rows))
	for _, row := range rows {
		definition, err := row.toEntity()
		if err != nil {
			return nil, err
		}
		items = append(items, definition)
	}
	return items, nil
}

// InstanceRepository.

func (r *Repository) GetInstance(ctx context.Context, instanceID string) (entities.ApprovalInstance, error) {
	var row instanceModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(instanceID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.ApprovalInstance{}, domainerrors.ErrInstanceNotFound
		}
		return entities.ApprovalInstance{}, r.logError("approval_repo_get_instance_failed", err,
			"instance_id", strings.TrimSpace(instanceID),
		)
	}
	return row.toEntity(), nil
}

func (r *Repository) FindActiveByDocument(ctx context.Context, documentType, documentID string) (entities.ApprovalInstance, bool, error) {
	var row instanceModel
	err := r.db.WithContext(ctx).
		Where("document_type = ?", strings.TrimSpace(documentType)).
		Where("document_id = ?", strings.TrimSpace(documentID)).
		Where("status IN ?", activeStatusStrings()).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.ApprovalInstance{}, false, nil
		}
		return entities.ApprovalInstance{}, false, r.logError("approval_repo_find_active_failed", err,
			"document_type", strings.TrimSpace(documentType),
			"document_id", strings.TrimSpace(documentID),
		)
	}
	return row.toEntity(), true, nil
}

func (r *Repository) CreateInstance(ctx context.Context, input ports.CreateInstanceInput) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := instanceModelFromEntity(input.Instance)
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
		historyRow := historyModelFromEntity(input.History)
		if err := tx.Create(&historyRow).Error; err != nil {
			return err
		}
		return appendOutbox(tx, input.OutboxID, input.Notification, input.History.CreatedAt)
	})
	if err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrDuplicateActive
		}
		return r.logError("approval_repo_create_instance_failed", err,
			"instance_id", strings.TrimSpace(input.Instance.InstanceID),
			"document_type", strings.TrimSpace(input.Instance.DocumentType),
			"document_id", strings.TrimSpace(input.Instance.DocumentID),
		)
	}
	return nil
}

func (r *Repository) ApplyTransition(ctx context.Context, input ports.TransitionInput) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := instanceModelFromEntity(input.Instance)
		result := tx.Model(&instanceModel{}).
			Where("id = ?", row.ID).
			Where("version = ?", input.ExpectedVersion).
			Updates(map[string]any{
				"status":            row.Status,
				"current_step":      row.CurrentStep,
				"current_step_name": row.CurrentStepName,
				"completed_at":      row.CompletedAt,
				"final_approver_id": row.FinalApproverID,
				"version":           row.Version,
				"updated_at":        row.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domainerrors.ErrConflict
		}

		historyRow := historyModelFromEntity(input.History)
		if err := tx.Create(&historyRow).Error; err != nil {
			return err
		}

		if input.DocumentStatus != "" {
			docRow := documentStatusModel{
				DocumentType: row.DocumentType,
				DocumentID:   row.DocumentID,
				Status:       input.DocumentStatus,
				UpdatedAt:    row.UpdatedAt,
			}
			if err := tx.Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "document_type"}, {Name: "document_id"}},
				DoUpdates: clause.Assignments(map[string]any{
					"status":     docRow.Status,
					"updated_at": docRow.UpdatedAt,
				}),
			}).Create(&docRow).Error; err != nil {
				return err
			}
		}

		return appendOutbox(tx, input.OutboxID, input.Notification, input.History.CreatedAt)
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrConflict) {
			return domainerrors.ErrConflict
		}
		return r.logError("approval_repo_apply_transition_failed", err,
			"instance_id", strings.TrimSpace(input.Instance.InstanceID),
		)
	}
	return nil
}

func appendOutbox(tx *gorm.DB, outboxID string, notification entities.Notification, createdAt time.Time) error {
	payload, err := json.Marshal(notification)
	if err != nil {
		return err
	}
	row := outboxModel{
		OutboxID:  strings.TrimSpace(outboxID),
		EventType: "approval." + notification.EventKind,
		Payload:   payload,
		Status:    outboxStatusPending,
		CreatedAt: createdAt.UTC(),
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "outbox_id"}},
		DoNothing: true,
	}).Create(&row).Error
}

func (r *Repository) ListInstances(ctx context.Context, filter ports.InstanceFilter, page ports.Page) ([]entities.ApprovalInstance, int64, error) {
	tx := r.db.WithContext(ctx).Model(&instanceModel{})
	if strings.TrimSpace(filter.CompanyID) != "" {
		tx = tx.Where("company_id = ?", strings.TrimSpace(filter.CompanyID))
	}
	if strings.TrimSpace(filter.SubmitterID) != "" {
		tx = tx.Where("submitter_id = ?", strings.TrimSpace(filter.SubmitterID))
	}
	if len(filter.Statuses) > 0 {
		tx = tx.Where("status IN ?", statusStrings(filter.Statuses))
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, r.logError("approval_repo_count_instances_failed", err,
			"company_id", strings.TrimSpace(filter.CompanyID),
		)
	}

	page = page.Normalize()
	var rows []instanceModel
	if err := tx.Order("submitted_at DESC").
		Offset(page.Offset()).
		Limit(page.Size).
		Find(&rows).Error; err != nil {
		return nil, 0, r.logError("approval_repo_list_instances_failed", err,
			"company_id", strings.TrimSpace(filter.CompanyID),
		)
	}

	items := make([]entities.ApprovalInstance, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, total, nil
}

func (r *Repository) CountByStatus(ctx context.Context, companyID string) (map[entities.Status]int64, error) {
	type statusCount struct {
		Status string
		Total  int64
	}
	var rows []statusCount
	err := r.db.WithContext(ctx).
		Model(&instanceModel{}).
		Select("status, COUNT(*) AS total").
		Where("company_id = ?", strings.TrimSpace(companyID)).
		Group("status").
		Scan(&rows).
		Error
	if err != nil {
		return nil, r.logError("approval_repo_count_by_status_failed", err,
			"company_id", strings.TrimSpace(companyID),
		)
	}
	counts := make(map[entities.Status]int64, len(rows))
	for _, row := range rows {
		counts[entities.Status(row.Status)] = row.Total
	}
	return counts, nil
}

func (r *Repository) CountBySubmitter(ctx context.Context, companyID, submitterID string) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&instanceModel{}).
		Where("company_id = ?", strings.TrimSpace(companyID)).
		Where("submitter_id = ?", strings.TrimSpace(submitterID)).
		Count(&total).
		Error
	if err != nil {
		return 0, r.logError("approval_repo_count_by_submitter_failed", err,
			"company_id", strings.TrimSpace(companyID),
			"submitter_id", strings.TrimSpace(submitterID),
		)
	}
	return total, nil
}

func (r *Repository) CountOverdue(ctx context.Context, companyID string, submittedBefore time.Time) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&instanceModel{}).
		Where("company_id = ?", strings.TrimSpace(companyID)).
		Where("status IN ?", activeStatusStrings()).
		Where("submitted_at < ?", submittedBefore.UTC()).
		Count(&total).
		Error
	if err != nil {
		return 0, r.logError("approval_repo_count_overdue_failed", err,
			"company_id", strings.TrimSpace(companyID),
		)
	}
	return total, nil
}

// DocumentStatusSink. Transitions fold the status write into their own
// transaction; this standalone form serves callers outside a transition.
func (r *Repository) SetStatus(ctx context.Context, documentType, documentID, status string) error {
	row := documentStatusModel{
		DocumentType: strings.TrimSpace(documentType),
		DocumentID:   strings.TrimSpace(documentID),
		Status:       status,
		UpdatedAt:    time.Now().UTC(),
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "document_type"}, {Name: "document_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"status":     row.Status,
			"updated_at": row.UpdatedAt,
		}),
	}).Create(&row).Error
	if err != nil {
		return r.logError("approval_repo_set_document_status_failed", err,
			"document_type", row.DocumentType,
			"document_id", row.DocumentID,
		)
	}
	return nil
}

// HistoryRepository.

func (r *Repository) ListHistory(ctx context.Context, instanceID string) ([]entities.HistoryEntry, error) {
	var rows []historyModel
	if err := r.db.WithContext(ctx).
		Where("instance_id = ?", strings.TrimSpace(instanceID)).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("approval_repo_list_history_failed", err,
			"instance_id", strings.TrimSpace(instanceID),
		)
	}
	items := make([]entities.HistoryEntry, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

// OutboxRepository.

func (r *Repository) ListPendingOutbox(ctx context.Context, limit int) ([]ports.OutboxMessage, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []outboxModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", outboxStatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, r.logError("approval_repo_list_pending_outbox_failed", err, "limit", limit)
	}
	items := make([]ports.OutboxMessage, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.OutboxMessage{
			OutboxID:  row.OutboxID,
			EventType: row.EventType,
			Payload:   append([]byte(nil), row.Payload...),
			CreatedAt: row.CreatedAt.UTC(),
		})
	}
	return items, nil
}

func (r *Repository) MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&outboxModel{}).
		Where("outbox_id = ?", strings.TrimSpace(outboxID)).
		Updates(map[string]any{
			"status":       outboxStatusPublished,
			"published_at": publishedAt.UTC(),
		})
	if result.Error != nil {
		return r.logError("approval_repo_mark_outbox_published_failed", result.Error,
			"outbox_id", strings.TrimSpace(outboxID),
		)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrConflict
	}
	return nil
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "document-approval/approval-engine",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("approval repository operation failed", fields...)
	return err
}

type instanceModel struct {
	ID              string     `gorm:"column:id;primaryKey"`
	WorkflowID      string     `gorm:"column:workflow_id"`
	DocumentType    string     `gorm:"column:document_type"`
	DocumentID      string     `gorm:"column:document_id"`
	DocumentNumber  string     `gorm:"column:document_number"`
	DocumentTitle   string     `gorm:"column:document_title"`
	WorkspaceKind   string     `gorm:"column:workspace_kind"`
	CompanyID       string     `gorm:"column:company_id"`
	FactoryID       string     `gorm:"column:factory_id"`
	Status          string     `gorm:"column:status"`
	CurrentStep     int        `gorm:"column:current_step"`
	CurrentStepName string     `gorm:"column:current_step_name"`
	TotalSteps      int        `gorm:"column:total_steps"`
	SubmitterID     string     `gorm:"column:submitter_id"`
	SubmitterName   string     `gorm:"column:submitter_name"`
	SubmittedAt     time.Time  `gorm:"column:submitted_at"`
	CompletedAt     *time.Time `gorm:"column:completed_at"`
	FinalApproverID string     `gorm:"column:final_approver_id"`
	Priority        string     `gorm:"column:priority"`
	Notes           string     `gorm:"column:notes"`
	Version         int        `gorm:"column:version"`
	CreatedAt       time.Time  `gorm:"column:created_at"`
	UpdatedAt       time.Time  `gorm:"column:updated_at"`
}

func (instanceModel) TableName() string {
	return "approval_instances"
}

func instanceModelFromEntity(instance entities.ApprovalInstance) instanceModel {
	return instanceModel{
		ID:              strings.TrimSpace(instance.InstanceID),
		WorkflowID:      strings.TrimSpace(instance.WorkflowID),
		DocumentType:    strings.TrimSpace(instance.DocumentType),
		DocumentID:      strings.TrimSpace(instance.DocumentID),
		DocumentNumber:  strings.TrimSpace(instance.DocumentNumber),
		DocumentTitle:   strings.TrimSpace(instance.DocumentTitle),
		WorkspaceKind:   string(instance.Workspace.Kind),
		CompanyID:       strings.TrimSpace(instance.Workspace.CompanyID),
		FactoryID:       strings.TrimSpace(instance.Workspace.FactoryID),
		Status:          string(instance.Status),
		CurrentStep:     instance.CurrentStep,
		CurrentStepName: instance.CurrentStepName,
		TotalSteps:      instance.TotalSteps,
		SubmitterID:     strings.TrimSpace(instance.SubmitterID),
		SubmitterName:   strings.TrimSpace(instance.SubmitterName),
		SubmittedAt:     instance.SubmittedAt.UTC(),
		CompletedAt:     normalizeOptionalTime(instance.CompletedAt),
		FinalApproverID: strings.TrimSpace(instance.FinalApproverID),
		Priority:        strings.TrimSpace(instance.Priority),
		Notes:           instance.Notes,
		Version:         instance.Version,
		CreatedAt:       instance.CreatedAt.UTC(),
		UpdatedAt:       instance.UpdatedAt.UTC(),
	}
}

func (m instanceModel) toEntity() entities.ApprovalInstance {
	return entities.ApprovalInstance{
		InstanceID:     m.ID,
		WorkflowID:     m.WorkflowID,
		DocumentType:   m.DocumentType,
		DocumentID:     m.DocumentID,
		DocumentNumber: m.DocumentNumber,
		DocumentTitle:  m.DocumentTitle,
		Workspace: entities.Workspace{
			Kind:      entities.WorkspaceKind(m.WorkspaceKind),
			CompanyID: m.CompanyID,
			FactoryID: m.FactoryID,
		},
		Status:          entities.Status(m.Status),
		CurrentStep:     m.CurrentStep,
		CurrentStepName: m.CurrentStepName,
		TotalSteps:      m.TotalSteps,
		SubmitterID:     m.SubmitterID,
		SubmitterName:   m.SubmitterName,
		SubmittedAt:     m.SubmittedAt.UTC(),
		CompletedAt:     normalizeOptionalTime(m.CompletedAt),
		FinalApproverID: m.FinalApproverID,
		Priority:        m.Priority,
		Notes:           m.Notes,
		Version:         m.Version,
		CreatedAt:       m.CreatedAt.UTC(),
		UpdatedAt:       m.UpdatedAt.UTC(),
	}
}

type historyModel struct {
	ID           string    `gorm:"column:id;primaryKey"`
	InstanceID   string    `gorm:"column:instance_id"`
	StepNumber   int       `gorm:"column:step_number"`
	StepName     string    `gorm:"column:step_name"`
	Action       string    `gorm:"column:action"`
	OperatorID   string    `gorm:"column:operator_id"`
	OperatorName string    `gorm:"column:operator_name"`
	Comment      string    `gorm:"column:comment"`
	Attachments  []byte    `gorm:"column:attachments;type:jsonb"`
	Result       string    `gorm:"column:result"`
	CreatedAt    time.Time `gorm:"column:created_at"`
}

func (historyModel) TableName() string {
	return "approval_history"
}

func historyModelFromEntity(entry entities.HistoryEntry) historyModel {
	attachments, _ := json.Marshal(entry.Attachments)
	return historyModel{
		ID:           strings.TrimSpace(entry.EntryID),
		InstanceID:   strings.TrimSpace(entry.InstanceID),
		StepNumber:   entry.StepNumber,
		StepName:     entry.StepName,
		Action:       string(entry.Action),
		OperatorID:   strings.TrimSpace(entry.OperatorID),
		OperatorName: strings.TrimSpace(entry.OperatorName),
		Comment:      entry.Comment,
		Attachments:  attachments,
		Result:       entry.Result,
		CreatedAt:    entry.CreatedAt.UTC(),
	}
}

func (m historyModel) toEntity() entities.HistoryEntry {
	var attachments []string
	if len(m.Attachments) > 0 {
		_ = json.Unmarshal(m.Attachments, &attachments)
	}
	return entities.HistoryEntry{
		EntryID:      m.ID,
		InstanceID:   m.InstanceID,
		StepNumber:   m.StepNumber,
		StepName:     m.StepName,
		Action:       entities.HistoryAction(m.Action),
		OperatorID:   m.OperatorID,
		OperatorName: m.OperatorName,
		Comment:      m.Comment,
		Attachments:  attachments,
		Result:       m.Result,
		CreatedAt:    m.CreatedAt.UTC(),
	}
}

type workflowModel struct {
	ID           string    `gorm:"column:id;primaryKey"`
	DocumentType string    `gorm:"column:document_type"`
	CompanyID    string    `gorm:"column:company_id"`
	Name         string    `gorm:"column:name"`
	Steps        []byte    `gorm:"column:steps;type:jsonb"`
	IsDefault    bool      `gorm:"column:is_default"`
	IsActive     bool      `gorm:"column:is_active"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (workflowModel) TableName() string {
	return "workflow_definitions"
}

type workflowStepDocument struct {
	Name         string   `json:"name"`
	SelectorKind string   `json:"selector_kind"`
	SelectorIDs  []string `json:"selector_ids"`
}

func workflowModelFromEntity(definition entities.WorkflowDefinition) (workflowModel, error) {
	docs := make([]workflowStepDocument, 0, len(definition.Steps))
	for _, step := range definition.Steps {
		docs = append(docs, workflowStepDocument{
			Name:         step.Name,
			SelectorKind: string(step.Selector.Kind),
			SelectorIDs:  step.Selector.IDs,
		})
	}
	steps, err := json.Marshal(docs)
	if err != nil {
		return workflowModel{}, err
	}
	return workflowModel{
		ID:           strings.TrimSpace(definition.WorkflowID),
		DocumentType: strings.TrimSpace(definition.DocumentType),
		CompanyID:    strings.TrimSpace(definition.CompanyID),
		Name:         strings.TrimSpace(definition.Name),
		Steps:        steps,
		IsDefault:    definition.IsDefault,
		IsActive:     definition.IsActive,
		CreatedAt:    definition.CreatedAt.UTC(),
		UpdatedAt:    definition.UpdatedAt.UTC(),
	}, nil
}

func (m workflowModel) toEntity() (entities.WorkflowDefinition, error) {
	var docs []workflowStepDocument
	if len(m.Steps) > 0 {
		if err := json.Unmarshal(m.Steps, &docs); err != nil {
			return entities.WorkflowDefinition{}, err
		}
	}
	steps := make([]entities.WorkflowStep, 0, len(docs))
	for _, doc := range docs {
		steps = append(steps, entities.WorkflowStep{
			Name: doc.Name,
			Selector: entities.ApproverSelector{
				Kind: entities.SelectorKind(doc.SelectorKind),
				IDs:  doc.SelectorIDs,
			},
		})
	}
	return entities.WorkflowDefinition{
		WorkflowID:   m.ID,
		DocumentType: m.DocumentType,
		CompanyID:    m.CompanyID,
		Name:         m.Name,
		Steps:        steps,
		IsDefault:    m.IsDefault,
		IsActive:     m.IsActive,
		CreatedAt:    m.CreatedAt.UTC(),
		UpdatedAt:    m.UpdatedAt.UTC(),
	}, nil
}

type outboxModel struct {
	OutboxID    string     `gorm:"column:outbox_id;primaryKey"`
	EventType   string     `gorm:"column:event_type"`
	Payload     []byte     `gorm:"column:payload"`
	Status      string     `gorm:"column:status"`
	CreatedAt   time.Time  `gorm:"column:created_at"`
	PublishedAt *time.Time `gorm:"column:published_at"`
}

func (outboxModel) TableName() string {
	return "approval_outbox"
}

type documentStatusModel struct {
	DocumentType string    `gorm:"column:document_type;primaryKey"`
	DocumentID   string    `gorm:"column:document_id;primaryKey"`
	Status       string    `gorm:"column:status"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (documentStatusModel) TableName() string {
	return "document_statuses"
}

type employeeModel struct {
	UserID       string `gorm:"column:user_id;primaryKey"`
	CompanyID    string `gorm:"column:company_id;primaryKey"`
	RoleID       string `gorm:"column:role_id"`
	FactoryID    string `gorm:"column:factory_id"`
	DepartmentID string `gorm:"column:department_id"`
	IsAdmin      bool   `gorm:"column:is_admin"`
	IsActive     bool   `gorm:"column:is_active"`
}

func (employeeModel) TableName() string {
	return "employees"
}

func (m employeeModel) toRef() ports.EmployeeRef {
	return ports.EmployeeRef{
		UserID:       m.UserID,
		RoleID:       m.RoleID,
		FactoryID:    m.FactoryID,
		DepartmentID: m.DepartmentID,
		IsAdmin:      m.IsAdmin,
	}
}

func activeStatusStrings() []string {
	return []string{
		string(entities.StatusPending),
		string(entities.StatusInProgress),
	}
}

func statusStrings(statuses []entities.Status) []string {
	out := make([]string, 0, len(statuses))
	for _, status := range statuses {
		out = append(out, string(status))
	}
	return out
}

func normalizeOptionalTime(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	timestamp := value.UTC()
	return &timestamp
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var _ ports.Directory = (*Repository)(nil)
var _ ports.WorkflowRepository = (*Repository)(nil)
var _ ports.InstanceRepository = (*Repository)(nil)
var _ ports.HistoryRepository = (*Repository)(nil)
var _ ports.OutboxRepository = (*Repository)(nil)
var _ ports.DocumentStatusSink = (*Repository)(nil)
