package ports

import (
	"context"
	"time"

	"weldvault/contexts/document-approval/approval-engine/domain/entities"
	"weldvault/internal/shared/events"
)

// Clock abstracts current time for deterministic tests.
type Clock interface {
	Now() time.Time
}

// IDGenerator abstracts UUID generation for instances, history and outbox rows.
type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

// EmployeeRef is the directory projection the engine needs for approver
// resolution and pending-approval queries.
type EmployeeRef struct {
	UserID       string
	RoleID       string
	FactoryID    string
	DepartmentID string
	IsAdmin      bool
}

// Directory resolves company membership and approver selectors. Each selector
// variant has its own typed lookup.
type Directory interface {
	GetActiveEmployee(ctx context.Context, userID, companyID string) (EmployeeRef, bool, error)
	UsersWithRole(ctx context.Context, companyID, roleID string) ([]string, error)
	UsersInDepartment(ctx context.Context, companyID, departmentID string) ([]string, error)
	ActiveMembers(ctx context.Context, companyID string, userIDs []string) ([]string, error)
}

// PermissionChecker is the engine's view of the access-control module.
type PermissionChecker interface {
	CanApprove(ctx context.Context, actorID, companyID, documentType string) (bool, error)
	IsCompanyAdmin(ctx context.Context, actorID, companyID string) (bool, error)
	IsSystemAdmin(ctx context.Context, actorID string) (bool, error)
}

// DocumentStatusSink pushes the closing status back onto the owning document.
// Storage adapters fold the write into the transition transaction so status
// mutation, history append and document callback commit or roll back as one.
type DocumentStatusSink interface {
	SetStatus(ctx context.Context, documentType, documentID, status string) error
}

// WorkflowRepository stores approval templates.
type WorkflowRepository interface {
	GetDefinition(ctx context.Context, workflowID string) (entities.WorkflowDefinition, error)
	// FindCompanyWorkflow returns the best active definition scoped to the
	// company: is_default desc, created_at desc.
	FindCompanyWorkflow(ctx context.Context, documentType, companyID string) (entities.WorkflowDefinition, bool, error)
	FindSystemDefault(ctx context.Context, documentType string) (entities.WorkflowDefinition, bool, error)
	SaveDefinition(ctx context.Context, definition entities.WorkflowDefinition) error
	ListDefinitions(ctx context.Context, companyID, documentType string) ([]entities.WorkflowDefinition, error)
}

// InstanceFilter narrows instance listings.
type InstanceFilter struct {
	CompanyID   string
	Statuses    []entities.Status
	SubmitterID string
}

// Page is 1-based.
type Page struct {
	Number int
	Size   int
}

func (p Page) Normalize() Page {
	if p.Number < 1 {
		p.Number = 1
	}
	if p.Size < 1 || p.Size > 200 {
		p.Size = 20
	}
	return p
}

func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

// CreateInstanceInput is persisted atomically: instance row, submit history
// entry, and the step-1 notification outbox row.
type CreateInstanceInput struct {
	Instance     entities.ApprovalInstance
	History      entities.HistoryEntry
	OutboxID     string
	Notification entities.Notification
}

// TransitionInput is persisted atomically: the instance's new state guarded
// by ExpectedVersion, one history entry, the optional document status
// callback, and the notification outbox row.
type TransitionInput struct {
	Instance        entities.ApprovalInstance
	ExpectedVersion int
	History         entities.HistoryEntry
	DocumentStatus  string
	OutboxID        string
	Notification    entities.Notification
}

// InstanceRepository is the write/read boundary for approval state.
// CreateInstance surfaces the storage uniqueness constraint on active
// instances per document as ErrDuplicateActive; ApplyTransition surfaces a
// lost version race as ErrConflict.
type InstanceRepository interface {
	GetInstance(ctx context.Context, instanceID string) (entities.ApprovalInstance, error)
	FindActiveByDocument(ctx context.Context, documentType, documentID string) (entities.ApprovalInstance, bool, error)
	CreateInstance(ctx context.Context, input CreateInstanceInput) error
	ApplyTransition(ctx context.Context, input TransitionInput) error
	ListInstances(ctx context.Context, filter InstanceFilter, page Page) ([]entities.ApprovalInstance, int64, error)
	CountByStatus(ctx context.Context, companyID string) (map[entities.Status]int64, error)
	CountBySubmitter(ctx context.Context, companyID, submitterID string) (int64, error)
	CountOverdue(ctx context.Context, companyID string, submittedBefore time.Time) (int64, error)
}

// HistoryRepository reads the audit trail in creation order.
type HistoryRepository interface {
	ListHistory(ctx context.Context, instanceID string) ([]entities.HistoryEntry, error)
}

// OutboxMessage is a pending notification relay row.
type OutboxMessage struct {
	OutboxID  string
	EventType string
	Payload   []byte
	CreatedAt time.Time
}

// OutboxRepository supports worker relay polling and acknowledgement.
type OutboxRepository interface {
	ListPendingOutbox(ctx context.Context, limit int) ([]OutboxMessage, error)
	MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error
}

// NotificationPublisher emits notification envelopes to the gateway bus.
// Fire-and-forget from the engine's perspective.
type NotificationPublisher interface {
	PublishNotification(ctx context.Context, event events.Envelope) error
}
