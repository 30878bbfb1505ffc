package entities

import "time"

// Status is the lifecycle state of one approval instance.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusApproved   Status = "approved"
	StatusRejected   Status = "rejected"
	StatusReturned   Status = "returned"
	StatusCancelled  Status = "cancelled"
)

var validStatuses = map[Status]bool{
	StatusPending:    true,
	StatusInProgress: true,
	StatusApproved:   true,
	StatusRejected:   true,
	StatusReturned:   true,
	StatusCancelled:  true,
}

// terminalStatuses close the instance for good. Returned also blocks further
// approve/reject but hands control back to the submitter for a fresh submit.
var terminalStatuses = map[Status]bool{
	StatusApproved:  true,
	StatusRejected:  true,
	StatusCancelled: true,
	StatusReturned:  true,
}

func (s Status) IsValid() bool {
	return validStatuses[s]
}

func (s Status) IsTerminal() bool {
	return terminalStatuses[s]
}

// IsActive reports whether the instance still occupies the one-active-per-
// document slot.
func (s Status) IsActive() bool {
	return s == StatusPending || s == StatusInProgress
}

// Priority of an approval instance; free-form with a conventional default.
const PriorityNormal = "normal"

// WorkspaceKind mirrors the platform's tenancy boundary for engine inputs.
type WorkspaceKind string

const (
	WorkspacePersonal   WorkspaceKind = "personal"
	WorkspaceEnterprise WorkspaceKind = "enterprise"
)

// Workspace is the scope an engine operation runs under. Instances keep it
// as a snapshot even if the submitter later changes company or factory.
type Workspace struct {
	Kind      WorkspaceKind
	CompanyID string
	FactoryID string
}

func (w Workspace) IsPersonal() bool {
	return w.Kind == WorkspacePersonal
}

// IsUsable reports whether the workspace names a concrete tenancy boundary;
// an enterprise workspace without a company id is never usable.
func (w Workspace) IsUsable() bool {
	switch w.Kind {
	case WorkspacePersonal:
		return true
	case WorkspaceEnterprise:
		return w.CompanyID != ""
	default:
		return false
	}
}

// ApprovalInstance is one run of a workflow against one document, tracked
// from submission to a terminal outcome. Version is the optimistic-lock
// column checked on every transition write.
type ApprovalInstance struct {
	InstanceID      string
	WorkflowID      string
	DocumentType    string
	DocumentID      string
	DocumentNumber  string
	DocumentTitle   string
	Workspace       Workspace
	Status          Status
	CurrentStep     int // 1-based
	CurrentStepName string
	TotalSteps      int
	SubmitterID     string
	SubmitterName   string
	SubmittedAt     time.Time
	CompletedAt     *time.Time
	FinalApproverID string
	Priority        string
	Notes           string
	Version         int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
