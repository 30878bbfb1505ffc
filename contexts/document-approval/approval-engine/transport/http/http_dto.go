package httptransport

import "time"

// ScopeDTO carries the workspace context of a request.
type ScopeDTO struct {
	Kind      string `json:"kind"`
	CompanyID string `json:"company_id,omitempty"`
	FactoryID string `json:"factory_id,omitempty"`
}

type SubmitRequest struct {
	DocumentType   string   `json:"document_type"`
	DocumentID     string   `json:"document_id"`
	DocumentNumber string   `json:"document_number,omitempty"`
	DocumentTitle  string   `json:"document_title"`
	ActorName      string   `json:"actor_name,omitempty"`
	Scope          ScopeDTO `json:"scope"`
	WorkflowID     string   `json:"workflow_id,omitempty"`
	Priority       string   `json:"priority,omitempty"`
	Notes          string   `json:"notes,omitempty"`
}

type BatchSubmitDocument struct {
	DocumentID     string `json:"document_id"`
	DocumentNumber string `json:"document_number,omitempty"`
	DocumentTitle  string `json:"document_title"`
}

type BatchSubmitRequest struct {
	DocumentType string                `json:"document_type"`
	Documents    []BatchSubmitDocument `json:"documents"`
	ActorName    string                `json:"actor_name,omitempty"`
	Scope        ScopeDTO              `json:"scope"`
	WorkflowID   string                `json:"workflow_id,omitempty"`
	Priority     string                `json:"priority,omitempty"`
	Notes        string                `json:"notes,omitempty"`
}

type DecisionRequest struct {
	ActorName   string   `json:"actor_name,omitempty"`
	Comment     string   `json:"comment,omitempty"`
	Attachments []string `json:"attachments,omitempty"`
}

type BatchDecisionRequest struct {
	InstanceIDs []string `json:"instance_ids"`
	ActorName   string   `json:"actor_name,omitempty"`
	Comment     string   `json:"comment,omitempty"`
}

type BatchItemDTO struct {
	ID      string `json:"id"`
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
}

type BatchResultDTO struct {
	Succeeded int            `json:"succeeded"`
	Failed    int            `json:"failed"`
	Items     []BatchItemDTO `json:"items"`
}

type InstanceDTO struct {
	InstanceID      string     `json:"instance_id"`
	WorkflowID      string     `json:"workflow_id"`
	DocumentType    string     `json:"document_type"`
	DocumentID      string     `json:"document_id"`
	DocumentNumber  string     `json:"document_number,omitempty"`
	DocumentTitle   string     `json:"document_title"`
	Scope           ScopeDTO   `json:"scope"`
	Status          string     `json:"status"`
	CurrentStep     int        `json:"current_step"`
	CurrentStepName string     `json:"current_step_name,omitempty"`
	TotalSteps      int        `json:"total_steps"`
	SubmitterID     string     `json:"submitter_id"`
	SubmitterName   string     `json:"submitter_name,omitempty"`
	SubmittedAt     time.Time  `json:"submitted_at"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
	FinalApproverID string     `json:"final_approver_id,omitempty"`
	Priority        string     `json:"priority,omitempty"`
	Notes           string     `json:"notes,omitempty"`
	Version         int        `json:"version"`
}

type InstanceListResponse struct {
	Items []InstanceDTO `json:"items"`
	Total int64         `json:"total"`
	Page  int           `json:"page"`
	Size  int           `json:"size"`
}

type HistoryEntryDTO struct {
	EntryID      string    `json:"entry_id"`
	StepNumber   int       `json:"step_number"`
	StepName     string    `json:"step_name"`
	Action       string    `json:"action"`
	OperatorID   string    `json:"operator_id"`
	OperatorName string    `json:"operator_name,omitempty"`
	Comment      string    `json:"comment,omitempty"`
	Attachments  []string  `json:"attachments,omitempty"`
	Result       string    `json:"result"`
	CreatedAt    time.Time `json:"created_at"`
}

type InstanceDetailResponse struct {
	Instance InstanceDTO       `json:"instance"`
	History  []HistoryEntryDTO `json:"history"`
}

type ActiveInstanceResponse struct {
	Active   bool         `json:"active"`
	Instance *InstanceDTO `json:"instance,omitempty"`
}

type StatisticsResponse struct {
	PendingCount    int64 `json:"pending_count"`
	InProgressCount int64 `json:"in_progress_count"`
	ApprovedCount   int64 `json:"approved_count"`
	RejectedCount   int64 `json:"rejected_count"`
	MySubmitted     int64 `json:"my_submitted"`
	OverdueCount    int64 `json:"overdue_count"`
}

type WorkflowStepDTO struct {
	Name         string   `json:"name"`
	SelectorKind string   `json:"selector_kind"`
	SelectorIDs  []string `json:"selector_ids"`
}

type WorkflowDTO struct {
	WorkflowID   string            `json:"workflow_id"`
	DocumentType string            `json:"document_type"`
	CompanyID    string            `json:"company_id,omitempty"`
	Name         string            `json:"name"`
	Steps        []WorkflowStepDTO `json:"steps"`
	IsDefault    bool              `json:"is_default"`
	IsActive     bool              `json:"is_active"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

type SaveWorkflowRequest struct {
	WorkflowID   string            `json:"workflow_id,omitempty"`
	CompanyID    string            `json:"company_id"`
	DocumentType string            `json:"document_type"`
	Name         string            `json:"name"`
	Steps        []WorkflowStepDTO `json:"steps"`
	IsDefault    bool              `json:"is_default,omitempty"`
}

type ListWorkflowsResponse struct {
	CompanyID string        `json:"company_id"`
	Workflows []WorkflowDTO `json:"workflows"`
}

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
