package entities

import "time"

// HistoryAction tags what happened in one audit record.
type HistoryAction string

const (
	ActionSubmit  HistoryAction = "submit"
	ActionApprove HistoryAction = "approve"
	ActionReject  HistoryAction = "reject"
	ActionReturn  HistoryAction = "return"
	ActionCancel  HistoryAction = "cancel"
)

// HistoryEntry is an immutable, append-only audit record of one action taken
// against an approval instance. Submission is recorded as pseudo step 0.
type HistoryEntry struct {
	EntryID      string
	InstanceID   string
	StepNumber   int
	StepName     string
	Action       HistoryAction
	OperatorID   string
	OperatorName string
	Comment      string
	Attachments  []string
	Result       string
	CreatedAt    time.Time
}

// Notification is the ephemeral fan-out request handed to the gateway; it is
// never persisted beyond the outbox that carries it.
type Notification struct {
	RecipientIDs  []string `json:"recipient_ids"`
	DocumentType  string   `json:"document_type"`
	DocumentTitle string   `json:"document_title"`
	EventKind     string   `json:"event_kind"`
	InstanceID    string   `json:"instance_id"`
}

// Notification event kinds.
const (
	NotifyPendingApproval = "pending_approval"
	NotifyApproved        = "approved"
	NotifyRejected        = "rejected"
	NotifyReturned        = "returned"
	NotifyCancelled       = "cancelled"
)

// Document statuses pushed to the owning document when an instance closes.
const (
	DocumentStatusApproved = "approved"
	DocumentStatusRejected = "rejected"
	DocumentStatusDraft    = "draft"
)
