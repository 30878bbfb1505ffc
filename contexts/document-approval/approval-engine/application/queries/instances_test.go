package queries

import (
	"context"
	"errors"
	"testing"
	"time"

	"weldvault/contexts/document-approval/approval-engine/adapters/memory"
	"weldvault/contexts/document-approval/approval-engine/domain/entities"
	domainerrors "weldvault/contexts/document-approval/approval-engine/domain/errors"
	"weldvault/contexts/document-approval/approval-engine/ports"
)

type fixedClock struct{ at time.Time }

func (c fixedClock) Now() time.Time { return c.at }

// seedInstance writes an instance with its submit history entry straight
// through the repository port.
func seedInstance(t *testing.T, store *memory.Store, id, documentID, submitterID string, status entities.Status, submittedAt time.Time) {
	t.Helper()
	err := store.CreateInstance(context.Background(), ports.CreateInstanceInput{
		Instance: entities.ApprovalInstance{
			InstanceID:   id,
			WorkflowID:   "wf-1",
			DocumentType: "wps",
			DocumentID:   documentID,
			Workspace:    entities.Workspace{Kind: entities.WorkspaceEnterprise, CompanyID: "company-1"},
			Status:       status,
			CurrentStep:  1,
			TotalSteps:   1,
			SubmitterID:  submitterID,
			SubmittedAt:  submittedAt,
			Version:      1,
			CreatedAt:    submittedAt,
			UpdatedAt:    submittedAt,
		},
		History: entities.HistoryEntry{
			EntryID:    id + "-h0",
			InstanceID: id,
			StepNumber: 0,
			StepName:   "submit",
			Action:     entities.ActionSubmit,
			OperatorID: submitterID,
			Result:     string(entities.StatusPending),
			CreatedAt:  submittedAt,
		},
		OutboxID: id + "-o0",
		Notification: entities.Notification{
			RecipientIDs: []string{"approver-1"},
			DocumentType: "wps",
			EventKind:    entities.NotifyPendingApproval,
			InstanceID:   id,
		},
	})
	if err != nil {
		t.Fatalf("seed instance %s: %v", id, err)
	}
}

func TestPendingApprovalsRequiresRoleOrAdmin(t *testing.T) {
	store := memory.NewStore()
	now := time.Now().UTC()
	seedInstance(t, store, "inst-1", "doc-1", "submitter-1", entities.StatusPending, now)
	uc := PendingApprovalsUseCase{Instances: store, Directory: store}

	if _, err := uc.Execute(context.Background(), "outsider", "company-1", ports.Page{}); !errors.Is(err, domainerrors.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for non-member, got %v", err)
	}

	store.SeedEmployee("company-1", ports.EmployeeRef{UserID: "roleless-1"})
	if _, err := uc.Execute(context.Background(), "roleless-1", "company-1", ports.Page{}); !errors.Is(err, domainerrors.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized without role, got %v", err)
	}

	store.SeedEmployee("company-1", ports.EmployeeRef{UserID: "approver-1", RoleID: "role-approver"})
	page, err := uc.Execute(context.Background(), "approver-1", "company-1", ports.Page{})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if page.Total != 1 || len(page.Instances) != 1 {
		t.Fatalf("expected 1 pending instance, got total=%d len=%d", page.Total, len(page.Instances))
	}
}

func TestPendingApprovalsExcludesClosedInstances(t *testing.T) {
	store := memory.NewStore()
	now := time.Now().UTC()
	seedInstance(t, store, "inst-1", "doc-1", "submitter-1", entities.StatusPending, now.Add(-2*time.Hour))
	seedInstance(t, store, "inst-2", "doc-2", "submitter-1", entities.StatusInProgress, now.Add(-1*time.Hour))
	seedInstance(t, store, "inst-3", "doc-3", "submitter-1", entities.StatusApproved, now)
	seedInstance(t, store, "inst-4", "doc-4", "submitter-1", entities.StatusRejected, now)
	store.SeedEmployee("company-1", ports.EmployeeRef{UserID: "admin-1", IsAdmin: true})
	uc := PendingApprovalsUseCase{Instances: store, Directory: store}

	page, err := uc.Execute(context.Background(), "admin-1", "company-1", ports.Page{})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if page.Total != 2 {
		t.Fatalf("expected 2 active instances, got %d", page.Total)
	}
	// Newest submission first.
	if page.Instances[0].InstanceID != "inst-2" {
		t.Fatalf("expected inst-2 first, got %s", page.Instances[0].InstanceID)
	}
}

func TestMySubmissionsFiltersByStatus(t *testing.T) {
	store := memory.NewStore()
	now := time.Now().UTC()
	seedInstance(t, store, "inst-1", "doc-1", "submitter-1", entities.StatusPending, now.Add(-3*time.Hour))
	seedInstance(t, store, "inst-2", "doc-2", "submitter-1", entities.StatusRejected, now.Add(-2*time.Hour))
	seedInstance(t, store, "inst-3", "doc-3", "someone-else", entities.StatusPending, now.Add(-1*time.Hour))
	uc := MySubmissionsUseCase{Instances: store}

	page, err := uc.Execute(context.Background(), "submitter-1", "company-1", nil, ports.Page{})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if page.Total != 2 {
		t.Fatalf("expected 2 own submissions, got %d", page.Total)
	}

	page, err = uc.Execute(context.Background(), "submitter-1", "company-1",
		[]entities.Status{entities.StatusRejected}, ports.Page{})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if page.Total != 1 || page.Instances[0].InstanceID != "inst-2" {
		t.Fatalf("expected only inst-2, got %+v", page)
	}

	if _, err := uc.Execute(context.Background(), "submitter-1", "company-1",
		[]entities.Status{"sideways"}, ports.Page{}); !errors.Is(err, domainerrors.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for unknown status, got %v", err)
	}
}

func TestInstanceDetailAndActiveLookup(t *testing.T) {
	store := memory.NewStore()
	now := time.Now().UTC()
	seedInstance(t, store, "inst-1", "doc-1", "submitter-1", entities.StatusPending, now)

	detail, err := InstanceDetailUseCase{Instances: store, History: store}.Execute(context.Background(), "inst-1")
	if err != nil {
		t.Fatalf("detail: %v", err)
	}
	if detail.Instance.InstanceID != "inst-1" || len(detail.History) != 1 {
		t.Fatalf("expected instance with submit history, got %+v", detail)
	}

	if _, err := (InstanceDetailUseCase{Instances: store, History: store}).Execute(context.Background(), "missing"); !errors.Is(err, domainerrors.ErrInstanceNotFound) {
		t.Fatalf("expected ErrInstanceNotFound, got %v", err)
	}

	active := ActiveInstanceUseCase{Instances: store}
	instance, found, err := active.Execute(context.Background(), "wps", "doc-1")
	if err != nil {
		t.Fatalf("active lookup: %v", err)
	}
	if !found || instance.InstanceID != "inst-1" {
		t.Fatalf("expected active inst-1, got %q found=%v", instance.InstanceID, found)
	}

	_, found, err = active.Execute(context.Background(), "wps", "doc-free")
	if err != nil {
		t.Fatalf("active lookup: %v", err)
	}
	if found {
		t.Fatal("expected no active instance for untouched document")
	}
}

func TestStatisticsCountsAndOverdue(t *testing.T) {
	store := memory.NewStore()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	seedInstance(t, store, "inst-1", "doc-1", "actor-1", entities.StatusPending, now.Add(-100*time.Hour))
	seedInstance(t, store, "inst-2", "doc-2", "actor-1", entities.StatusInProgress, now.Add(-10*time.Hour))
	seedInstance(t, store, "inst-3", "doc-3", "someone-else", entities.StatusApproved, now.Add(-200*time.Hour))
	seedInstance(t, store, "inst-4", "doc-4", "someone-else", entities.StatusRejected, now.Add(-5*time.Hour))

	uc := StatisticsUseCase{
		Instances: store,
		Clock:     fixedClock{at: now},
	}
	stats, err := uc.Execute(context.Background(), "actor-1", "company-1")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if stats.PendingCount != 1 || stats.InProgressCount != 1 || stats.ApprovedCount != 1 || stats.RejectedCount != 1 {
		t.Fatalf("unexpected status counts: %+v", stats)
	}
	if stats.MySubmitted != 2 {
		t.Fatalf("expected 2 own submissions, got %d", stats.MySubmitted)
	}
	// Only inst-1 is active past the default 72h threshold.
	if stats.OverdueCount != 1 {
		t.Fatalf("expected 1 overdue instance, got %d", stats.OverdueCount)
	}

	if _, err := uc.Execute(context.Background(), "", "company-1"); !errors.Is(err, domainerrors.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
