package commands

import (
	"context"
	"errors"
	"testing"
	"time"

	"weldvault/contexts/document-approval/approval-engine/adapters/memory"
	"weldvault/contexts/document-approval/approval-engine/application/queries"
	"weldvault/contexts/document-approval/approval-engine/domain/entities"
	domainerrors "weldvault/contexts/document-approval/approval-engine/domain/errors"
	"weldvault/contexts/document-approval/approval-engine/ports"
)

const testCompany = "company-1"

func enterpriseWorkspace() entities.Workspace {
	return entities.Workspace{Kind: entities.WorkspaceEnterprise, CompanyID: testCompany}
}

// seedTwoStepWPS wires a company, a submitter, two approvers and a two-step
// wps workflow into the store.
func seedTwoStepWPS(store *memory.Store) entities.WorkflowDefinition {
	for _, user := range []string{"submitter-1", "approver-1", "approver-2"} {
		store.SeedEmployee(testCompany, ports.EmployeeRef{UserID: user})
	}
	store.SeedApprover("approver-1", testCompany, "wps")
	store.SeedApprover("approver-2", testCompany, "wps")

	definition := entities.WorkflowDefinition{
		WorkflowID:   "wf-wps-2step",
		DocumentType: "wps",
		CompanyID:    testCompany,
		Name:         "WPS two step",
		Steps: []entities.WorkflowStep{
			{Name: "Engineer Review", Selector: entities.ApproverSelector{Kind: entities.SelectByUser, IDs: []string{"approver-1"}}},
			{Name: "Quality Sign-off", Selector: entities.ApproverSelector{Kind: entities.SelectByUser, IDs: []string{"approver-2"}}},
		},
		IsDefault: true,
		IsActive:  true,
		CreatedAt: time.Now().UTC(),
	}
	store.SeedWorkflow(definition)
	return definition
}

func newSubmit(store *memory.Store) SubmitUseCase {
	return SubmitUseCase{
		Lookup:    queries.WorkflowLookupUseCase{Workflows: store},
		Workflows: store,
		Instances: store,
		Directory: store,
		Clock:     store,
		IDGen:     store,
	}
}

func newTransition(store *memory.Store) TransitionUseCase {
	return TransitionUseCase{
		Instances:   store,
		Workflows:   store,
		Directory:   store,
		Permissions: store,
		Clock:       store,
		IDGen:       store,
	}
}

func submitWPS(t *testing.T, store *memory.Store, documentID string) entities.ApprovalInstance {
	t.Helper()
	instance, err := newSubmit(store).Execute(context.Background(), SubmitCommand{
		DocumentType:  "wps",
		DocumentID:    documentID,
		DocumentTitle: "Pipe Butt Weld",
		ActorID:       "submitter-1",
		ActorName:     "Sam Submitter",
		Workspace:     enterpriseWorkspace(),
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	return instance
}

func TestSubmitCreatesPendingInstance(t *testing.T) {
	store := memory.NewStore()
	definition := seedTwoStepWPS(store)

	instance := submitWPS(t, store, "doc-1")

	if instance.Status != entities.StatusPending {
		t.Fatalf("expected status %s, got %s", entities.StatusPending, instance.Status)
	}
	if instance.WorkflowID != definition.WorkflowID {
		t.Fatalf("expected workflow %s, got %s", definition.WorkflowID, instance.WorkflowID)
	}
	if instance.CurrentStep != 1 || instance.CurrentStepName != "Engineer Review" {
		t.Fatalf("expected step 1 Engineer Review, got %d %q", instance.CurrentStep, instance.CurrentStepName)
	}
	if instance.TotalSteps != 2 {
		t.Fatalf("expected 2 total steps, got %d", instance.TotalSteps)
	}
	if instance.Version != 1 {
		t.Fatalf("expected version 1, got %d", instance.Version)
	}
	if instance.Priority != entities.PriorityNormal {
		t.Fatalf("expected default priority, got %q", instance.Priority)
	}

	history, err := store.ListHistory(context.Background(), instance.InstanceID)
	if err != nil {
		t.Fatalf("list history: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("expected 1 history entry, got %d", len(history))
	}
	if history[0].Action != entities.ActionSubmit || history[0].StepNumber != 0 {
		t.Fatalf("expected submit recorded as step 0, got %+v", history[0])
	}

	if got := store.PendingOutboxCount(); got != 1 {
		t.Fatalf("expected 1 pending outbox row, got %d", got)
	}
}

func TestSubmitRejectsDuplicateActive(t *testing.T) {
	store := memory.NewStore()
	seedTwoStepWPS(store)

	submitWPS(t, store, "doc-1")

	_, err := newSubmit(store).Execute(context.Background(), SubmitCommand{
		DocumentType: "wps",
		DocumentID:   "doc-1",
		ActorID:      "submitter-1",
		Workspace:    enterpriseWorkspace(),
	})
	if !errors.Is(err, domainerrors.ErrDuplicateActive) {
		t.Fatalf("expected ErrDuplicateActive, got %v", err)
	}
}

func TestSubmitAfterCancelAllowed(t *testing.T) {
	store := memory.NewStore()
	seedTwoStepWPS(store)

	instance := submitWPS(t, store, "doc-1")
	if _, err := newTransition(store).Cancel(context.Background(), DecisionCommand{
		InstanceID: instance.InstanceID,
		ActorID:    "submitter-1",
	}); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	// The cancelled instance frees the active slot for a fresh submit.
	submitWPS(t, store, "doc-1")
}

func TestSubmitPersonalWorkspaceNotApplicable(t *testing.T) {
	store := memory.NewStore()
	seedTwoStepWPS(store)

	_, err := newSubmit(store).Execute(context.Background(), SubmitCommand{
		DocumentType: "wps",
		DocumentID:   "doc-1",
		ActorID:      "submitter-1",
		Workspace:    entities.Workspace{Kind: entities.WorkspacePersonal},
	})
	if !errors.Is(err, domainerrors.ErrNotApplicable) {
		t.Fatalf("expected ErrNotApplicable for personal workspace, got %v", err)
	}
}

func TestSubmitWithoutWorkflowNotApplicable(t *testing.T) {
	store := memory.NewStore()
	store.SeedEmployee(testCompany, ports.EmployeeRef{UserID: "submitter-1"})

	_, err := newSubmit(store).Execute(context.Background(), SubmitCommand{
		DocumentType: "pqr",
		DocumentID:   "doc-9",
		ActorID:      "submitter-1",
		Workspace:    enterpriseWorkspace(),
	})
	if !errors.Is(err, domainerrors.ErrNotApplicable) {
		t.Fatalf("expected ErrNotApplicable with no workflow configured, got %v", err)
	}
}

func TestSubmitPinnedWorkflowValidation(t *testing.T) {
	store := memory.NewStore()
	seedTwoStepWPS(store)
	store.SeedWorkflow(entities.WorkflowDefinition{
		WorkflowID:   "wf-foreign",
		DocumentType: "wps",
		CompanyID:    "company-2",
		Name:         "Foreign",
		Steps: []entities.WorkflowStep{
			{Name: "Only", Selector: entities.ApproverSelector{Kind: entities.SelectByUser, IDs: []string{"x"}}},
		},
		IsActive: true,
	})

	_, err := newSubmit(store).Execute(context.Background(), SubmitCommand{
		DocumentType: "wps",
		DocumentID:   "doc-1",
		ActorID:      "submitter-1",
		Workspace:    enterpriseWorkspace(),
		WorkflowID:   "wf-foreign",
	})
	if !errors.Is(err, domainerrors.ErrWorkflowNotFound) {
		t.Fatalf("expected ErrWorkflowNotFound for foreign pinned workflow, got %v", err)
	}

	if _, err := newSubmit(store).Execute(context.Background(), SubmitCommand{
		DocumentType: "wps",
		DocumentID:   "doc-1",
		ActorID:      "submitter-1",
		Workspace:    enterpriseWorkspace(),
		WorkflowID:   "wf-wps-2step",
	}); err != nil {
		t.Fatalf("expected own pinned workflow accepted, got %v", err)
	}
}

func TestSubmitRejectsBlankInput(t *testing.T) {
	store := memory.NewStore()
	seedTwoStepWPS(store)

	_, err := newSubmit(store).Execute(context.Background(), SubmitCommand{
		DocumentType: "wps",
		DocumentID:   "  ",
		ActorID:      "submitter-1",
		Workspace:    enterpriseWorkspace(),
	})
	if !errors.Is(err, domainerrors.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}

	_, err = newSubmit(store).Execute(context.Background(), SubmitCommand{
		DocumentType: "wps",
		DocumentID:   "doc-1",
		ActorID:      "submitter-1",
		Workspace:    entities.Workspace{Kind: entities.WorkspaceEnterprise},
	})
	if !errors.Is(err, domainerrors.ErrInvalidScope) {
		t.Fatalf("expected ErrInvalidScope for enterprise workspace without company, got %v", err)
	}
}
