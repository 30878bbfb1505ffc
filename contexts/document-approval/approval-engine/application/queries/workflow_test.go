package queries

import (
	"context"
	"errors"
	"testing"
	"time"

	"weldvault/contexts/document-approval/approval-engine/adapters/memory"
	"weldvault/contexts/document-approval/approval-engine/domain/entities"
	domainerrors "weldvault/contexts/document-approval/approval-engine/domain/errors"
)

func stepByUser(name, userID string) entities.WorkflowStep {
	return entities.WorkflowStep{
		Name:     name,
		Selector: entities.ApproverSelector{Kind: entities.SelectByUser, IDs: []string{userID}},
	}
}

func seedDefinition(store *memory.Store, id, companyID string, isDefault bool, createdAt time.Time) {
	store.SeedWorkflow(entities.WorkflowDefinition{
		WorkflowID:   id,
		DocumentType: "wps",
		CompanyID:    companyID,
		Name:         id,
		Steps:        []entities.WorkflowStep{stepByUser("Review", "approver-1")},
		IsDefault:    isDefault,
		IsActive:     true,
		CreatedAt:    createdAt,
	})
}

func TestWorkflowForPrefersCompanyOverSystemDefault(t *testing.T) {
	store := memory.NewStore()
	now := time.Now().UTC()
	seedDefinition(store, "wf-system", "", true, now.Add(-48*time.Hour))
	seedDefinition(store, "wf-company", "company-1", false, now.Add(-24*time.Hour))
	uc := WorkflowLookupUseCase{Workflows: store}

	workspace := entities.Workspace{Kind: entities.WorkspaceEnterprise, CompanyID: "company-1"}
	definition, found, err := uc.WorkflowFor(context.Background(), "wps", workspace)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if !found || definition.WorkflowID != "wf-company" {
		t.Fatalf("expected wf-company, got %q found=%v", definition.WorkflowID, found)
	}

	// A company with no definition of its own falls back to the system default.
	other := entities.Workspace{Kind: entities.WorkspaceEnterprise, CompanyID: "company-2"}
	definition, found, err = uc.WorkflowFor(context.Background(), "wps", other)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if !found || definition.WorkflowID != "wf-system" {
		t.Fatalf("expected wf-system fallback, got %q found=%v", definition.WorkflowID, found)
	}
}

func TestWorkflowForPrefersDefaultThenNewest(t *testing.T) {
	store := memory.NewStore()
	now := time.Now().UTC()
	seedDefinition(store, "wf-old-default", "company-1", true, now.Add(-72*time.Hour))
	seedDefinition(store, "wf-newest", "company-1", false, now)
	uc := WorkflowLookupUseCase{Workflows: store}

	workspace := entities.Workspace{Kind: entities.WorkspaceEnterprise, CompanyID: "company-1"}
	definition, found, err := uc.WorkflowFor(context.Background(), "wps", workspace)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if !found || definition.WorkflowID != "wf-old-default" {
		t.Fatalf("expected default flag to outrank recency, got %q found=%v", definition.WorkflowID, found)
	}
}

func TestWorkflowForPersonalWorkspace(t *testing.T) {
	store := memory.NewStore()
	seedDefinition(store, "wf-system", "", true, time.Now().UTC())
	uc := WorkflowLookupUseCase{Workflows: store}

	_, found, err := uc.WorkflowFor(context.Background(), "wps",
		entities.Workspace{Kind: entities.WorkspacePersonal})
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if found {
		t.Fatal("expected no workflow for personal workspace")
	}

	required, err := uc.ShouldRequireApproval(context.Background(), "wps",
		entities.Workspace{Kind: entities.WorkspacePersonal})
	if err != nil {
		t.Fatalf("should require: %v", err)
	}
	if required {
		t.Fatal("expected personal workspace to never require approval")
	}
}

func TestWorkflowForUnconfiguredType(t *testing.T) {
	store := memory.NewStore()
	uc := WorkflowLookupUseCase{Workflows: store}

	workspace := entities.Workspace{Kind: entities.WorkspaceEnterprise, CompanyID: "company-1"}
	_, found, err := uc.WorkflowFor(context.Background(), "pqr", workspace)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if found {
		t.Fatal("expected not found for unconfigured document type")
	}

	if _, _, err := uc.WorkflowFor(context.Background(), "", workspace); !errors.Is(err, domainerrors.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty type, got %v", err)
	}
	if _, _, err := uc.WorkflowFor(context.Background(), "wps",
		entities.Workspace{Kind: entities.WorkspaceEnterprise}); !errors.Is(err, domainerrors.ErrInvalidScope) {
		t.Fatalf("expected ErrInvalidScope, got %v", err)
	}
}
