package commands

import (
	"context"
	"errors"
	"testing"

	"weldvault/contexts/document-approval/approval-engine/adapters/memory"
	domainerrors "weldvault/contexts/document-approval/approval-engine/domain/errors"
)

func newBatch(store *memory.Store) BatchUseCase {
	return BatchUseCase{
		Submit:     newSubmit(store),
		Transition: newTransition(store),
	}
}

func TestBatchSubmitIsolatesFailures(t *testing.T) {
	store := memory.NewStore()
	seedTwoStepWPS(store)
	// doc-2 already has an active instance; only it should fail.
	submitWPS(t, store, "doc-2")

	result, err := newBatch(store).BatchSubmit(context.Background(), BatchSubmitCommand{
		DocumentType: "wps",
		Documents: []BatchDocument{
			{DocumentID: "doc-1", DocumentTitle: "Plate Weld"},
			{DocumentID: "doc-2", DocumentTitle: "Pipe Weld"},
			{DocumentID: "doc-3", DocumentTitle: "Fillet Weld"},
		},
		ActorID:   "submitter-1",
		ActorName: "Sam Submitter",
		Workspace: enterpriseWorkspace(),
	})
	if err != nil {
		t.Fatalf("batch submit: %v", err)
	}
	if result.Succeeded != 2 || result.Failed != 1 {
		t.Fatalf("expected 2 succeeded 1 failed, got %+v", result)
	}
	for _, item := range result.Items {
		if item.ID == "doc-2" {
			if item.OK {
				t.Fatal("expected doc-2 to fail as duplicate")
			}
		} else if !item.OK {
			t.Fatalf("expected %s to succeed, got %q", item.ID, item.Message)
		}
	}
}

func TestBatchApproveMixedOutcomes(t *testing.T) {
	store := memory.NewStore()
	seedTwoStepWPS(store)
	a := submitWPS(t, store, "doc-1")
	b := submitWPS(t, store, "doc-2")

	// b is cancelled first, so its approval must fail without touching a.
	if _, err := newTransition(store).Cancel(context.Background(), DecisionCommand{
		InstanceID: b.InstanceID,
		ActorID:    "submitter-1",
	}); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	result, err := newBatch(store).BatchApprove(context.Background(),
		[]string{a.InstanceID, b.InstanceID}, "approver-1", "Alice Approver", "batch pass")
	if err != nil {
		t.Fatalf("batch approve: %v", err)
	}
	if result.Succeeded != 1 || result.Failed != 1 {
		t.Fatalf("expected 1 succeeded 1 failed, got %+v", result)
	}

	refreshed, err := store.GetInstance(context.Background(), a.InstanceID)
	if err != nil {
		t.Fatalf("get instance: %v", err)
	}
	if refreshed.CurrentStep != 2 {
		t.Fatalf("expected surviving instance advanced to step 2, got %d", refreshed.CurrentStep)
	}
}

func TestBatchRejectsEmptyInput(t *testing.T) {
	store := memory.NewStore()
	uc := newBatch(store)

	if _, err := uc.BatchSubmit(context.Background(), BatchSubmitCommand{
		DocumentType: "wps",
		ActorID:      "submitter-1",
		Workspace:    enterpriseWorkspace(),
	}); !errors.Is(err, domainerrors.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty documents, got %v", err)
	}

	if _, err := uc.BatchApprove(context.Background(), nil, "approver-1", "", ""); !errors.Is(err, domainerrors.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty instance ids, got %v", err)
	}
}
