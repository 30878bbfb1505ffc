package workers

import (
	"context"
	"errors"
	"testing"
	"time"

	"weldvault/contexts/document-approval/approval-engine/adapters/memory"
	"weldvault/contexts/document-approval/approval-engine/domain/entities"
	"weldvault/contexts/document-approval/approval-engine/ports"
	"weldvault/internal/shared/events"
)

type capturingPublisher struct {
	envelopes []events.Envelope
	fail      bool
}

func (p *capturingPublisher) PublishNotification(_ context.Context, event events.Envelope) error {
	if p.fail {
		return errors.New("bus down")
	}
	p.envelopes = append(p.envelopes, event)
	return nil
}

func seedOutboxRow(t *testing.T, store *memory.Store, instanceID, documentID string) {
	t.Helper()
	now := time.Now().UTC()
	err := store.CreateInstance(context.Background(), ports.CreateInstanceInput{
		Instance: entities.ApprovalInstance{
			InstanceID:   instanceID,
			WorkflowID:   "wf-1",
			DocumentType: "wps",
			DocumentID:   documentID,
			Workspace:    entities.Workspace{Kind: entities.WorkspaceEnterprise, CompanyID: "company-1"},
			Status:       entities.StatusPending,
			CurrentStep:  1,
			TotalSteps:   1,
			SubmitterID:  "submitter-1",
			SubmittedAt:  now,
			Version:      1,
		},
		History: entities.HistoryEntry{
			EntryID:    instanceID + "-h0",
			InstanceID: instanceID,
			Action:     entities.ActionSubmit,
			OperatorID: "submitter-1",
			Result:     string(entities.StatusPending),
			CreatedAt:  now,
		},
		OutboxID: instanceID + "-o0",
		Notification: entities.Notification{
			RecipientIDs:  []string{"approver-1"},
			DocumentType:  "wps",
			DocumentTitle: "Pipe Butt Weld",
			EventKind:     entities.NotifyPendingApproval,
			InstanceID:    instanceID,
		},
	})
	if err != nil {
		t.Fatalf("seed outbox row: %v", err)
	}
}

func TestRunOncePublishesAndMarks(t *testing.T) {
	store := memory.NewStore()
	seedOutboxRow(t, store, "inst-1", "doc-1")
	seedOutboxRow(t, store, "inst-2", "doc-2")
	publisher := &capturingPublisher{}
	relay := NotificationRelay{Outbox: store, Publisher: publisher, Clock: store}

	if err := relay.RunOnce(context.Background()); err != nil {
		t.Fatalf("run once: %v", err)
	}
	if len(publisher.envelopes) != 2 {
		t.Fatalf("expected 2 envelopes, got %d", len(publisher.envelopes))
	}
	if got := store.PendingOutboxCount(); got != 0 {
		t.Fatalf("expected drained outbox, got %d pending", got)
	}

	envelope := publisher.envelopes[0]
	if envelope.EventType != "approval.pending_approval" {
		t.Fatalf("expected event type approval.pending_approval, got %q", envelope.EventType)
	}
	if envelope.SourceService != "approval-engine" || envelope.EntityType != "approval_instance" {
		t.Fatalf("unexpected envelope origin: %+v", envelope)
	}
	if envelope.EntityID != "inst-1" {
		t.Fatalf("expected entity id inst-1, got %q", envelope.EntityID)
	}
	if envelope.PayloadVersion != 1 {
		t.Fatalf("expected payload version 1, got %d", envelope.PayloadVersion)
	}
	notification, ok := envelope.Payload.(entities.Notification)
	if !ok {
		t.Fatalf("expected Notification payload, got %T", envelope.Payload)
	}
	if len(notification.RecipientIDs) != 1 || notification.RecipientIDs[0] != "approver-1" {
		t.Fatalf("unexpected recipients: %v", notification.RecipientIDs)
	}

	// A second pass finds nothing left to publish.
	if err := relay.RunOnce(context.Background()); err != nil {
		t.Fatalf("second run: %v", err)
	}
	if len(publisher.envelopes) != 2 {
		t.Fatalf("expected no republish, got %d envelopes", len(publisher.envelopes))
	}
}

func TestRunOnceKeepsRowOnPublishFailure(t *testing.T) {
	store := memory.NewStore()
	seedOutboxRow(t, store, "inst-1", "doc-1")
	publisher := &capturingPublisher{fail: true}
	relay := NotificationRelay{Outbox: store, Publisher: publisher, Clock: store}

	if err := relay.RunOnce(context.Background()); err == nil {
		t.Fatal("expected publish failure surfaced")
	}
	if got := store.PendingOutboxCount(); got != 1 {
		t.Fatalf("expected row retained for replay, got %d pending", got)
	}

	publisher.fail = false
	if err := relay.RunOnce(context.Background()); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if got := store.PendingOutboxCount(); got != 0 {
		t.Fatalf("expected drained outbox after retry, got %d", got)
	}
}

func TestRunOnceRespectsBatchSize(t *testing.T) {
	store := memory.NewStore()
	seedOutboxRow(t, store, "inst-1", "doc-1")
	seedOutboxRow(t, store, "inst-2", "doc-2")
	seedOutboxRow(t, store, "inst-3", "doc-3")
	publisher := &capturingPublisher{}
	relay := NotificationRelay{Outbox: store, Publisher: publisher, Clock: store, BatchSize: 2}

	if err := relay.RunOnce(context.Background()); err != nil {
		t.Fatalf("run once: %v", err)
	}
	if len(publisher.envelopes) != 2 {
		t.Fatalf("expected batch of 2, got %d", len(publisher.envelopes))
	}
	if got := store.PendingOutboxCount(); got != 1 {
		t.Fatalf("expected 1 row left, got %d", got)
	}
}
