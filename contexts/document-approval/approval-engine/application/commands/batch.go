package commands

import (
	"context"
	"log/slog"

	application "weldvault/contexts/document-approval/approval-engine/application"
	"weldvault/contexts/document-approval/approval-engine/domain/entities"
	domainerrors "weldvault/contexts/document-approval/approval-engine/domain/errors"
)

// BatchItemResult reports the outcome for one ID in a batch call. Failed
// items carry the failure message; the rest of the batch still proceeds.
type BatchItemResult struct {
	ID      string
	OK      bool
	Message string
}

// BatchResult aggregates per-item outcomes.
type BatchResult struct {
	Succeeded int
	Failed    int
	Items     []BatchItemResult
}

func (r *BatchResult) record(id string, err error) {
	item := BatchItemResult{ID: id, OK: err == nil}
	if err != nil {
		item.Message = err.Error()
		r.Failed++
	} else {
		r.Succeeded++
	}
	r.Items = append(r.Items, item)
}

// BatchSubmitCommand submits several documents of the same type under one
// workspace. Each document is an independent submit; one duplicate or
// permission failure never aborts the rest.
type BatchSubmitCommand struct {
	DocumentType string
	Documents    []BatchDocument
	ActorID      string
	ActorName    string
	Workspace    entities.Workspace
	WorkflowID   string
	Priority     string
	Notes        string
}

// BatchDocument identifies one document inside a batch submit.
type BatchDocument struct {
	DocumentID     string
	DocumentNumber string
	DocumentTitle  string
}

// BatchUseCase fans batch calls out to the single-item use cases.
type BatchUseCase struct {
	Submit     SubmitUseCase
	Transition TransitionUseCase
	Logger     *slog.Logger
}

func (uc BatchUseCase) BatchSubmit(ctx context.Context, cmd BatchSubmitCommand) (BatchResult, error) {
	if len(cmd.Documents) == 0 {
		return BatchResult{}, domainerrors.ErrInvalidInput
	}
	var result BatchResult
	for _, doc := range cmd.Documents {
		_, err := uc.Submit.Execute(ctx, SubmitCommand{
			DocumentType:   cmd.DocumentType,
			DocumentID:     doc.DocumentID,
			DocumentNumber: doc.DocumentNumber,
			DocumentTitle:  doc.DocumentTitle,
			ActorID:        cmd.ActorID,
			ActorName:      cmd.ActorName,
			Workspace:      cmd.Workspace,
			Notes:          cmd.Notes,
			Priority:       cmd.Priority,
			WorkflowID:     cmd.WorkflowID,
		})
		result.record(doc.DocumentID, err)
	}
	uc.log(ctx, "batch_submit", result)
	return result, nil
}

func (uc BatchUseCase) BatchApprove(ctx context.Context, instanceIDs []string, actorID, actorName, comment string) (BatchResult, error) {
	return uc.batchDecision(ctx, "batch_approve", instanceIDs, actorID, actorName, comment, uc.Transition.Approve)
}

func (uc BatchUseCase) BatchReject(ctx context.Context, instanceIDs []string, actorID, actorName, comment string) (BatchResult, error) {
	return uc.batchDecision(ctx, "batch_reject", instanceIDs, actorID, actorName, comment, uc.Transition.Reject)
}

func (uc BatchUseCase) batchDecision(
	ctx context.Context,
	event string,
	instanceIDs []string,
	actorID, actorName, comment string,
	decide func(context.Context, DecisionCommand) (entities.ApprovalInstance, error),
) (BatchResult, error) {
	if len(instanceIDs) == 0 {
		return BatchResult{}, domainerrors.ErrInvalidInput
	}
	var result BatchResult
	for _, id := range instanceIDs {
		_, err := decide(ctx, DecisionCommand{
			InstanceID: id,
			ActorID:    actorID,
			ActorName:  actorName,
			Comment:    comment,
		})
		result.record(id, err)
	}
	uc.log(ctx, event, result)
	return result, nil
}

func (uc BatchUseCase) log(_ context.Context, event string, result BatchResult) {
	application.ResolveLogger(uc.Logger).Info("batch operation finished",
		"event", event,
		"module", "document-approval/approval-engine",
		"layer", "application",
		"succeeded", result.Succeeded,
		"failed", result.Failed,
	)
}
