package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "weldvault/contexts/document-approval/approval-engine/application"
	"weldvault/contexts/document-approval/approval-engine/domain/entities"
	domainerrors "weldvault/contexts/document-approval/approval-engine/domain/errors"
	"weldvault/contexts/document-approval/approval-engine/ports"
)

// DecisionCommand is the shared input for approve/reject/return/cancel.
type DecisionCommand struct {
	InstanceID  string
	ActorID     string
	ActorName   string
	Comment     string
	Attachments []string
}

// TransitionUseCase advances and closes approval instances. Every accepted
// transition appends exactly one history entry atomically with the status
// write; the write itself is guarded by the instance version so concurrent
// actors cannot double-advance a step.
type TransitionUseCase struct {
	Instances   ports.InstanceRepository
	Workflows   ports.WorkflowRepository
	Directory   ports.Directory
	Permissions ports.PermissionChecker
	Clock       ports.Clock
	IDGen       ports.IDGenerator
	Logger      *slog.Logger
}

// Approve records the current step's approval. Intermediate steps advance the
// instance; the final step closes it and pushes "approved" onto the document.
func (uc TransitionUseCase) Approve(ctx context.Context, cmd DecisionCommand) (entities.ApprovalInstance, error) {
	instance, err := uc.loadActive(ctx, cmd)
	if err != nil {
		return entities.ApprovalInstance{}, err
	}
	if err := uc.requireApprover(ctx, cmd.ActorID, instance); err != nil {
		return entities.ApprovalInstance{}, err
	}

	now := uc.now()
	actedStep := instance.CurrentStep
	actedStepName := instance.CurrentStepName
	updated := instance

	var (
		documentStatus string
		notification   entities.Notification
	)
	if instance.CurrentStep < instance.TotalSteps {
		definition, err := uc.Workflows.GetDefinition(ctx, instance.WorkflowID)
		if err != nil {
			return entities.ApprovalInstance{}, err
		}
		nextStep, ok := definition.StepAt(instance.CurrentStep + 1)
		if !ok {
			return entities.ApprovalInstance{}, domainerrors.ErrWorkflowNotFound
		}
		approvers, err := resolveApprovers(ctx, uc.Directory, instance.Workspace.CompanyID, nextStep.Selector)
		if err != nil {
			return entities.ApprovalInstance{}, err
		}

		updated.Status = entities.StatusInProgress
		updated.CurrentStep = instance.CurrentStep + 1
		updated.CurrentStepName = nextStep.Name
		notification = entities.Notification{
			RecipientIDs:  approvers,
			DocumentType:  instance.DocumentType,
			DocumentTitle: instance.DocumentTitle,
			EventKind:     entities.NotifyPendingApproval,
			InstanceID:    instance.InstanceID,
		}
	} else {
		updated.Status = entities.StatusApproved
		updated.CompletedAt = &now
		updated.FinalApproverID = cmd.ActorID
		documentStatus = entities.DocumentStatusApproved
		notification = uc.submitterNotification(instance, entities.NotifyApproved)
	}

	return uc.apply(ctx, instance, updated, cmd, entities.ActionApprove, actedStep, actedStepName, documentStatus, notification, now)
}

// Reject closes the instance at any step and returns the document to a
// rejected state.
func (uc TransitionUseCase) Reject(ctx context.Context, cmd DecisionCommand) (entities.ApprovalInstance, error) {
	instance, err := uc.loadActive(ctx, cmd)
	if err != nil {
		return entities.ApprovalInstance{}, err
	}
	if err := uc.requireApprover(ctx, cmd.ActorID, instance); err != nil {
		return entities.ApprovalInstance{}, err
	}

	now := uc.now()
	updated := instance
	updated.Status = entities.StatusRejected
	updated.CompletedAt = &now
	updated.FinalApproverID = cmd.ActorID

	return uc.apply(ctx, instance, updated, cmd, entities.ActionReject,
		instance.CurrentStep, instance.CurrentStepName,
		entities.DocumentStatusRejected,
		uc.submitterNotification(instance, entities.NotifyRejected), now)
}

// Return hands the document back to the submitter as an editable draft. The
// instance accepts no further approve/reject; resumption takes a new submit.
func (uc TransitionUseCase) Return(ctx context.Context, cmd DecisionCommand) (entities.ApprovalInstance, error) {
	instance, err := uc.loadActive(ctx, cmd)
	if err != nil {
		return entities.ApprovalInstance{}, err
	}
	if err := uc.requireApprover(ctx, cmd.ActorID, instance); err != nil {
		return entities.ApprovalInstance{}, err
	}

	now := uc.now()
	updated := instance
	updated.Status = entities.StatusReturned

	return uc.apply(ctx, instance, updated, cmd, entities.ActionReturn,
		instance.CurrentStep, instance.CurrentStepName,
		entities.DocumentStatusDraft,
		uc.submitterNotification(instance, entities.NotifyReturned), now)
}

// Cancel withdraws a still-active instance. Only the original submitter may
// cancel; no approve permission is needed.
func (uc TransitionUseCase) Cancel(ctx context.Context, cmd DecisionCommand) (entities.ApprovalInstance, error) {
	instance, err := uc.loadActive(ctx, cmd)
	if err != nil {
		return entities.ApprovalInstance{}, err
	}
	if instance.SubmitterID != cmd.ActorID {
		return entities.ApprovalInstance{}, domainerrors.ErrUnauthorized
	}

	now := uc.now()
	updated := instance
	updated.Status = entities.StatusCancelled

	return uc.apply(ctx, instance, updated, cmd, entities.ActionCancel,
		instance.CurrentStep, instance.CurrentStepName,
		entities.DocumentStatusDraft,
		uc.submitterNotification(instance, entities.NotifyCancelled), now)
}

func (uc TransitionUseCase) loadActive(ctx context.Context, cmd DecisionCommand) (entities.ApprovalInstance, error) {
	if strings.TrimSpace(cmd.InstanceID) == "" || strings.TrimSpace(cmd.ActorID) == "" {
		return entities.ApprovalInstance{}, domainerrors.ErrInvalidInput
	}
	instance, err := uc.Instances.GetInstance(ctx, cmd.InstanceID)
	if err != nil {
		return entities.ApprovalInstance{}, err
	}
	if !instance.Status.IsActive() {
		return entities.ApprovalInstance{}, domainerrors.ErrInvalidTransition
	}
	return instance, nil
}

// requireApprover enforces the approve permission bit for the instance's
// document type. System-level administrators bypass the check.
func (uc TransitionUseCase) requireApprover(ctx context.Context, actorID string, instance entities.ApprovalInstance) error {
	admin, err := uc.Permissions.IsSystemAdmin(ctx, actorID)
	if err != nil {
		return err
	}
	if admin {
		return nil
	}
	allowed, err := uc.Permissions.CanApprove(ctx, actorID, instance.Workspace.CompanyID, instance.DocumentType)
	if err != nil {
		return err
	}
	if !allowed {
		return domainerrors.ErrUnauthorized
	}
	return nil
}

func (uc TransitionUseCase) apply(
	ctx context.Context,
	previous entities.ApprovalInstance,
	updated entities.ApprovalInstance,
	cmd DecisionCommand,
	action entities.HistoryAction,
	actedStep int,
	actedStepName string,
	documentStatus string,
	notification entities.Notification,
	now time.Time,
) (entities.ApprovalInstance, error) {
	logger := application.ResolveLogger(uc.Logger)

	historyID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.ApprovalInstance{}, err
	}
	outboxID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.ApprovalInstance{}, err
	}

	updated.Version = previous.Version + 1
	updated.UpdatedAt = now

	input := ports.TransitionInput{
		Instance:        updated,
		ExpectedVersion: previous.Version,
		History: entities.HistoryEntry{
			EntryID:      historyID,
			InstanceID:   previous.InstanceID,
			StepNumber:   actedStep,
			StepName:     actedStepName,
			Action:       action,
			OperatorID:   cmd.ActorID,
			OperatorName: cmd.ActorName,
			Comment:      cmd.Comment,
			Attachments:  cmd.Attachments,
			Result:       string(updated.Status),
			CreatedAt:    now,
		},
		DocumentStatus: documentStatus,
		OutboxID:       outboxID,
		Notification:   notification,
	}
	if err := uc.Instances.ApplyTransition(ctx, input); err != nil {
		return entities.ApprovalInstance{}, err
	}

	logger.Info("approval transition applied",
		"event", "approval_transition_applied",
		"module", "document-approval/approval-engine",
		"layer", "application",
		"instance_id", previous.InstanceID,
		"action", string(action),
		"from_step", actedStep,
		"status", string(updated.Status),
		"operator_id", cmd.ActorID,
	)
	return updated, nil
}

func (uc TransitionUseCase) submitterNotification(instance entities.ApprovalInstance, kind string) entities.Notification {
	return entities.Notification{
		RecipientIDs:  []string{instance.SubmitterID},
		DocumentType:  instance.DocumentType,
		DocumentTitle: instance.DocumentTitle,
		EventKind:     kind,
		InstanceID:    instance.InstanceID,
	}
}

func (uc TransitionUseCase) now() time.Time {
	if uc.Clock != nil {
		return uc.Clock.Now().UTC()
	}
	return time.Now().UTC()
}
