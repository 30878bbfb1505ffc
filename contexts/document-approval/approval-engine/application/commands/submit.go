package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "weldvault/contexts/document-approval/approval-engine/application"
	"weldvault/contexts/document-approval/approval-engine/application/queries"
	"weldvault/contexts/document-approval/approval-engine/domain/entities"
	domainerrors "weldvault/contexts/document-approval/approval-engine/domain/errors"
	"weldvault/contexts/document-approval/approval-engine/ports"
)

// SubmitCommand puts one document up for approval.
type SubmitCommand struct {
	DocumentType   string
	DocumentID     string
	DocumentNumber string
	DocumentTitle  string
	ActorID        string
	ActorName      string
	Workspace      entities.Workspace
	Notes          string
	Priority       string
	// WorkflowID optionally pins a definition; it is re-validated for
	// document type and company scope.
	WorkflowID string
}

// SubmitUseCase creates approval instances. The storage layer backs the
// duplicate pre-check with a partial unique index over active instances, so
// two concurrent submits cannot both win.
type SubmitUseCase struct {
	Lookup    queries.WorkflowLookupUseCase
	Workflows ports.WorkflowRepository
	Instances ports.InstanceRepository
	Directory ports.Directory
	Clock     ports.Clock
	IDGen     ports.IDGenerator
	Logger    *slog.Logger
}

func (uc SubmitUseCase) Execute(ctx context.Context, cmd SubmitCommand) (entities.ApprovalInstance, error) {
	logger := application.ResolveLogger(uc.Logger)
	if strings.TrimSpace(cmd.DocumentType) == "" ||
		strings.TrimSpace(cmd.DocumentID) == "" ||
		strings.TrimSpace(cmd.ActorID) == "" {
		return entities.ApprovalInstance{}, domainerrors.ErrInvalidInput
	}
	if !cmd.Workspace.IsUsable() {
		return entities.ApprovalInstance{}, domainerrors.ErrInvalidScope
	}
	if cmd.Workspace.IsPersonal() {
		return entities.ApprovalInstance{}, domainerrors.ErrNotApplicable
	}

	definition, err := uc.resolveDefinition(ctx, cmd)
	if err != nil {
		return entities.ApprovalInstance{}, err
	}

	if _, active, err := uc.Instances.FindActiveByDocument(ctx, cmd.DocumentType, cmd.DocumentID); err != nil {
		return entities.ApprovalInstance{}, err
	} else if active {
		return entities.ApprovalInstance{}, domainerrors.ErrDuplicateActive
	}

	firstStep, ok := definition.StepAt(1)
	if !ok {
		return entities.ApprovalInstance{}, domainerrors.ErrWorkflowNotFound
	}

	now := uc.now()
	instanceID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.ApprovalInstance{}, err
	}
	historyID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.ApprovalInstance{}, err
	}
	outboxID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.ApprovalInstance{}, err
	}

	priority := strings.TrimSpace(cmd.Priority)
	if priority == "" {
		priority = entities.PriorityNormal
	}

	instance := entities.ApprovalInstance{
		InstanceID:      instanceID,
		WorkflowID:      definition.WorkflowID,
		DocumentType:    strings.TrimSpace(cmd.DocumentType),
		DocumentID:      strings.TrimSpace(cmd.DocumentID),
		DocumentNumber:  strings.TrimSpace(cmd.DocumentNumber),
		DocumentTitle:   strings.TrimSpace(cmd.DocumentTitle),
		Workspace:       cmd.Workspace,
		Status:          entities.StatusPending,
		CurrentStep:     1,
		CurrentStepName: firstStep.Name,
		TotalSteps:      definition.StepCount(),
		SubmitterID:     cmd.ActorID,
		SubmitterName:   cmd.ActorName,
		SubmittedAt:     now,
		Priority:        priority,
		Notes:           cmd.Notes,
		Version:         1,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	approvers, err := resolveApprovers(ctx, uc.Directory, cmd.Workspace.CompanyID, firstStep.Selector)
	if err != nil {
		return entities.ApprovalInstance{}, err
	}

	input := ports.CreateInstanceInput{
		Instance: instance,
		History: entities.HistoryEntry{
			EntryID:      historyID,
			InstanceID:   instanceID,
			StepNumber:   0,
			StepName:     "submit",
			Action:       entities.ActionSubmit,
			OperatorID:   cmd.ActorID,
			OperatorName: cmd.ActorName,
			Comment:      cmd.Notes,
			Result:       string(entities.StatusPending),
			CreatedAt:    now,
		},
		OutboxID: outboxID,
		Notification: entities.Notification{
			RecipientIDs:  approvers,
			DocumentType:  instance.DocumentType,
			DocumentTitle: instance.DocumentTitle,
			EventKind:     entities.NotifyPendingApproval,
			InstanceID:    instanceID,
		},
	}
	if err := uc.Instances.CreateInstance(ctx, input); err != nil {
		return entities.ApprovalInstance{}, err
	}

	logger.Info("approval instance submitted",
		"event", "approval_submitted",
		"module", "document-approval/approval-engine",
		"layer", "application",
		"instance_id", instanceID,
		"document_type", instance.DocumentType,
		"document_id", instance.DocumentID,
		"workflow_id", definition.WorkflowID,
		"total_steps", instance.TotalSteps,
		"submitter_id", cmd.ActorID,
	)
	return instance, nil
}

// resolveDefinition applies the lookup rule, or re-validates an explicitly
// pinned workflow. A definition belonging to another company is never
// eligible.
func (uc SubmitUseCase) resolveDefinition(ctx context.Context, cmd SubmitCommand) (entities.WorkflowDefinition, error) {
	if cmd.WorkflowID != "" {
		definition, err := uc.Workflows.GetDefinition(ctx, cmd.WorkflowID)
		if err != nil {
			return entities.WorkflowDefinition{}, err
		}
		if !definition.IsActive ||
			definition.DocumentType != strings.TrimSpace(cmd.DocumentType) ||
			(!definition.IsSystemDefault() && definition.CompanyID != cmd.Workspace.CompanyID) {
			return entities.WorkflowDefinition{}, domainerrors.ErrWorkflowNotFound
		}
		return definition, nil
	}

	definition, found, err := uc.Lookup.WorkflowFor(ctx, cmd.DocumentType, cmd.Workspace)
	if err != nil {
		return entities.WorkflowDefinition{}, err
	}
	if !found {
		// Approval is not configured for this document type and company.
		return entities.WorkflowDefinition{}, domainerrors.ErrNotApplicable
	}
	return definition, nil
}

func (uc SubmitUseCase) now() time.Time {
	if uc.Clock != nil {
		return uc.Clock.Now().UTC()
	}
	return time.Now().UTC()
}
