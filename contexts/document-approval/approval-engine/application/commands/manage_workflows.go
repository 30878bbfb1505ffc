package commands

import (
	"context"
	"log/slog"
	"strings"

	application "weldvault/contexts/document-approval/approval-engine/application"
	"weldvault/contexts/document-approval/approval-engine/domain/entities"
	domainerrors "weldvault/contexts/document-approval/approval-engine/domain/errors"
	"weldvault/contexts/document-approval/approval-engine/ports"
)

// SaveWorkflowCommand creates or replaces a company's workflow definition.
type SaveWorkflowCommand struct {
	ActorID      string
	CompanyID    string
	WorkflowID   string
	DocumentType string
	Name         string
	Steps        []entities.WorkflowStep
	IsDefault    bool
}

// WorkflowAdminUseCase manages company-scoped workflow definitions. System
// defaults (empty company) are seeded out of band and are not editable here.
type WorkflowAdminUseCase struct {
	Workflows   ports.WorkflowRepository
	Permissions ports.PermissionChecker
	Clock       ports.Clock
	IDGen       ports.IDGenerator
	Logger      *slog.Logger
}

func (uc WorkflowAdminUseCase) SaveWorkflow(ctx context.Context, cmd SaveWorkflowCommand) (entities.WorkflowDefinition, error) {
	if err := uc.requireCompanyAdmin(ctx, cmd.ActorID, cmd.CompanyID); err != nil {
		return entities.WorkflowDefinition{}, err
	}

	now := uc.Clock.Now().UTC()
	definition := entities.WorkflowDefinition{
		WorkflowID:   strings.TrimSpace(cmd.WorkflowID),
		DocumentType: strings.TrimSpace(cmd.DocumentType),
		CompanyID:    cmd.CompanyID,
		Name:         strings.TrimSpace(cmd.Name),
		Steps:        cmd.Steps,
		IsDefault:    cmd.IsDefault,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if definition.WorkflowID == "" {
		id, err := uc.IDGen.NewID(ctx)
		if err != nil {
			return entities.WorkflowDefinition{}, err
		}
		definition.WorkflowID = id
	} else {
		existing, err := uc.Workflows.GetDefinition(ctx, definition.WorkflowID)
		if err != nil {
			return entities.WorkflowDefinition{}, err
		}
		if existing.CompanyID != cmd.CompanyID {
			return entities.WorkflowDefinition{}, domainerrors.ErrWorkflowNotFound
		}
		definition.CreatedAt = existing.CreatedAt
	}

	if !definition.Validate() {
		return entities.WorkflowDefinition{}, domainerrors.ErrInvalidInput
	}
	if err := uc.Workflows.SaveDefinition(ctx, definition); err != nil {
		return entities.WorkflowDefinition{}, err
	}

	application.ResolveLogger(uc.Logger).Info("workflow definition saved",
		"event", "workflow_saved",
		"module", "document-approval/approval-engine",
		"layer", "application",
		"workflow_id", definition.WorkflowID,
		"document_type", definition.DocumentType,
		"company_id", definition.CompanyID,
		"is_default", definition.IsDefault,
	)
	return definition, nil
}

// DeactivateWorkflow retires a definition from lookup. Running instances keep
// their pinned workflow_id and finish on the retired steps.
func (uc WorkflowAdminUseCase) DeactivateWorkflow(ctx context.Context, actorID, companyID, workflowID string) error {
	if err := uc.requireCompanyAdmin(ctx, actorID, companyID); err != nil {
		return err
	}
	definition, err := uc.Workflows.GetDefinition(ctx, workflowID)
	if err != nil {
		return err
	}
	if definition.CompanyID != companyID {
		return domainerrors.ErrWorkflowNotFound
	}
	definition.IsActive = false
	definition.UpdatedAt = uc.Clock.Now().UTC()
	if err := uc.Workflows.SaveDefinition(ctx, definition); err != nil {
		return err
	}

	application.ResolveLogger(uc.Logger).Info("workflow definition deactivated",
		"event", "workflow_deactivated",
		"module", "document-approval/approval-engine",
		"layer", "application",
		"workflow_id", workflowID,
		"company_id", companyID,
	)
	return nil
}

func (uc WorkflowAdminUseCase) ListWorkflows(ctx context.Context, actorID, companyID, documentType string) ([]entities.WorkflowDefinition, error) {
	if err := uc.requireCompanyAdmin(ctx, actorID, companyID); err != nil {
		return nil, err
	}
	return uc.Workflows.ListDefinitions(ctx, companyID, documentType)
}

func (uc WorkflowAdminUseCase) requireCompanyAdmin(ctx context.Context, actorID, companyID string) error {
	if strings.TrimSpace(actorID) == "" || strings.TrimSpace(companyID) == "" {
		return domainerrors.ErrInvalidInput
	}
	admin, err := uc.Permissions.IsSystemAdmin(ctx, actorID)
	if err != nil {
		return err
	}
	if admin {
		return nil
	}
	companyAdmin, err := uc.Permissions.IsCompanyAdmin(ctx, actorID, companyID)
	if err != nil {
		return err
	}
	if !companyAdmin {
		return domainerrors.ErrUnauthorized
	}
	return nil
}
