package queries

import (
	"context"
	"log/slog"

	application "weldvault/contexts/document-approval/approval-engine/application"
	"weldvault/contexts/document-approval/approval-engine/domain/entities"
	domainerrors "weldvault/contexts/document-approval/approval-engine/domain/errors"
	"weldvault/contexts/document-approval/approval-engine/ports"
)

// WorkflowLookupUseCase answers which approval template applies to a document
// type under a workspace, if any.
type WorkflowLookupUseCase struct {
	Workflows ports.WorkflowRepository
	Logger    *slog.Logger
}

// WorkflowFor returns the most specific active definition: company-scoped
// first (is_default desc, created_at desc), then the system default. The
// boolean is false when approval simply is not configured; callers must not
// confuse that with an error.
func (u WorkflowLookupUseCase) WorkflowFor(
	ctx context.Context,
	documentType string,
	workspace entities.Workspace,
) (entities.WorkflowDefinition, bool, error) {
	if documentType == "" {
		return entities.WorkflowDefinition{}, false, domainerrors.ErrInvalidInput
	}
	if !workspace.IsUsable() {
		return entities.WorkflowDefinition{}, false, domainerrors.ErrInvalidScope
	}
	// Approval never applies to a personal workspace.
	if workspace.IsPersonal() {
		return entities.WorkflowDefinition{}, false, nil
	}

	definition, found, err := u.Workflows.FindCompanyWorkflow(ctx, documentType, workspace.CompanyID)
	if err != nil {
		return entities.WorkflowDefinition{}, false, err
	}
	if found {
		return definition, true, nil
	}

	definition, found, err = u.Workflows.FindSystemDefault(ctx, documentType)
	if err != nil {
		return entities.WorkflowDefinition{}, false, err
	}
	if !found {
		logger := application.ResolveLogger(u.Logger)
		logger.Debug("no workflow configured",
			"event", "approval_workflow_not_configured",
			"module", "document-approval/approval-engine",
			"layer", "application",
			"document_type", documentType,
			"company_id", workspace.CompanyID,
		)
		return entities.WorkflowDefinition{}, false, nil
	}
	return definition, true, nil
}

// ShouldRequireApproval reports whether a workflow is configured for the
// document type under the workspace.
func (u WorkflowLookupUseCase) ShouldRequireApproval(
	ctx context.Context,
	documentType string,
	workspace entities.Workspace,
) (bool, error) {
	_, found, err := u.WorkflowFor(ctx, documentType, workspace)
	return found, err
}
