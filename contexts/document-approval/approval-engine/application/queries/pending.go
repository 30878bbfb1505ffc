package queries

import (
	"context"
	"log/slog"
	"strings"

	application "weldvault/contexts/document-approval/approval-engine/application"
	"weldvault/contexts/document-approval/approval-engine/domain/entities"
	domainerrors "weldvault/contexts/document-approval/approval-engine/domain/errors"
	"weldvault/contexts/document-approval/approval-engine/ports"
)

// InstancePage is one page of instances plus the unpaged total.
type InstancePage struct {
	Instances []entities.ApprovalInstance
	Total     int64
}

// PendingApprovalsUseCase lists the active instances an actor may act on
// inside a company. Callers need active membership and an assigned role.
type PendingApprovalsUseCase struct {
	Instances ports.InstanceRepository
	Directory ports.Directory
	Logger    *slog.Logger
}

func (uc PendingApprovalsUseCase) Execute(ctx context.Context, actorID, companyID string, page ports.Page) (InstancePage, error) {
	if strings.TrimSpace(actorID) == "" || strings.TrimSpace(companyID) == "" {
		return InstancePage{}, domainerrors.ErrInvalidInput
	}
	employee, found, err := uc.Directory.GetActiveEmployee(ctx, actorID, companyID)
	if err != nil {
		return InstancePage{}, err
	}
	if !found {
		return InstancePage{}, domainerrors.ErrUnauthorized
	}
	if employee.RoleID == "" && !employee.IsAdmin {
		return InstancePage{}, domainerrors.ErrUnauthorized
	}

	// TODO(worklist): narrow to instances whose current step selector
	// resolves to the caller instead of every active instance in the
	// company. Needs the selector expansion indexed per step.
	instances, total, err := uc.Instances.ListInstances(ctx, ports.InstanceFilter{
		CompanyID: companyID,
		Statuses:  []entities.Status{entities.StatusPending, entities.StatusInProgress},
	}, page.Normalize())
	if err != nil {
		return InstancePage{}, err
	}

	application.ResolveLogger(uc.Logger).Debug("pending approvals listed",
		"event", "pending_approvals_listed",
		"module", "document-approval/approval-engine",
		"layer", "application",
		"actor_id", actorID,
		"company_id", companyID,
		"total", total,
	)
	return InstancePage{Instances: instances, Total: total}, nil
}
