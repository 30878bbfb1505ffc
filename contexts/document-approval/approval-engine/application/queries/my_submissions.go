package queries

import (
	"context"
	"log/slog"
	"strings"

	"weldvault/contexts/document-approval/approval-engine/domain/entities"
	domainerrors "weldvault/contexts/document-approval/approval-engine/domain/errors"
	"weldvault/contexts/document-approval/approval-engine/ports"
)

// MySubmissionsUseCase lists the instances an actor submitted, newest first,
// optionally narrowed by status.
type MySubmissionsUseCase struct {
	Instances ports.InstanceRepository
	Logger    *slog.Logger
}

func (uc MySubmissionsUseCase) Execute(ctx context.Context, actorID, companyID string, statuses []entities.Status, page ports.Page) (InstancePage, error) {
	if strings.TrimSpace(actorID) == "" {
		return InstancePage{}, domainerrors.ErrInvalidInput
	}
	for _, status := range statuses {
		if !status.IsValid() {
			return InstancePage{}, domainerrors.ErrInvalidInput
		}
	}
	instances, total, err := uc.Instances.ListInstances(ctx, ports.InstanceFilter{
		CompanyID:   companyID,
		SubmitterID: actorID,
		Statuses:    statuses,
	}, page.Normalize())
	if err != nil {
		return InstancePage{}, err
	}
	return InstancePage{Instances: instances, Total: total}, nil
}
