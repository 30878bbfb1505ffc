package queries

import (
	"context"
	"log/slog"
	"strings"

	"weldvault/contexts/document-approval/approval-engine/domain/entities"
	domainerrors "weldvault/contexts/document-approval/approval-engine/domain/errors"
	"weldvault/contexts/document-approval/approval-engine/ports"
)

// InstanceDetail is one instance with its full audit trail in creation order.
type InstanceDetail struct {
	Instance entities.ApprovalInstance
	History  []entities.HistoryEntry
}

// InstanceDetailUseCase resolves an instance and its history; used for the
// detail view and for audit export.
type InstanceDetailUseCase struct {
	Instances ports.InstanceRepository
	History   ports.HistoryRepository
	Logger    *slog.Logger
}

func (uc InstanceDetailUseCase) Execute(ctx context.Context, instanceID string) (InstanceDetail, error) {
	if strings.TrimSpace(instanceID) == "" {
		return InstanceDetail{}, domainerrors.ErrInvalidInput
	}
	instance, err := uc.Instances.GetInstance(ctx, instanceID)
	if err != nil {
		return InstanceDetail{}, err
	}
	history, err := uc.History.ListHistory(ctx, instanceID)
	if err != nil {
		return InstanceDetail{}, err
	}
	return InstanceDetail{Instance: instance, History: history}, nil
}

// ActiveInstanceUseCase answers whether a document currently has an open
// approval, used by document editors to lock editing while under review.
type ActiveInstanceUseCase struct {
	Instances ports.InstanceRepository
	Logger    *slog.Logger
}

func (uc ActiveInstanceUseCase) Execute(ctx context.Context, documentType, documentID string) (entities.ApprovalInstance, bool, error) {
	if strings.TrimSpace(documentType) == "" || strings.TrimSpace(documentID) == "" {
		return entities.ApprovalInstance{}, false, domainerrors.ErrInvalidInput
	}
	return uc.Instances.FindActiveByDocument(ctx, documentType, documentID)
}
