package queries

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"weldvault/contexts/document-approval/approval-engine/domain/entities"
	domainerrors "weldvault/contexts/document-approval/approval-engine/domain/errors"
	"weldvault/contexts/document-approval/approval-engine/ports"
)

// Statistics is the dashboard roll-up for one actor in one company.
type Statistics struct {
	PendingCount    int64
	InProgressCount int64
	ApprovedCount   int64
	RejectedCount   int64
	MySubmitted     int64
	OverdueCount    int64
}

// StatisticsUseCase aggregates counters for the approval dashboard. An
// instance counts as overdue when it is still active past the configured
// threshold since submission.
type StatisticsUseCase struct {
	Instances        ports.InstanceRepository
	Clock            ports.Clock
	OverdueThreshold time.Duration
	Logger           *slog.Logger
}

func (uc StatisticsUseCase) Execute(ctx context.Context, actorID, companyID string) (Statistics, error) {
	if strings.TrimSpace(actorID) == "" || strings.TrimSpace(companyID) == "" {
		return Statistics{}, domainerrors.ErrInvalidInput
	}

	byStatus, err := uc.Instances.CountByStatus(ctx, companyID)
	if err != nil {
		return Statistics{}, err
	}
	mine, err := uc.Instances.CountBySubmitter(ctx, companyID, actorID)
	if err != nil {
		return Statistics{}, err
	}

	threshold := uc.OverdueThreshold
	if threshold <= 0 {
		threshold = 72 * time.Hour
	}
	cutoff := uc.Clock.Now().UTC().Add(-threshold)
	overdue, err := uc.Instances.CountOverdue(ctx, companyID, cutoff)
	if err != nil {
		return Statistics{}, err
	}

	return Statistics{
		PendingCount:    byStatus[entities.StatusPending],
		InProgressCount: byStatus[entities.StatusInProgress],
		ApprovedCount:   byStatus[entities.StatusApproved],
		RejectedCount:   byStatus[entities.StatusRejected],
		MySubmitted:     mine,
		OverdueCount:    overdue,
	}, nil
}
