package workers

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	application "weldvault/contexts/document-approval/approval-engine/application"
	"weldvault/contexts/document-approval/approval-engine/domain/entities"
	"weldvault/contexts/document-approval/approval-engine/ports"
	"weldvault/internal/shared/events"
)

// NotificationRelay drains the approval outbox and republishes each row as a
// notification envelope. Rows are marked published only after the publisher
// accepts them, so a crash replays instead of losing notifications.
type NotificationRelay struct {
	Outbox    ports.OutboxRepository
	Publisher ports.NotificationPublisher
	Clock     ports.Clock
	BatchSize int
	Logger    *slog.Logger
}

func (r NotificationRelay) RunOnce(ctx context.Context) error {
	logger := application.ResolveLogger(r.Logger)
	limit := r.BatchSize
	if limit <= 0 {
		limit = 100
	}

	pending, err := r.Outbox.ListPendingOutbox(ctx, limit)
	if err != nil {
		logger.Error("approval outbox list failed",
			"event", "approval_outbox_list_failed",
			"module", "document-approval/approval-engine",
			"layer", "worker",
			"error", err.Error(),
		)
		return err
	}

	now := time.Now().UTC()
	if r.Clock != nil {
		now = r.Clock.Now().UTC()
	}

	for _, row := range pending {
		var notification entities.Notification
		if err := json.Unmarshal(row.Payload, &notification); err != nil {
			return err
		}
		envelope := events.Envelope{
			EventID:        row.OutboxID,
			EventType:      row.EventType,
			SourceService:  "approval-engine",
			OccurredAtUTC:  row.CreatedAt,
			EntityType:     "approval_instance",
			EntityID:       notification.InstanceID,
			PayloadVersion: 1,
			Payload:        notification,
		}
		if err := r.Publisher.PublishNotification(ctx, envelope); err != nil {
			logger.Error("approval outbox publish failed",
				"event", "approval_outbox_publish_failed",
				"module", "document-approval/approval-engine",
				"layer", "worker",
				"outbox_id", row.OutboxID,
				"error", err.Error(),
			)
			return err
		}
		if err := r.Outbox.MarkOutboxPublished(ctx, row.OutboxID, now); err != nil {
			return err
		}
	}
	return nil
}

// Run polls RunOnce on the given interval until the context is cancelled.
func (r NotificationRelay) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = r.RunOnce(ctx)
		}
	}
}
