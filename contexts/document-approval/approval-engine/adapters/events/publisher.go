package events

import (
	"context"
	"log/slog"

	"weldvault/contexts/document-approval/approval-engine/ports"
	sharedevents "weldvault/internal/shared/events"
	"weldvault/internal/platform/messaging"
)

// NotificationTopic is where the notification gateway listens.
const NotificationTopic = "approval.notifications"

// Publisher pushes notification envelopes onto the platform bus.
type Publisher struct {
	bus    *messaging.Bus
	logger *slog.Logger
}

func NewPublisher(bus *messaging.Bus, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{bus: bus, logger: logger}
}

func (p *Publisher) PublishNotification(ctx context.Context, event sharedevents.Envelope) error {
	if err := p.bus.Publish(ctx, NotificationTopic, event); err != nil {
		return err
	}
	p.logger.Debug("notification published",
		"event", "approval_notification_published",
		"module", "document-approval/approval-engine",
		"layer", "adapter",
		"event_id", event.EventID,
		"event_type", event.EventType,
	)
	return nil
}

var _ ports.NotificationPublisher = (*Publisher)(nil)
