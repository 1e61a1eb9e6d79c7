package service

import (
	"context"

	"github.com/gatewise/gatepass/internal/application/dispatcher"
	"github.com/gatewise/gatepass/internal/application/port"
	"github.com/gatewise/gatepass/internal/domain/event"
)

// NotificationService forwards level activations to approvers. Delivery is
// fire-and-forget: failures are logged and never retried, and the workflow
// never waits on a send.
type NotificationService interface {
	// Register subscribes the service to level activation events
	Register(d dispatcher.Dispatcher)
}

type notificationServiceImpl struct {
	notifier port.Notifier
	logger   Logger
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(notifier port.Notifier, logger Logger) NotificationService {
	return &notificationServiceImpl{
		notifier: notifier,
		logger:   logger,
	}
}

// Register subscribes the service to level activation events
func (s *notificationServiceImpl) Register(d dispatcher.Dispatcher) {
	d.SubscribeNamed(event.TypeLevelActivated, "approver-notification", func(ctx context.Context, evt *event.Event) error {
		approverID := evt.GetPayloadString("approver_id")
		levelIndex := evt.GetPayloadInt("level_index")
		notificationOnly, _ := evt.Payload["notification_only"].(bool)

		err := s.notifier.NotifyApprover(ctx, approverID, evt.AppointmentID, levelIndex, notificationOnly)
		if err != nil {
			// Logged, not retried; delivery never gates the workflow.
			s.logger.Error("Failed to notify approver",
				"error", err,
				"approver_id", approverID,
				"appointment_id", evt.AppointmentID,
				"level_index", levelIndex,
			)
			return nil
		}

		s.logger.Info("Approver notified",
			"approver_id", approverID,
			"appointment_id", evt.AppointmentID,
			"level_index", levelIndex,
			"notification_only", notificationOnly,
		)
		return nil
	})
}
