package console

import (
	"context"

	"go.uber.org/zap"

	"github.com/gatewise/gatepass/internal/application/port"
)

// Notifier logs approver notifications instead of delivering them. Used
// when Lark integration is disabled.
type Notifier struct {
	logger *zap.Logger
}

// NewNotifier creates a log-only notifier
func NewNotifier(logger *zap.Logger) *Notifier {
	return &Notifier{logger: logger}
}

// NotifyApprover logs the notification and succeeds
func (n *Notifier) NotifyApprover(_ context.Context, approverID string, appointmentID int64, levelIndex int, notificationOnly bool) error {
	n.logger.Info("Approver notification",
		zap.String("approver_id", approverID),
		zap.Int64("appointment_id", appointmentID),
		zap.Int("level_index", levelIndex),
		zap.Bool("notification_only", notificationOnly))
	return nil
}

// Verify interface compliance
var _ port.Notifier = (*Notifier)(nil)
