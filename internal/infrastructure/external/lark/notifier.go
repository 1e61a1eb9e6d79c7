package lark

import (
	"context"
	"encoding/json"
	"fmt"

	larkIm "github.com/larksuite/oapi-sdk-go/v3/service/im/v1"
	"go.uber.org/zap"

	"github.com/gatewise/gatepass/internal/application/port"
)

// Notifier delivers approver notifications as Lark text messages.
// Implements port.Notifier.
type Notifier struct {
	sdk    *SDKClient
	logger *zap.Logger
}

// NewNotifier creates a new Lark notifier
func NewNotifier(sdk *SDKClient, logger *zap.Logger) *Notifier {
	return &Notifier{
		sdk:    sdk,
		logger: logger,
	}
}

// NotifyApprover sends a text message to the approver's Lark account.
// Approver IDs are expected to be Lark open IDs.
func (n *Notifier) NotifyApprover(ctx context.Context, approverID string, appointmentID int64, levelIndex int, notificationOnly bool) error {
	if approverID == "" {
		return fmt.Errorf("approverID cannot be empty")
	}

	text := fmt.Sprintf("Gate pass appointment #%d is awaiting your approval at level %d.", appointmentID, levelIndex)
	if notificationOnly {
		text = fmt.Sprintf("Gate pass appointment #%d was submitted. You are on the level %d notification list.", appointmentID, levelIndex)
	}

	content, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return fmt.Errorf("failed to marshal message content: %w", err)
	}

	req := larkIm.NewCreateMessageReqBuilder().
		ReceiveIdType("open_id").
		Body(larkIm.NewCreateMessageReqBodyBuilder().
			ReceiveId(approverID).
			MsgType("text").
			Content(string(content)).
			Build()).
		Build()

	resp, err := n.sdk.GetClient().Im.Message.Create(ctx, req)
	if err != nil {
		n.logger.Error("Failed to send notification",
			zap.String("approver_id", approverID),
			zap.Int64("appointment_id", appointmentID),
			zap.Error(err))
		return fmt.Errorf("failed to send notification: %w", err)
	}

	if !resp.Success() {
		n.logger.Error("API returned failure",
			zap.String("approver_id", approverID),
			zap.Int("code", resp.Code),
			zap.String("msg", resp.Msg))
		return fmt.Errorf("API error: code=%d, msg=%s", resp.Code, resp.Msg)
	}

	n.logger.Info("Notification sent",
		zap.String("approver_id", approverID),
		zap.Int64("appointment_id", appointmentID),
		zap.Int("level_index", levelIndex))
	return nil
}

// Verify interface compliance
var _ port.Notifier = (*Notifier)(nil)
