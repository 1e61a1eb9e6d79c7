package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatewise/gatepass/internal/application/dispatcher"
	"github.com/gatewise/gatepass/internal/domain/event"
)

func levelActivated(approverID string, levelIndex int) *event.Event {
	return event.New(event.TypeLevelActivated, 1, 1, map[string]interface{}{
		"approver_id":       approverID,
		"level_index":       levelIndex,
		"notification_only": false,
	})
}

func TestNotificationService_NotifiesApprover(t *testing.T) {
	notifier := &fakeNotifier{}
	events := dispatcher.New(dispatcher.WithLogger(nopLogger{}))
	t.Cleanup(func() { events.Close() })

	NewNotificationService(notifier, nopLogger{}).Register(events)

	require.NoError(t, events.Dispatch(context.Background(), levelActivated("U2", 2)))
	assert.Equal(t, []string{"U2"}, notifier.notified)
}

func TestNotificationService_DeliveryFailureDoesNotPropagate(t *testing.T) {
	notifier := &fakeNotifier{err: errors.New("lark unavailable")}
	events := dispatcher.New(dispatcher.WithLogger(nopLogger{}))
	t.Cleanup(func() { events.Close() })

	NewNotificationService(notifier, nopLogger{}).Register(events)

	// Sync dispatch so the handler result is observable: it must be nil.
	assert.NoError(t, events.Dispatch(context.Background(), levelActivated("U2", 2)))
	assert.Equal(t, []string{"U2"}, notifier.notified)
}
