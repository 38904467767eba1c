package server

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FreePeak/openapi-mcp-server/internal/domain"
	"github.com/FreePeak/openapi-mcp-server/internal/domain/shared"
)

func TestNotificationSenderSend(t *testing.T) {
	manager := NewSessionManager()
	session := manager.Create()
	sender := NewNotificationSender(manager, nil)

	err := sender.SendNotification(context.Background(), session.ID(), &domain.Notification{
		Method: shared.NotificationResourcesListChanged,
	})
	require.NoError(t, err)

	msg, ok, err := session.Next(context.Background(), time.Millisecond)
	require.NoError(t, err)
	require.True(t, ok)

	notification, isNotification := msg.(*shared.JSONRPCNotification)
	require.True(t, isNotification)
	assert.Equal(t, shared.NotificationResourcesListChanged, notification.Method)
	assert.Equal(t, "2.0", notification.JSONRPC)
}

func TestNotificationSenderUnknownSession(t *testing.T) {
	sender := NewNotificationSender(NewSessionManager(), nil)

	err := sender.SendNotification(context.Background(), "nope", &domain.Notification{Method: "x"})
	var notFound *domain.SessionNotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestNotificationSenderBroadcast(t *testing.T) {
	manager := NewSessionManager()
	a := manager.Create()
	b := manager.Create()
	sender := NewNotificationSender(manager, nil)

	err := sender.BroadcastNotification(context.Background(), &domain.Notification{
		Method: shared.NotificationResourcesListChanged,
		Params: map[string]interface{}{"reason": "reload"},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, a.Pending())
	assert.Equal(t, 1, b.Pending())
}

func TestNotificationSenderBroadcastCancelled(t *testing.T) {
	manager := NewSessionManager()
	session := manager.Create()
	sender := NewNotificationSender(manager, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := sender.BroadcastNotification(ctx, &domain.Notification{Method: "x"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, session.Pending())
}
