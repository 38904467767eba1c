package server

import (
	"context"

	"github.com/FreePeak/openapi-mcp-server/internal/domain"
	"github.com/FreePeak/openapi-mcp-server/internal/infrastructure/logging"
)

// NotificationSender queues notifications on session message queues. GET
// streams drain them.
type NotificationSender struct {
	sessions *SessionManager
	logger   *logging.Logger
}

// NewNotificationSender creates a new NotificationSender.
func NewNotificationSender(sessions *SessionManager, logger *logging.Logger) *NotificationSender {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &NotificationSender{
		sessions: sessions,
		logger:   logger,
	}
}

// SendNotification queues a notification for a specific session.
func (n *NotificationSender) SendNotification(ctx context.Context, sessionID string, notification *domain.Notification) error {
	session, err := n.sessions.Peek(sessionID)
	if err != nil {
		return err
	}
	n.enqueue(session, notification)
	return nil
}

// BroadcastNotification queues a notification for every live session.
func (n *NotificationSender) BroadcastNotification(ctx context.Context, notification *domain.Notification) error {
	for _, session := range n.sessions.Sessions() {
		if err := ctx.Err(); err != nil {
			return err
		}
		n.enqueue(session, notification)
	}
	return nil
}

func (n *NotificationSender) enqueue(session *Session, notification *domain.Notification) {
	if !session.Enqueue(notification.ToJSONRPC()) {
		n.logger.Warn("Session queue full, oldest message dropped", logging.Fields{
			"session_id": session.ID(),
			"method":     notification.Method,
		})
	}
}
