package delivery

import (
	"context"

	authdomain "repairhub-backend/internal/auth/domain"
	"repairhub-backend/internal/presence"
	"repairhub-backend/pkg/logger"
	"repairhub-backend/pkg/realtime"
)

const (
	frameChatOpen  = "chat_open"
	frameChatClose = "chat_close"
)

var log = logger.For("presence")

// BindRealtime keeps the presence store in sync with WebSocket clients: chat_open and chat_close
// frames update it, and closing the last connection of a user clears it.
func BindRealtime(hub *realtime.Hub, policy *presence.Policy) {
	hub.OnFrame(func(userID, userType string, f realtime.Frame) {
		ctx := context.Background()
		role := authdomain.Role(userType)

		var err error
		switch f.Type {
		case frameChatOpen:
			if f.ConversationID == "" {
				return
			}
			err = policy.Open(ctx, userID, role, f.ConversationID)
		case frameChatClose:
			err = policy.Close(ctx, userID, role, f.ConversationID)
		default:
			log.WithField("user_id", userID).Debugf("ignoring frame %q", f.Type)
			return
		}
		if err != nil {
			log.WithError(err).WithField("user_id", userID).Warn("failed to update chat presence")
		}
	})

	hub.OnDisconnect(func(userID, userType string) {
		if err := policy.Close(context.Background(), userID, authdomain.Role(userType), ""); err != nil {
			log.WithError(err).WithField("user_id", userID).Warn("failed to clear chat presence")
		}
	})
}
