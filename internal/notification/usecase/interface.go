package usecase

import (
	"context"

	authdomain "repairhub-backend/internal/auth/domain"
	"repairhub-backend/internal/notification/domain"
)

// CreateOptions controls delivery of a new notification.
type CreateOptions struct {
	// SkipIfActiveChat withholds the push when the recipient has the related conversation open.
	SkipIfActiveChat bool
	// SkipPush stores and publishes in-app only.
	SkipPush bool
}

// CreateResult describes what CreateNotification did beyond persisting.
type CreateResult struct {
	Success      bool                   `json:"success"`
	Notification *domain.Notification   `json:"notification"`
	FCMSent      bool                   `json:"fcmSent"`
	Suppressed   bool                   `json:"suppressed"`
	Dispatch     *domain.DispatchResult `json:"dispatch,omitempty"`
}

// NotificationUsecase defines the interface for notification business logic
type NotificationUsecase interface {
	CreateNotification(ctx context.Context, n *domain.Notification, opts CreateOptions) (*CreateResult, error)
	HandleEvent(ctx context.Context, ev domain.Event) (*CreateResult, error)

	List(ctx context.Context, user *authdomain.User, filter domain.ListFilter) ([]domain.Notification, int64, error)
	UnreadCount(ctx context.Context, user *authdomain.User) (int64, error)
	MarkRead(ctx context.Context, user *authdomain.User, id string) error
	MarkAllRead(ctx context.Context, user *authdomain.User) (int64, error)

	// SendPush dispatches without storing a notification. Fails with ErrUnavailable when push is not configured.
	SendPush(ctx context.Context, userID string, userType authdomain.Role, msg domain.PushMessage) (*domain.DispatchResult, error)
}
