package repository

import (
	"context"
	"time"

	authdomain "repairhub-backend/internal/auth/domain"
	"repairhub-backend/internal/notification/domain"
)

// NotificationRepository defines the interface for notification data access
type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) error

	// List returns one page of the recipient's feed, newest first, and the unpaged total.
	List(ctx context.Context, userID string, userType authdomain.Role, filter domain.ListFilter) ([]domain.Notification, int64, error)

	UnreadCount(ctx context.Context, userID string, userType authdomain.Role) (int64, error)

	// MarkRead flips one notification owned by the recipient; reports false when no such notification exists.
	MarkRead(ctx context.Context, userID string, userType authdomain.Role, id string, at time.Time) (bool, error)

	MarkAllRead(ctx context.Context, userID string, userType authdomain.Role, at time.Time) (int64, error)
}
