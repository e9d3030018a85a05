package usecase

import (
	"context"
	"strings"
	"time"

	authdomain "repairhub-backend/internal/auth/domain"
	"repairhub-backend/internal/notification/domain"
	"repairhub-backend/internal/notification/repository"
	"repairhub-backend/pkg/apperr"
	"repairhub-backend/pkg/logger"
	"repairhub-backend/pkg/metrics"
)

var log = logger.For("notification")

// Suppressor decides whether a chat notification should stay silent. *presence.Policy implements it.
type Suppressor interface {
	ShouldSuppress(ctx context.Context, userID string, userType authdomain.Role, relatedID string) bool
}

// Publisher pushes in-app events to live sessions. *realtime.Hub implements it.
type Publisher interface {
	SendToUser(userID, userType, eventType string, data interface{}) int
}

const realtimeEvent = "notification"

type notificationUsecase struct {
	repo       repository.NotificationRepository
	dispatcher PushDispatcher
	suppressor Suppressor
	publisher  Publisher
	baseURL    string
	now        func() time.Time
}

// NewNotificationUsecase wires the writer. dispatcher, suppressor and publisher may be nil.
func NewNotificationUsecase(repo repository.NotificationRepository, dispatcher PushDispatcher, suppressor Suppressor, publisher Publisher, baseURL string) NotificationUsecase {
	return &notificationUsecase{
		repo:       repo,
		dispatcher: dispatcher,
		suppressor: suppressor,
		publisher:  publisher,
		baseURL:    strings.TrimRight(baseURL, "/"),
		now:        time.Now,
	}
}

func validate(n *domain.Notification) error {
	n.Title = strings.TrimSpace(n.Title)
	switch {
	case n.UserID == "":
		return apperr.WithMessage(apperr.ErrValidation, "userId is required")
	case !n.UserType.Valid():
		return apperr.WithMessage(apperr.ErrValidation, "userType must be customer, provider or admin")
	case n.Title == "":
		return apperr.WithMessage(apperr.ErrValidation, "title is required")
	}

	if n.Category == "" {
		n.Category = domain.CategoryBusiness
	}
	if !n.Category.Valid() {
		return apperr.WithMessage(apperr.ErrValidation, "category must be business or chat")
	}
	if n.Priority == "" {
		n.Priority = domain.PriorityNormal
	}
	if !n.Priority.Valid() {
		return apperr.WithMessage(apperr.ErrValidation, "priority must be low, normal or high")
	}
	if n.Type == "" {
		n.Type = string(n.Category)
	}
	return nil
}

// CreateNotification persists first, then decides on push, then publishes in-app.
// Only persistence failures are returned; delivery problems are reported in the result.
func (u *notificationUsecase) CreateNotification(ctx context.Context, n *domain.Notification, opts CreateOptions) (*CreateResult, error) {
	if err := validate(n); err != nil {
		return nil, err
	}
	n.ID = ""
	n.Read = false
	n.ReadAt = nil
	n.CreatedAt = u.now()

	if err := u.repo.Create(ctx, n); err != nil {
		return nil, apperr.Wrap(err, apperr.ErrDatabase, "failed to save notification")
	}
	metrics.NotificationCreated(string(n.Category))

	result := &CreateResult{Success: true, Notification: n}
	entry := log.WithField("notification_id", n.ID).WithField("user_id", n.UserID)

	if opts.SkipIfActiveChat && u.suppressor != nil && u.suppressor.ShouldSuppress(ctx, n.UserID, n.UserType, n.RelatedID) {
		result.Suppressed = true
		metrics.NotificationSuppressed()
		entry.Debug("recipient has the conversation open, push suppressed")
	}

	if !opts.SkipPush && !result.Suppressed && u.dispatcher != nil {
		dispatch, err := u.dispatcher.Send(ctx, n.UserID, n.UserType, u.pushMessage(n))
		if err != nil {
			entry.WithError(err).Warn("push dispatch failed")
		} else {
			result.Dispatch = dispatch
			result.FCMSent = dispatch.SuccessCount > 0
		}
	}

	if u.publisher != nil {
		u.publisher.SendToUser(n.UserID, string(n.UserType), realtimeEvent, map[string]interface{}{
			"notification": n,
			"toast":        !result.Suppressed,
		})
	}

	entry.WithField("fcm_sent", result.FCMSent).WithField("suppressed", result.Suppressed).Info("notification created")
	return result, nil
}

func (u *notificationUsecase) pushMessage(n *domain.Notification) domain.PushMessage {
	body := n.Message
	if n.Category == domain.CategoryChat && n.MessagePreview != "" {
		body = n.MessagePreview
	}
	data := map[string]string{
		"notificationId": n.ID,
		"type":           n.Type,
		"category":       string(n.Category),
	}
	if n.RelatedID != "" {
		data["relatedId"] = n.RelatedID
		data["relatedType"] = n.RelatedType
	}
	return domain.PushMessage{
		Title:        n.Title,
		Body:         body,
		Data:         data,
		ClickAction:  u.clickAction(n),
		HighPriority: n.Priority == domain.PriorityHigh,
	}
}

// clickAction returns the page a tapped push opens.
func (u *notificationUsecase) clickAction(n *domain.Notification) string {
	path := "/notifications"
	if n.RelatedID != "" {
		switch n.RelatedType {
		case "conversation":
			path = "/chat/" + n.RelatedID
		case "booking":
			path = "/bookings/" + n.RelatedID
		case "payment":
			path = "/payments/" + n.RelatedID
		case "commission":
			path = "/provider/commissions/" + n.RelatedID
		}
	}
	return u.baseURL + path
}

func (u *notificationUsecase) List(ctx context.Context, user *authdomain.User, filter domain.ListFilter) ([]domain.Notification, int64, error) {
	items, total, err := u.repo.List(ctx, user.ID, user.Role, filter)
	if err != nil {
		return nil, 0, apperr.Wrap(err, apperr.ErrDatabase, "failed to load notifications")
	}
	if items == nil {
		items = []domain.Notification{}
	}
	return items, total, nil
}

func (u *notificationUsecase) UnreadCount(ctx context.Context, user *authdomain.User) (int64, error) {
	n, err := u.repo.UnreadCount(ctx, user.ID, user.Role)
	if err != nil {
		return 0, apperr.Wrap(err, apperr.ErrDatabase, "failed to count notifications")
	}
	return n, nil
}

func (u *notificationUsecase) MarkRead(ctx context.Context, user *authdomain.User, id string) error {
	ok, err := u.repo.MarkRead(ctx, user.ID, user.Role, id, u.now())
	if err != nil {
		return apperr.Wrap(err, apperr.ErrDatabase, "failed to update notification")
	}
	if !ok {
		return apperr.WithMessage(apperr.ErrNotFound, "notification not found")
	}
	return nil
}

func (u *notificationUsecase) MarkAllRead(ctx context.Context, user *authdomain.User) (int64, error) {
	n, err := u.repo.MarkAllRead(ctx, user.ID, user.Role, u.now())
	if err != nil {
		return 0, apperr.Wrap(err, apperr.ErrDatabase, "failed to update notifications")
	}
	return n, nil
}

func (u *notificationUsecase) SendPush(ctx context.Context, userID string, userType authdomain.Role, msg domain.PushMessage) (*domain.DispatchResult, error) {
	if u.dispatcher == nil {
		return nil, apperr.WithMessage(apperr.ErrUnavailable, "push notifications are not configured")
	}
	return u.dispatcher.Send(ctx, userID, userType, msg)
}
