package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	authdomain "repairhub-backend/internal/auth/domain"
	"repairhub-backend/internal/notification/domain"
	"repairhub-backend/internal/presence"
	"repairhub-backend/pkg/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	created   []*domain.Notification
	createErr error
	markRead  bool
}

func (f *fakeRepo) Create(_ context.Context, n *domain.Notification) error {
	if f.createErr != nil {
		return f.createErr
	}
	n.ID = "n-1"
	f.created = append(f.created, n)
	return nil
}

func (f *fakeRepo) List(context.Context, string, authdomain.Role, domain.ListFilter) ([]domain.Notification, int64, error) {
	return nil, 0, nil
}

func (f *fakeRepo) UnreadCount(context.Context, string, authdomain.Role) (int64, error) {
	return 0, nil
}

func (f *fakeRepo) MarkRead(context.Context, string, authdomain.Role, string, time.Time) (bool, error) {
	return f.markRead, nil
}

func (f *fakeRepo) MarkAllRead(context.Context, string, authdomain.Role, time.Time) (int64, error) {
	return 0, nil
}

type fakeDispatcher struct {
	calls  int
	userID string
	msg    domain.PushMessage
	result *domain.DispatchResult
	err    error
}

func (f *fakeDispatcher) Send(_ context.Context, userID string, _ authdomain.Role, msg domain.PushMessage) (*domain.DispatchResult, error) {
	f.calls++
	f.userID = userID
	f.msg = msg
	if f.err != nil {
		return nil, f.err
	}
	if f.result != nil {
		return f.result, nil
	}
	return &domain.DispatchResult{SuccessCount: 1}, nil
}

type published struct {
	userID, userType, event string
	data                    map[string]interface{}
}

type fakePublisher struct {
	events []published
}

func (f *fakePublisher) SendToUser(userID, userType, eventType string, data interface{}) int {
	f.events = append(f.events, published{userID, userType, eventType, data.(map[string]interface{})})
	return 1
}

type writerEnv struct {
	repo       *fakeRepo
	dispatcher *fakeDispatcher
	publisher  *fakePublisher
	policy     *presence.Policy
	uc         NotificationUsecase
}

func newWriterEnv(t *testing.T) *writerEnv {
	t.Helper()
	env := &writerEnv{
		repo:       &fakeRepo{},
		dispatcher: &fakeDispatcher{},
		publisher:  &fakePublisher{},
		policy:     presence.NewPolicy(presence.NewMemoryStore(), time.Minute),
	}
	env.uc = NewNotificationUsecase(env.repo, env.dispatcher, env.policy, env.publisher, "https://app.repairhub.test/")
	return env
}

func chatFor(userID, conversation string) *domain.Notification {
	return &domain.Notification{
		Type:           "chat_message",
		Category:       domain.CategoryChat,
		Title:          "New message from Asha",
		Message:        "Is the screen covered?",
		MessagePreview: "Is the screen covered?",
		UserID:         userID,
		UserType:       authdomain.RoleCustomer,
		RelatedID:      conversation,
		RelatedType:    "conversation",
	}
}

func TestCreate_SkipIfActiveChatStoresWithoutDispatch(t *testing.T) {
	env := newWriterEnv(t)
	ctx := context.Background()
	require.NoError(t, env.policy.Open(ctx, "u1", authdomain.RoleCustomer, "conv-9"))

	res, err := env.uc.CreateNotification(ctx, chatFor("u1", "conv-9"), CreateOptions{SkipIfActiveChat: true})
	require.NoError(t, err)

	assert.True(t, res.Success)
	assert.True(t, res.Suppressed)
	assert.False(t, res.FCMSent)
	assert.Nil(t, res.Dispatch)
	assert.Len(t, env.repo.created, 1, "notification is still stored")
	assert.Zero(t, env.dispatcher.calls)

	require.Len(t, env.publisher.events, 1)
	assert.Equal(t, false, env.publisher.events[0].data["toast"])
}

func TestCreate_OtherConversationStillPushes(t *testing.T) {
	env := newWriterEnv(t)
	ctx := context.Background()
	require.NoError(t, env.policy.Open(ctx, "u1", authdomain.RoleCustomer, "conv-1"))

	res, err := env.uc.CreateNotification(ctx, chatFor("u1", "conv-2"), CreateOptions{SkipIfActiveChat: true})
	require.NoError(t, err)
	assert.False(t, res.Suppressed)
	assert.True(t, res.FCMSent)
	assert.Equal(t, 1, env.dispatcher.calls)
	assert.Equal(t, "Is the screen covered?", env.dispatcher.msg.Body)
	assert.Equal(t, "https://app.repairhub.test/chat/conv-2", env.dispatcher.msg.ClickAction)
	assert.Equal(t, true, env.publisher.events[0].data["toast"])
}

func TestCreate_WithoutSkipFlagIgnoresPresence(t *testing.T) {
	env := newWriterEnv(t)
	ctx := context.Background()
	require.NoError(t, env.policy.Open(ctx, "u1", authdomain.RoleCustomer, "conv-9"))

	res, err := env.uc.CreateNotification(ctx, chatFor("u1", "conv-9"), CreateOptions{})
	require.NoError(t, err)
	assert.False(t, res.Suppressed)
	assert.Equal(t, 1, env.dispatcher.calls)
}

func TestCreate_SkipPush(t *testing.T) {
	env := newWriterEnv(t)
	res, err := env.uc.CreateNotification(context.Background(), &domain.Notification{
		Title: "Welcome", UserID: "u1", UserType: authdomain.RoleCustomer,
	}, CreateOptions{SkipPush: true})
	require.NoError(t, err)
	assert.False(t, res.FCMSent)
	assert.Zero(t, env.dispatcher.calls)
	assert.Len(t, env.publisher.events, 1)
}

func TestCreate_Defaults(t *testing.T) {
	env := newWriterEnv(t)
	res, err := env.uc.CreateNotification(context.Background(), &domain.Notification{
		Title: "  Booking accepted ", UserID: "u1", UserType: authdomain.RoleCustomer, Read: true,
	}, CreateOptions{})
	require.NoError(t, err)

	n := res.Notification
	assert.Equal(t, "Booking accepted", n.Title)
	assert.Equal(t, domain.CategoryBusiness, n.Category)
	assert.Equal(t, domain.PriorityNormal, n.Priority)
	assert.Equal(t, "business", n.Type)
	assert.False(t, n.Read)
	assert.False(t, n.CreatedAt.IsZero())
	assert.Equal(t, "https://app.repairhub.test/notifications", env.dispatcher.msg.ClickAction)
	assert.Equal(t, "n-1", env.dispatcher.msg.Data["notificationId"])
}

func TestCreate_HighPriority(t *testing.T) {
	env := newWriterEnv(t)
	_, err := env.uc.CreateNotification(context.Background(), &domain.Notification{
		Title: "Commission payment due", UserID: "p1", UserType: authdomain.RoleProvider, Priority: domain.PriorityHigh,
	}, CreateOptions{})
	require.NoError(t, err)
	assert.True(t, env.dispatcher.msg.HighPriority)
}

func TestCreate_Validation(t *testing.T) {
	env := newWriterEnv(t)
	cases := map[string]*domain.Notification{
		"missing user":  {Title: "x", UserType: authdomain.RoleCustomer},
		"bad user type": {Title: "x", UserID: "u1", UserType: "guest"},
		"missing title": {Title: " ", UserID: "u1", UserType: authdomain.RoleCustomer},
		"bad category":  {Title: "x", UserID: "u1", UserType: authdomain.RoleCustomer, Category: "promo"},
		"bad priority":  {Title: "x", UserID: "u1", UserType: authdomain.RoleCustomer, Priority: "urgent"},
	}
	for name, n := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := env.uc.CreateNotification(context.Background(), n, CreateOptions{})
			assert.ErrorIs(t, err, apperr.ErrValidation)
		})
	}
	assert.Empty(t, env.repo.created)
}

func TestCreate_PersistFailureIsReturned(t *testing.T) {
	env := newWriterEnv(t)
	env.repo.createErr = errors.New("disk full")

	_, err := env.uc.CreateNotification(context.Background(), chatFor("u1", "c"), CreateOptions{})
	assert.ErrorIs(t, err, apperr.ErrDatabase)
	assert.Zero(t, env.dispatcher.calls)
	assert.Empty(t, env.publisher.events)
}

func TestCreate_DispatchFailureDoesNotFailCreate(t *testing.T) {
	env := newWriterEnv(t)
	env.dispatcher.err = errors.New("registry down")

	res, err := env.uc.CreateNotification(context.Background(), chatFor("u1", "c"), CreateOptions{})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.False(t, res.FCMSent)
}

func TestCreate_FCMSentOnlyWithSuccesses(t *testing.T) {
	env := newWriterEnv(t)
	env.dispatcher.result = &domain.DispatchResult{FailureCount: 2}

	res, err := env.uc.CreateNotification(context.Background(), chatFor("u1", "c"), CreateOptions{})
	require.NoError(t, err)
	assert.False(t, res.FCMSent)
	assert.Equal(t, 2, res.Dispatch.FailureCount)
}

func TestCreate_NoDispatcherConfigured(t *testing.T) {
	repo := &fakeRepo{}
	uc := NewNotificationUsecase(repo, nil, nil, nil, "")

	res, err := uc.CreateNotification(context.Background(), chatFor("u1", "c"), CreateOptions{SkipIfActiveChat: true})
	require.NoError(t, err)
	assert.False(t, res.FCMSent)
	assert.Len(t, repo.created, 1)

	_, err = uc.SendPush(context.Background(), "u1", authdomain.RoleCustomer, domain.PushMessage{Title: "x"})
	assert.ErrorIs(t, err, apperr.ErrUnavailable)
}

func TestMarkRead_NotOwnedIsNotFound(t *testing.T) {
	env := newWriterEnv(t)
	err := env.uc.MarkRead(context.Background(), &authdomain.User{ID: "u2", Role: authdomain.RoleCustomer}, "n-1")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	env.repo.markRead = true
	assert.NoError(t, env.uc.MarkRead(context.Background(), &authdomain.User{ID: "u1", Role: authdomain.RoleCustomer}, "n-1"))
}
