package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	authdelivery "repairhub-backend/internal/auth/delivery"
	authdomain "repairhub-backend/internal/auth/domain"
	"repairhub-backend/internal/notification/domain"
	"repairhub-backend/internal/notification/repository"
	"repairhub-backend/internal/notification/usecase"
	"repairhub-backend/internal/presence"
	pushdomain "repairhub-backend/internal/pushtoken/domain"
	pushrepo "repairhub-backend/internal/pushtoken/repository"
	"repairhub-backend/pkg/fcm"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type stubSender struct {
	dead map[string]bool
}

func (s *stubSender) SendToDevice(_ context.Context, token string, _ fcm.NotificationData) (string, error) {
	if s.dead[token] {
		return "", fcm.ErrTokenNotRegistered
	}
	return "projects/test/messages/" + token, nil
}

type testEnv struct {
	router *gin.Engine
	tokens pushrepo.PushTokenRepository
	policy *presence.Policy
	sender *stubSender
}

func newTestEnv(t *testing.T, withPush bool) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Notification{}, &pushdomain.PushToken{}))

	env := &testEnv{
		tokens: pushrepo.NewPushTokenRepository(db),
		policy: presence.NewPolicy(presence.NewMemoryStore(), time.Minute),
		sender: &stubSender{dead: map[string]bool{}},
	}
	var dispatcher usecase.PushDispatcher
	if withPush {
		dispatcher = usecase.NewDispatcher(env.sender, env.tokens)
	}
	uc := usecase.NewNotificationUsecase(repository.NewNotificationRepository(db), dispatcher, env.policy, nil, "https://app.repairhub.test")
	h := NewNotificationHandler(uc)

	users := map[string]*authdomain.User{
		"u1":    {ID: "u1", Role: authdomain.RoleCustomer},
		"u2":    {ID: "u2", Role: authdomain.RoleCustomer},
		"admin": {ID: "admin", Role: authdomain.RoleAdmin},
	}
	r := gin.New()
	api := r.Group("/api", func(c *gin.Context) {
		authdelivery.SetCurrentUser(c, users[c.GetHeader("X-User")])
		c.Next()
	})
	admin := authdelivery.RequireRole(authdomain.RoleAdmin)

	n := api.Group("/notifications")
	n.GET("", h.List)
	n.POST("", admin, h.Create)
	n.GET("/unread-count", h.UnreadCount)
	n.PATCH("/read-all", h.MarkAllRead)
	n.PATCH("/:id/read", h.MarkRead)
	n.POST("/events", admin, h.IngestEvent)
	api.POST("/fcm/send", admin, h.SendPush)

	env.router = r
	return env
}

func (e *testEnv) do(t *testing.T, method, path, user string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User", user)
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return w, out
}

func (e *testEnv) register(t *testing.T, userID, token string) {
	t.Helper()
	_, err := e.tokens.SaveToken(context.Background(), &pushdomain.PushToken{Token: token, UserID: userID, UserType: authdomain.RoleCustomer})
	require.NoError(t, err)
}

func TestCreateAndReadFeed(t *testing.T) {
	env := newTestEnv(t, true)
	env.register(t, "u1", "tok-u1-phone")

	w, body := env.do(t, http.MethodPost, "/api/notifications", "admin", map[string]any{
		"userId":   "u1",
		"userType": "customer",
		"type":     "booking_accepted",
		"title":    "Booking accepted",
		"message":  "Your repair has been accepted.",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, true, body["success"])
	assert.Equal(t, true, body["fcmSent"])
	id := body["notification"].(map[string]any)["id"].(string)

	w, body = env.do(t, http.MethodGet, "/api/notifications/unread-count", "u1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, body["count"])

	w, body = env.do(t, http.MethodGet, "/api/notifications?unreadOnly=true", "u1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, body["total"])

	w, _ = env.do(t, http.MethodPatch, "/api/notifications/"+id+"/read", "u2", nil)
	assert.Equal(t, http.StatusNotFound, w.Code, "other users cannot mark it")

	w, _ = env.do(t, http.MethodPatch, "/api/notifications/"+id+"/read", "u1", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	_, body = env.do(t, http.MethodGet, "/api/notifications/unread-count", "u1", nil)
	assert.EqualValues(t, 0, body["count"])
}

func TestCreateRequiresAdmin(t *testing.T) {
	env := newTestEnv(t, true)
	w, body := env.do(t, http.MethodPost, "/api/notifications", "u1", map[string]any{
		"userId": "u2", "userType": "customer", "title": "spam",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, false, body["success"])
}

func TestCreateValidation(t *testing.T) {
	env := newTestEnv(t, true)
	w, body := env.do(t, http.MethodPost, "/api/notifications", "admin", map[string]any{
		"userId": "u1", "userType": "guest", "title": "x",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, false, body["success"])
	assert.NotEmpty(t, body["error"])
}

func TestListRejectsBadQuery(t *testing.T) {
	env := newTestEnv(t, true)
	w, _ := env.do(t, http.MethodGet, "/api/notifications?limit=500", "u1", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMarkAllRead(t *testing.T) {
	env := newTestEnv(t, false)
	for i := 0; i < 2; i++ {
		w, _ := env.do(t, http.MethodPost, "/api/notifications", "admin", map[string]any{
			"userId": "u1", "userType": "customer", "title": fmt.Sprintf("n%d", i), "skipPush": true,
		})
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w, body := env.do(t, http.MethodPatch, "/api/notifications/read-all", "u1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 2, body["updated"])
}

func TestIngestChatEventSuppressedForOpenConversation(t *testing.T) {
	env := newTestEnv(t, true)
	env.register(t, "u1", "tok-u1-laptop")
	require.NoError(t, env.policy.Open(context.Background(), "u1", authdomain.RoleCustomer, "conv-5"))

	w, body := env.do(t, http.MethodPost, "/api/notifications/events", "admin", map[string]any{
		"kind":           "chat_message",
		"conversationId": "conv-5",
		"recipientId":    "u1",
		"recipientType":  "customer",
		"senderId":       "p1",
		"senderName":     "Fixit Labs",
		"text":           "Your phone is ready",
	})
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())
	assert.Equal(t, true, body["suppressed"])
	assert.Equal(t, false, body["fcmSent"])
	assert.Nil(t, body["dispatch"])

	_, body = env.do(t, http.MethodGet, "/api/notifications/unread-count", "u1", nil)
	assert.EqualValues(t, 1, body["count"], "stored even when suppressed")
}

func TestIngestRejectsUnknownKind(t *testing.T) {
	env := newTestEnv(t, true)
	w, body := env.do(t, http.MethodPost, "/api/notifications/events", "admin", map[string]any{"kind": "refund"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "validation_error", body["code"])
}

func TestSendPushReportsAndCleansUp(t *testing.T) {
	env := newTestEnv(t, true)
	env.register(t, "u1", "tok-alive-1")
	env.register(t, "u1", "tok-dead-22")
	env.sender.dead["tok-dead-22"] = true

	w, body := env.do(t, http.MethodPost, "/api/fcm/send", "admin", map[string]any{
		"userId": "u1", "userType": "customer", "title": "Test", "body": "Hello",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.EqualValues(t, 1, body["successCount"])
	assert.EqualValues(t, 1, body["failureCount"])

	active, err := env.tokens.GetActiveTokens(context.Background(), "u1", authdomain.RoleCustomer)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "tok-alive-1", active[0].Token)
}

func TestSendPushUnavailableWithoutFCM(t *testing.T) {
	env := newTestEnv(t, false)
	w, body := env.do(t, http.MethodPost, "/api/fcm/send", "admin", map[string]any{
		"userId": "u1", "userType": "customer", "title": "Test", "body": "Hello",
	})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, false, body["success"])
}
