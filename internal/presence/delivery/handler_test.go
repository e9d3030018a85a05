package delivery

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	authdelivery "repairhub-backend/internal/auth/delivery"
	authdomain "repairhub-backend/internal/auth/domain"
	"repairhub-backend/internal/presence"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewPresenceHandler(presence.NewPolicy(presence.NewMemoryStore(), 90*time.Second))

	r := gin.New()
	g := r.Group("/api/chat", func(c *gin.Context) {
		authdelivery.SetCurrentUser(c, &authdomain.User{ID: "u1", Role: authdomain.RoleCustomer})
		c.Next()
	})
	g.GET("/active", h.GetActive)
	g.PUT("/active", h.SetActive)
	g.DELETE("/active", h.ClearActive)
	return r
}

func call(t *testing.T, r *gin.Engine, method, body string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, "/api/chat/active", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return w.Code, out
}

func TestActiveChatLifecycle(t *testing.T) {
	r := newRouter()

	code, body := call(t, r, http.MethodPut, `{"conversationId":"booking-42"}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(90), body["ttlSeconds"])

	_, body = call(t, r, http.MethodGet, "")
	assert.Equal(t, "booking-42", body["conversationId"])

	code, _ = call(t, r, http.MethodDelete, "")
	require.Equal(t, http.StatusOK, code)

	_, body = call(t, r, http.MethodGet, "")
	assert.Equal(t, "", body["conversationId"])
}

func TestSetActiveRequiresConversation(t *testing.T) {
	code, body := call(t, newRouter(), http.MethodPut, `{}`)

	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, false, body["success"])
}

func TestClearOnlyMatchingConversation(t *testing.T) {
	r := newRouter()

	call(t, r, http.MethodPut, `{"conversationId":"c-new"}`)
	code, _ := call(t, r, http.MethodDelete, `{"conversationId":"c-old"}`)
	require.Equal(t, http.StatusOK, code)

	_, body := call(t, r, http.MethodGet, "")
	assert.Equal(t, "c-new", body["conversationId"])
}
