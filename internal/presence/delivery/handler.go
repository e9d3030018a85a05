package delivery

import (
	"net/http"

	authdelivery "repairhub-backend/internal/auth/delivery"
	"repairhub-backend/internal/presence"
	"repairhub-backend/pkg/apperr"
	"repairhub-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type activeChatRequest struct {
	ConversationID string `json:"conversationId" binding:"required,max=128"`
}

type clearChatRequest struct {
	ConversationID string `json:"conversationId" binding:"max=128"`
}

// PresenceHandler serves /api/chat/active
type PresenceHandler struct {
	policy *presence.Policy
}

func NewPresenceHandler(policy *presence.Policy) *PresenceHandler {
	return &PresenceHandler{policy: policy}
}

// GetActive GET /api/chat/active
func (h *PresenceHandler) GetActive(c *gin.Context) {
	user := authdelivery.CurrentUser(c)
	active, err := h.policy.Active(c.Request.Context(), user.ID, user.Role)
	if err != nil {
		response.Error(c, apperr.Wrap(err, apperr.ErrUnavailable, "presence store unavailable"))
		return
	}
	response.OK(c, http.StatusOK, gin.H{"conversationId": active})
}

// SetActive PUT /api/chat/active; clients repeat it as a heartbeat.
func (h *PresenceHandler) SetActive(c *gin.Context) {
	var req activeChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	user := authdelivery.CurrentUser(c)
	if err := h.policy.Open(c.Request.Context(), user.ID, user.Role, req.ConversationID); err != nil {
		response.Error(c, apperr.Wrap(err, apperr.ErrUnavailable, "presence store unavailable"))
		return
	}
	response.OK(c, http.StatusOK, gin.H{
		"conversationId": req.ConversationID,
		"ttlSeconds":     int(h.policy.TTL().Seconds()),
	})
}

// ClearActive DELETE /api/chat/active
func (h *PresenceHandler) ClearActive(c *gin.Context) {
	var req clearChatRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BindError(c, err)
			return
		}
	}

	user := authdelivery.CurrentUser(c)
	if err := h.policy.Close(c.Request.Context(), user.ID, user.Role, req.ConversationID); err != nil {
		response.Error(c, apperr.Wrap(err, apperr.ErrUnavailable, "presence store unavailable"))
		return
	}
	response.OK(c, http.StatusOK, nil)
}
