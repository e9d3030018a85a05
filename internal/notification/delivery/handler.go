package delivery

import (
	"net/http"

	authdelivery "repairhub-backend/internal/auth/delivery"
	"repairhub-backend/internal/notification/dto"
	"repairhub-backend/internal/notification/usecase"
	"repairhub-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

// NotificationHandler serves the in-app feed, admin creation, event ingestion and push sends.
type NotificationHandler struct {
	notificationUsecase usecase.NotificationUsecase
}

func NewNotificationHandler(notificationUsecase usecase.NotificationUsecase) *NotificationHandler {
	return &NotificationHandler{notificationUsecase: notificationUsecase}
}

// List GET /api/notifications
func (h *NotificationHandler) List(c *gin.Context) {
	var q dto.ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BindError(c, err)
		return
	}

	items, total, err := h.notificationUsecase.List(c.Request.Context(), authdelivery.CurrentUser(c), q.Filter())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusOK, gin.H{"notifications": items, "total": total})
}

// Create POST /api/notifications
func (h *NotificationHandler) Create(c *gin.Context) {
	var req dto.CreateNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	res, err := h.notificationUsecase.CreateNotification(c.Request.Context(), req.Notification(), usecase.CreateOptions{
		SkipIfActiveChat: req.SkipIfActiveChat,
		SkipPush:         req.SkipPush,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusCreated, createBody(res))
}

// UnreadCount GET /api/notifications/unread-count
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	n, err := h.notificationUsecase.UnreadCount(c.Request.Context(), authdelivery.CurrentUser(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusOK, gin.H{"count": n})
}

// MarkRead PATCH /api/notifications/:id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	if err := h.notificationUsecase.MarkRead(c.Request.Context(), authdelivery.CurrentUser(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusOK, nil)
}

// MarkAllRead PATCH /api/notifications/read-all
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	n, err := h.notificationUsecase.MarkAllRead(c.Request.Context(), authdelivery.CurrentUser(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusOK, gin.H{"updated": n})
}

// IngestEvent POST /api/notifications/events
func (h *NotificationHandler) IngestEvent(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil {
		response.BindError(c, err)
		return
	}
	ev, err := usecase.DecodeEvent(raw)
	if err != nil {
		response.Error(c, err)
		return
	}

	res, err := h.notificationUsecase.HandleEvent(c.Request.Context(), ev)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusAccepted, createBody(res))
}

// SendPush POST /api/fcm/send
func (h *NotificationHandler) SendPush(c *gin.Context) {
	var req dto.SendPushRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	res, err := h.notificationUsecase.SendPush(c.Request.Context(), req.UserID, req.UserType, req.Message())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusOK, gin.H{
		"successCount": res.SuccessCount,
		"failureCount": res.FailureCount,
		"results":      res.Results,
	})
}

func createBody(res *usecase.CreateResult) gin.H {
	body := gin.H{
		"notification": res.Notification,
		"fcmSent":      res.FCMSent,
		"suppressed":   res.Suppressed,
	}
	if res.Dispatch != nil {
		body["dispatch"] = res.Dispatch
	}
	return body
}
