package dto

import (
	authdomain "repairhub-backend/internal/auth/domain"
	"repairhub-backend/internal/notification/domain"
)

type CreateNotificationRequest struct {
	UserID           string          `json:"userId" binding:"required"`
	UserType         authdomain.Role `json:"userType" binding:"required,oneof=customer provider admin"`
	Type             string          `json:"type" binding:"max=64"`
	Category         domain.Category `json:"category" binding:"omitempty,oneof=business chat"`
	Priority         domain.Priority `json:"priority" binding:"omitempty,oneof=low normal high"`
	Title            string          `json:"title" binding:"required,max=200"`
	Message          string          `json:"message" binding:"max=2000"`
	RelatedID        string          `json:"relatedId"`
	RelatedType      string          `json:"relatedType"`
	SenderID         string          `json:"senderId"`
	SenderName       string          `json:"senderName"`
	MessagePreview   string          `json:"messagePreview"`
	SkipIfActiveChat bool            `json:"skipIfActiveChat"`
	SkipPush         bool            `json:"skipPush"`
}

func (r *CreateNotificationRequest) Notification() *domain.Notification {
	return &domain.Notification{
		Type:           r.Type,
		Category:       r.Category,
		Priority:       r.Priority,
		Title:          r.Title,
		Message:        r.Message,
		UserID:         r.UserID,
		UserType:       r.UserType,
		RelatedID:      r.RelatedID,
		RelatedType:    r.RelatedType,
		SenderID:       r.SenderID,
		SenderName:     r.SenderName,
		MessagePreview: r.MessagePreview,
	}
}

// ListQuery is bound from the query string of GET /api/notifications.
type ListQuery struct {
	UnreadOnly bool            `form:"unreadOnly"`
	Category   domain.Category `form:"category" binding:"omitempty,oneof=business chat"`
	Limit      int             `form:"limit" binding:"omitempty,min=1,max=100"`
	Offset     int             `form:"offset" binding:"omitempty,min=0"`
}

func (q ListQuery) Filter() domain.ListFilter {
	return domain.ListFilter{UnreadOnly: q.UnreadOnly, Category: q.Category, Limit: q.Limit, Offset: q.Offset}
}

// SendPushRequest is the admin test/broadcast payload for POST /api/fcm/send.
type SendPushRequest struct {
	UserID       string            `json:"userId" binding:"required"`
	UserType     authdomain.Role   `json:"userType" binding:"required,oneof=customer provider admin"`
	Title        string            `json:"title" binding:"required,max=200"`
	Body         string            `json:"body" binding:"required,max=2000"`
	Data         map[string]string `json:"data"`
	ClickAction  string            `json:"clickAction" binding:"omitempty,url"`
	HighPriority bool              `json:"highPriority"`
}

func (r *SendPushRequest) Message() domain.PushMessage {
	return domain.PushMessage{
		Title:        r.Title,
		Body:         r.Body,
		Data:         r.Data,
		ClickAction:  r.ClickAction,
		HighPriority: r.HighPriority,
	}
}
