package domain

import (
	"time"

	authdomain "repairhub-backend/internal/auth/domain"
)

// Category separates marketplace events from chat traffic; only chat is subject to suppression.
type Category string

const (
	CategoryBusiness Category = "business"
	CategoryChat     Category = "chat"
)

func (c Category) Valid() bool {
	return c == CategoryBusiness || c == CategoryChat
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityNormal, PriorityHigh:
		return true
	}
	return false
}

// Notification is a durable in-app notification. Created once; only Read and ReadAt change afterwards.
type Notification struct {
	ID             string          `json:"id" gorm:"primaryKey"`
	Type           string          `json:"type" gorm:"type:varchar(64);not null"`
	Category       Category        `json:"category" gorm:"type:varchar(16);index;not null"`
	Priority       Priority        `json:"priority" gorm:"type:varchar(16);not null"`
	Title          string          `json:"title" gorm:"not null"`
	Message        string          `json:"message"`
	UserID         string          `json:"userId" gorm:"index:idx_notifications_recipient;not null"`
	UserType       authdomain.Role `json:"userType" gorm:"type:varchar(16);index:idx_notifications_recipient;not null"`
	RelatedID      string          `json:"relatedId,omitempty" gorm:"index"`
	RelatedType    string          `json:"relatedType,omitempty"`
	SenderID       string          `json:"senderId,omitempty"`
	SenderName     string          `json:"senderName,omitempty"`
	MessagePreview string          `json:"messagePreview,omitempty"`
	Read           bool            `json:"read" gorm:"index;not null;default:false"`
	ReadAt         *time.Time      `json:"readAt,omitempty"`
	CreatedAt      time.Time       `json:"createdAt" gorm:"index"`
}

// ListFilter narrows a recipient's notification feed.
type ListFilter struct {
	UnreadOnly bool
	Category   Category
	Limit      int
	Offset     int
}
