package domain

import (
	"time"

	authdomain "repairhub-backend/internal/auth/domain"

	"gorm.io/datatypes"
)

// DeviceInfo is browser/device metadata reported by the client at registration.
type DeviceInfo struct {
	Platform  string `json:"platform,omitempty"`
	Browser   string `json:"browser,omitempty"`
	UserAgent string `json:"userAgent,omitempty"`
}

// PushToken is one FCM registration token for one app installation or browser.
// Rows are never deleted; unregistering and cleanup only clear IsActive.
type PushToken struct {
	ID         string                         `json:"id" gorm:"primaryKey"`
	Token      string                         `json:"-" gorm:"uniqueIndex;not null"` // Don't expose token in JSON
	UserID     string                         `json:"userId" gorm:"index:idx_push_tokens_owner;not null"`
	UserType   authdomain.Role                `json:"userType" gorm:"type:varchar(16);index:idx_push_tokens_owner;not null"`
	DeviceID   string                         `json:"deviceId,omitempty" gorm:"index"`
	DeviceInfo datatypes.JSONType[DeviceInfo] `json:"deviceInfo"`
	IsActive   bool                           `json:"isActive" gorm:"index;not null"`
	CreatedAt  time.Time                      `json:"createdAt"`
	UpdatedAt  time.Time                      `json:"updatedAt"`
	LastUsedAt *time.Time                     `json:"lastUsedAt,omitempty"`
}

// SaveResult reports what a registration did.
type SaveResult struct {
	ID string
	// Superseded counts older active tokens of the same device that were deactivated.
	Superseded int64
}
