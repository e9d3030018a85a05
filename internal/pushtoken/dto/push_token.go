package dto

type DeviceInfo struct {
	Platform  string `json:"platform" binding:"omitempty,oneof=web android ios"`
	Browser   string `json:"browser"`
	UserAgent string `json:"userAgent"`
}

type RegisterTokenRequest struct {
	Token      string     `json:"token" binding:"required,min=8,max=4096"`
	DeviceID   string     `json:"deviceId" binding:"max=128"`
	DeviceInfo DeviceInfo `json:"deviceInfo"`
}

type UnregisterTokenRequest struct {
	Token string `json:"token" binding:"required_unless=All true"`
	// All deactivates every token of the caller instead of one.
	All bool `json:"all"`
}
