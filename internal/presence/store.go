// Package presence tracks which chat conversation each user currently has open and
// decides whether chat alerts to that user should be suppressed.
package presence

import (
	"context"
	"time"

	authdomain "repairhub-backend/internal/auth/domain"
)

// Store holds at most one open conversation per user, expiring after a TTL unless refreshed.
type Store interface {
	SetActive(ctx context.Context, userKey, conversationID string, ttl time.Duration) error
	// Clear removes the active conversation. A non-empty conversationID only clears when it matches.
	Clear(ctx context.Context, userKey, conversationID string) error
	// Active returns the open conversation id, or "" when none.
	Active(ctx context.Context, userKey string) (string, error)
}

// UserKey scopes presence by role so a user acting as customer and provider is tracked separately.
func UserKey(userID string, userType authdomain.Role) string {
	return string(userType) + ":" + userID
}
