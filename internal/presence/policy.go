package presence

import (
	"context"
	"time"

	authdomain "repairhub-backend/internal/auth/domain"
	"repairhub-backend/pkg/logger"
)

var log = logger.For("presence")

// Policy is the single chat-suppression rule shared by push dispatch and in-app toasts.
type Policy struct {
	store Store
	ttl   time.Duration
}

func NewPolicy(store Store, ttl time.Duration) *Policy {
	return &Policy{store: store, ttl: ttl}
}

// ShouldSuppress is true iff the recipient currently has conversation relatedID open.
// Store failures fail open: the user is notified.
func (p *Policy) ShouldSuppress(ctx context.Context, userID string, userType authdomain.Role, relatedID string) bool {
	if relatedID == "" {
		return false
	}
	active, err := p.store.Active(ctx, UserKey(userID, userType))
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Warn("presence lookup failed, not suppressing")
		return false
	}
	return active == relatedID
}

// Open marks conversationID as the user's open chat; clients refresh it as a heartbeat.
func (p *Policy) Open(ctx context.Context, userID string, userType authdomain.Role, conversationID string) error {
	return p.store.SetActive(ctx, UserKey(userID, userType), conversationID, p.ttl)
}

// Close clears the open chat; an empty conversationID clears whatever is open.
func (p *Policy) Close(ctx context.Context, userID string, userType authdomain.Role, conversationID string) error {
	return p.store.Clear(ctx, UserKey(userID, userType), conversationID)
}

func (p *Policy) Active(ctx context.Context, userID string, userType authdomain.Role) (string, error) {
	return p.store.Active(ctx, UserKey(userID, userType))
}

// TTL is how long an open conversation survives without a heartbeat.
func (p *Policy) TTL() time.Duration {
	return p.ttl
}
