package repository

import (
	"context"
	"time"

	authdomain "repairhub-backend/internal/auth/domain"
	"repairhub-backend/internal/pushtoken/domain"
)

// PushTokenRepository is the token registry's persistence contract.
type PushTokenRepository interface {
	// SaveToken upserts by raw token value and supersedes other active tokens of the same device.
	SaveToken(ctx context.Context, token *domain.PushToken) (*domain.SaveResult, error)
	GetActiveTokens(ctx context.Context, userID string, userType authdomain.Role) ([]domain.PushToken, error)
	DeactivateToken(ctx context.Context, token string) error
	// DeactivateOwnedToken only touches the token when it belongs to userID; reports whether it did.
	DeactivateOwnedToken(ctx context.Context, userID, token string) (bool, error)
	DeactivateUserTokens(ctx context.Context, userID string, userType authdomain.Role) (int64, error)
	DeactivateStaleTokens(ctx context.Context, notUpdatedSince time.Time) (int64, error)
	TouchTokens(ctx context.Context, tokens []string) error
}
