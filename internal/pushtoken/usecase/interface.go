package usecase

import (
	"context"

	authdomain "repairhub-backend/internal/auth/domain"
	"repairhub-backend/internal/pushtoken/domain"
	"repairhub-backend/internal/pushtoken/dto"
)

// TokenUsecase is the registry surface exposed to HTTP clients.
type TokenUsecase interface {
	Register(ctx context.Context, user *authdomain.User, req *dto.RegisterTokenRequest) (string, error)
	Unregister(ctx context.Context, user *authdomain.User, token string) error
	UnregisterAll(ctx context.Context, user *authdomain.User) (int64, error)
	ActiveTokens(ctx context.Context, user *authdomain.User) ([]domain.PushToken, error)
}
