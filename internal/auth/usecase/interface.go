package usecase

import (
	"context"

	authdomain "repairhub-backend/internal/auth/domain"
	authdto "repairhub-backend/internal/auth/dto"
)

// AuthUsecase defines authentication business logic
type AuthUsecase interface {
	Login(ctx context.Context, req *authdto.LoginRequest) (*authdto.TokenResponse, error)
	Register(ctx context.Context, req *authdto.RegisterRequest) (*authdto.TokenResponse, error)
	// EnsureAdmin creates the bootstrap admin account if it does not exist yet.
	EnsureAdmin(ctx context.Context, email, password string) error
	ValidateToken(ctx context.Context, token string) (*authdomain.User, error)
}
