package repository

import (
	"context"

	authdomain "repairhub-backend/internal/auth/domain"
)

// UserRepository defines persistence for marketplace users
type UserRepository interface {
	Create(ctx context.Context, user *authdomain.User) error
	FindByEmail(ctx context.Context, email string) (*authdomain.User, error)
	FindByID(ctx context.Context, id string) (*authdomain.User, error)
}
