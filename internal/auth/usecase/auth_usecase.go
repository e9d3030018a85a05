package usecase

import (
	"context"
	"errors"
	"time"

	authdomain "repairhub-backend/internal/auth/domain"
	authdto "repairhub-backend/internal/auth/dto"
	"repairhub-backend/internal/auth/repository"
	"repairhub-backend/pkg/apperr"
	"repairhub-backend/pkg/config"
	"repairhub-backend/pkg/logger"

	"github.com/golang-jwt/jwt/v5"
)

var log = logger.For("auth")

// authUsecase implements AuthUsecase interface
type authUsecase struct {
	userRepo repository.UserRepository
	config   *config.Config
}

// NewAuthUsecase creates a new instance of authUsecase
func NewAuthUsecase(userRepo repository.UserRepository, cfg *config.Config) AuthUsecase {
	return &authUsecase{
		userRepo: userRepo,
		config:   cfg,
	}
}

func (u *authUsecase) Login(ctx context.Context, req *authdto.LoginRequest) (*authdto.TokenResponse, error) {
	user, err := u.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.ErrDatabase, "failed to look up user")
	}

	if user == nil || !repository.CheckPasswordHash(req.Password, user.Password) {
		return nil, apperr.WithMessage(apperr.ErrUnauthorized, "invalid email or password")
	}

	return u.generateTokens(user)
}

func (u *authUsecase) Register(ctx context.Context, req *authdto.RegisterRequest) (*authdto.TokenResponse, error) {
	role := authdomain.Role(req.Role)
	if !role.Valid() || role == authdomain.RoleAdmin {
		return nil, apperr.WithMessage(apperr.ErrValidation, "role must be customer or provider")
	}

	existing, err := u.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.ErrDatabase, "failed to look up user")
	}
	if existing != nil {
		return nil, apperr.WithMessage(apperr.ErrConflict, "email already registered")
	}

	hashedPassword, err := repository.HashPassword(req.Password)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.ErrInternal, "failed to hash password")
	}

	user := &authdomain.User{
		Email:    req.Email,
		Password: hashedPassword,
		Name:     req.Name,
		Role:     role,
	}
	if err := u.userRepo.Create(ctx, user); err != nil {
		return nil, apperr.Wrap(err, apperr.ErrDatabase, "failed to create user")
	}

	log.WithField("user_id", user.ID).Infof("registered %s", user.Role)
	return u.generateTokens(user)
}

func (u *authUsecase) EnsureAdmin(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return nil
	}
	existing, err := u.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	hashedPassword, err := repository.HashPassword(password)
	if err != nil {
		return err
	}
	admin := &authdomain.User{Email: email, Password: hashedPassword, Name: "Administrator", Role: authdomain.RoleAdmin}
	if err := u.userRepo.Create(ctx, admin); err != nil {
		return err
	}
	log.WithField("user_id", admin.ID).Info("bootstrap admin created")
	return nil
}

func (u *authUsecase) generateTokens(user *authdomain.User) (*authdto.TokenResponse, error) {
	claims := jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"role":    string(user.Role),
		"exp":     time.Now().Add(u.config.JWTAccessExpiry).Unix(),
		"iat":     time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	accessToken, err := token.SignedString([]byte(u.config.JWTSecret))
	if err != nil {
		return nil, apperr.Wrap(err, apperr.ErrInternal, "failed to sign token")
	}

	return &authdto.TokenResponse{
		AccessToken: accessToken,
		ExpiresIn:   int64(u.config.JWTAccessExpiry.Seconds()),
		User:        user,
	}, nil
}

func (u *authUsecase) ValidateToken(ctx context.Context, tokenString string) (*authdomain.User, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(u.config.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, apperr.WithMessage(apperr.ErrUnauthorized, "invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, apperr.WithMessage(apperr.ErrUnauthorized, "invalid token claims")
	}

	userID, ok := claims["user_id"].(string)
	if !ok {
		return nil, apperr.WithMessage(apperr.ErrUnauthorized, "invalid token claims")
	}

	user, err := u.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.ErrDatabase, "failed to look up user")
	}
	if user == nil {
		return nil, apperr.WithMessage(apperr.ErrUnauthorized, "user not found")
	}

	return user, nil
}
