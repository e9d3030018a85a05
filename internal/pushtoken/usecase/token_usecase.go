package usecase

import (
	"context"
	"strings"

	authdomain "repairhub-backend/internal/auth/domain"
	"repairhub-backend/internal/pushtoken/domain"
	"repairhub-backend/internal/pushtoken/dto"
	"repairhub-backend/internal/pushtoken/repository"
	"repairhub-backend/pkg/apperr"
	"repairhub-backend/pkg/logger"
	"repairhub-backend/pkg/metrics"

	"gorm.io/datatypes"
)

var log = logger.For("token-registry")

type tokenUsecase struct {
	repo repository.PushTokenRepository
}

func NewTokenUsecase(repo repository.PushTokenRepository) TokenUsecase {
	return &tokenUsecase{repo: repo}
}

func (u *tokenUsecase) Register(ctx context.Context, user *authdomain.User, req *dto.RegisterTokenRequest) (string, error) {
	value := strings.TrimSpace(req.Token)
	if value == "" {
		return "", apperr.WithMessage(apperr.ErrValidation, "token is required")
	}

	res, err := u.repo.SaveToken(ctx, &domain.PushToken{
		Token:    value,
		UserID:   user.ID,
		UserType: user.Role,
		DeviceID: strings.TrimSpace(req.DeviceID),
		DeviceInfo: datatypes.NewJSONType(domain.DeviceInfo{
			Platform:  req.DeviceInfo.Platform,
			Browser:   req.DeviceInfo.Browser,
			UserAgent: req.DeviceInfo.UserAgent,
		}),
	})
	if err != nil {
		return "", apperr.Wrap(err, apperr.ErrDatabase, "failed to save push token")
	}

	entry := log.WithField("user_id", user.ID).WithField("token", logger.ShortToken(value))
	if res.Superseded > 0 {
		metrics.TokenDeactivated("superseded", int(res.Superseded))
		entry = entry.WithField("superseded", res.Superseded)
	}
	entry.Info("push token registered")
	return res.ID, nil
}

func (u *tokenUsecase) Unregister(ctx context.Context, user *authdomain.User, token string) error {
	ok, err := u.repo.DeactivateOwnedToken(ctx, user.ID, strings.TrimSpace(token))
	if err != nil {
		return apperr.Wrap(err, apperr.ErrDatabase, "failed to deactivate push token")
	}
	if !ok {
		return apperr.WithMessage(apperr.ErrNotFound, "push token not found")
	}
	metrics.TokenDeactivated("unregistered", 1)
	log.WithField("user_id", user.ID).WithField("token", logger.ShortToken(token)).Info("push token unregistered")
	return nil
}

func (u *tokenUsecase) UnregisterAll(ctx context.Context, user *authdomain.User) (int64, error) {
	n, err := u.repo.DeactivateUserTokens(ctx, user.ID, user.Role)
	if err != nil {
		return 0, apperr.Wrap(err, apperr.ErrDatabase, "failed to deactivate push tokens")
	}
	metrics.TokenDeactivated("unregistered", int(n))
	return n, nil
}

func (u *tokenUsecase) ActiveTokens(ctx context.Context, user *authdomain.User) ([]domain.PushToken, error) {
	tokens, err := u.repo.GetActiveTokens(ctx, user.ID, user.Role)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.ErrDatabase, "failed to load push tokens")
	}
	if tokens == nil {
		tokens = []domain.PushToken{}
	}
	return tokens, nil
}
