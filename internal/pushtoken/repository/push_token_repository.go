package repository

import (
	"context"
	"time"

	authdomain "repairhub-backend/internal/auth/domain"
	"repairhub-backend/internal/pushtoken/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// pushTokenRepository implements PushTokenRepository interface
type pushTokenRepository struct {
	db *gorm.DB
}

// NewPushTokenRepository creates a new instance of pushTokenRepository
func NewPushTokenRepository(db *gorm.DB) PushTokenRepository {
	return &pushTokenRepository{
		db: db,
	}
}

// SaveToken saves or updates a push token (atomic upsert on the token column).
func (r *pushTokenRepository) SaveToken(ctx context.Context, token *domain.PushToken) (*domain.SaveResult, error) {
	now := time.Now()
	record := &domain.PushToken{
		ID:         uuid.New().String(),
		Token:      token.Token,
		UserID:     token.UserID,
		UserType:   token.UserType,
		DeviceID:   token.DeviceID,
		DeviceInfo: token.DeviceInfo,
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	result := &domain.SaveResult{}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// INSERT ... ON CONFLICT (token) DO UPDATE: re-registering never duplicates and re-activates.
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "token"}},
			DoUpdates: clause.AssignmentColumns([]string{"user_id", "user_type", "device_id", "device_info", "is_active", "updated_at"}),
		}).Create(record).Error; err != nil {
			return err
		}

		// On conflict the row keeps its original id.
		var saved domain.PushToken
		if err := tx.Where("token = ?", record.Token).First(&saved).Error; err != nil {
			return err
		}
		result.ID = saved.ID

		if record.DeviceID == "" {
			return nil
		}
		res := tx.Model(&domain.PushToken{}).
			Where("user_id = ? AND user_type = ? AND device_id = ? AND token <> ? AND is_active = ?",
				record.UserID, record.UserType, record.DeviceID, record.Token, true).
			Updates(map[string]interface{}{"is_active": false, "updated_at": now})
		if res.Error != nil {
			return res.Error
		}
		result.Superseded = res.RowsAffected
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// GetActiveTokens returns every active token for the user, newest first
func (r *pushTokenRepository) GetActiveTokens(ctx context.Context, userID string, userType authdomain.Role) ([]domain.PushToken, error) {
	var tokens []domain.PushToken
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND user_type = ? AND is_active = ?", userID, userType, true).
		Order("updated_at DESC").
		Find(&tokens).Error
	if err != nil {
		return nil, err
	}
	return tokens, nil
}

// DeactivateToken flips a token inactive. Unknown tokens are not an error.
func (r *pushTokenRepository) DeactivateToken(ctx context.Context, token string) error {
	return r.db.WithContext(ctx).Model(&domain.PushToken{}).
		Where("token = ? AND is_active = ?", token, true).
		Updates(map[string]interface{}{"is_active": false, "updated_at": time.Now()}).Error
}

func (r *pushTokenRepository) DeactivateOwnedToken(ctx context.Context, userID, token string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&domain.PushToken{}).
		Where("token = ? AND user_id = ? AND is_active = ?", token, userID, true).
		Updates(map[string]interface{}{"is_active": false, "updated_at": time.Now()})
	return res.RowsAffected > 0, res.Error
}

func (r *pushTokenRepository) DeactivateUserTokens(ctx context.Context, userID string, userType authdomain.Role) (int64, error) {
	res := r.db.WithContext(ctx).Model(&domain.PushToken{}).
		Where("user_id = ? AND user_type = ? AND is_active = ?", userID, userType, true).
		Updates(map[string]interface{}{"is_active": false, "updated_at": time.Now()})
	return res.RowsAffected, res.Error
}

// DeactivateStaleTokens deactivates tokens the client has not refreshed since the cutoff.
func (r *pushTokenRepository) DeactivateStaleTokens(ctx context.Context, notUpdatedSince time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&domain.PushToken{}).
		Where("is_active = ? AND updated_at < ?", true, notUpdatedSince).
		Updates(map[string]interface{}{"is_active": false, "updated_at": time.Now()})
	return res.RowsAffected, res.Error
}

// TouchTokens stamps last_used_at without moving updated_at, which tracks client refreshes.
func (r *pushTokenRepository) TouchTokens(ctx context.Context, tokens []string) error {
	if len(tokens) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&domain.PushToken{}).
		Where("token IN ?", tokens).
		UpdateColumn("last_used_at", time.Now()).Error
}
