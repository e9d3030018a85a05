package repository

import (
	"context"
	"errors"
	"time"

	authdomain "repairhub-backend/internal/auth/domain"
	"repairhub-backend/internal/notification/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type notificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	return r.db.WithContext(ctx).Create(n).Error
}

func (r *notificationRepository) owned(ctx context.Context, userID string, userType authdomain.Role) *gorm.DB {
	return r.db.WithContext(ctx).Model(&domain.Notification{}).
		Where("user_id = ? AND user_type = ?", userID, userType)
}

func (r *notificationRepository) List(ctx context.Context, userID string, userType authdomain.Role, filter domain.ListFilter) ([]domain.Notification, int64, error) {
	query := r.owned(ctx, userID, userType)
	if filter.UnreadOnly {
		query = query.Where("read = ?", false)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	var items []domain.Notification
	err := query.Order("created_at DESC").Order("id DESC").Limit(limit).Offset(offset).Find(&items).Error
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *notificationRepository) UnreadCount(ctx context.Context, userID string, userType authdomain.Role) (int64, error) {
	var n int64
	err := r.owned(ctx, userID, userType).Where("read = ?", false).Count(&n).Error
	return n, err
}

func (r *notificationRepository) MarkRead(ctx context.Context, userID string, userType authdomain.Role, id string, at time.Time) (bool, error) {
	var existing domain.Notification
	err := r.owned(ctx, userID, userType).Where("id = ?", id).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if existing.Read {
		return true, nil
	}

	err = r.owned(ctx, userID, userType).
		Where("id = ? AND read = ?", id, false).
		Updates(map[string]interface{}{"read": true, "read_at": at}).Error
	return err == nil, err
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, userID string, userType authdomain.Role, at time.Time) (int64, error) {
	result := r.owned(ctx, userID, userType).
		Where("read = ?", false).
		Updates(map[string]interface{}{"read": true, "read_at": at})
	return result.RowsAffected, result.Error
}
