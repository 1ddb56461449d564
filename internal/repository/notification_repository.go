package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/taller-labs/workshop-api/internal/domain"
	"gorm.io/gorm"
)

type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Create(ctx context.Context, notification *domain.Notification) error {
	return r.db.WithContext(ctx).Create(notification).Error
}

// CreateBatch inserts several notifications at once (admin fan-out)
func (r *NotificationRepository) CreateBatch(ctx context.Context, notifications []domain.Notification) error {
	if len(notifications) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&notifications).Error
}

func (r *NotificationRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Notification, error) {
	var notification domain.Notification
	query := r.db.WithContext(ctx).Where("id = ?", id)
	query = ApplyTenantFilter(ctx, query)
	err := query.First(&notification).Error
	if err != nil {
		return nil, err
	}
	return &notification, nil
}

func (r *NotificationRepository) ListByRecipient(ctx context.Context, recipientID uuid.UUID, unreadOnly bool, page, pageSize int) ([]domain.Notification, int64, error) {
	var notifications []domain.Notification
	var total int64

	page, pageSize = ClampPage(page, pageSize)

	query := r.db.WithContext(ctx).Model(&domain.Notification{}).
		Where("recipient_id = ?", recipientID)
	query = ApplyTenantFilter(ctx, query)

	if unreadOnly {
		query = query.Where("is_read = ?", false)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).Order("created_at DESC").Find(&notifications).Error

	return notifications, total, err
}

func (r *NotificationRepository) CountUnread(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&domain.Notification{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false)
	query = ApplyTenantFilter(ctx, query)
	err := query.Count(&count).Error
	return count, err
}

func (r *NotificationRepository) MarkRead(ctx context.Context, id uuid.UUID) error {
	now := time.Now()
	query := ApplyTenantFilter(ctx, r.db.WithContext(ctx).Model(&domain.Notification{}).Where("id = ?", id))
	return query.Updates(map[string]interface{}{
		"is_read": true,
		"read_at": now,
	}).Error
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context, recipientID uuid.UUID) error {
	now := time.Now()
	query := ApplyTenantFilter(ctx, r.db.WithContext(ctx).Model(&domain.Notification{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false))
	return query.Updates(map[string]interface{}{
		"is_read": true,
		"read_at": now,
	}).Error
}

func (r *NotificationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := ApplyTenantFilter(ctx, r.db.WithContext(ctx).Where("id = ?", id))
	return query.Delete(&domain.Notification{}).Error
}
