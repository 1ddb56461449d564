package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/taller-labs/workshop-api/internal/domain"
	"gorm.io/gorm"
)

type OrderHistoryRepository struct {
	db *gorm.DB
}

func NewOrderHistoryRepository(db *gorm.DB) *OrderHistoryRepository {
	return &OrderHistoryRepository{db: db}
}

// Record appends an audit entry for an order
func (r *OrderHistoryRepository) Record(ctx context.Context, entry *domain.OrderHistoryEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// RecordTx appends an audit entry inside an existing transaction
func (r *OrderHistoryRepository) RecordTx(tx *gorm.DB, entry *domain.OrderHistoryEntry) error {
	return tx.Create(entry).Error
}

// ListByOrder returns the full history of an order, oldest first
func (r *OrderHistoryRepository) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]domain.OrderHistoryEntry, error) {
	var entries []domain.OrderHistoryEntry
	query := r.db.WithContext(ctx).
		Preload("Actor").
		Where("order_id = ?", orderID)
	query = ApplyTenantFilter(ctx, query)
	err := query.Order("created_at ASC").Find(&entries).Error
	return entries, err
}
