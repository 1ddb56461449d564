package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/taller-labs/workshop-api/internal/domain"
	"gorm.io/gorm"
)

type InventoryRepository struct {
	db *gorm.DB
}

func NewInventoryRepository(db *gorm.DB) *InventoryRepository {
	return &InventoryRepository{db: db}
}

func (r *InventoryRepository) Create(ctx context.Context, item *domain.InventoryItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *InventoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.InventoryItem, error) {
	var item domain.InventoryItem
	query := r.db.WithContext(ctx).Preload("Supplier").Where("id = ?", id)
	query = ApplyTenantFilter(ctx, query)
	err := query.First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// GetByIDs loads several items at once, used when building a sale
func (r *InventoryRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.InventoryItem, error) {
	var items []domain.InventoryItem
	query := r.db.WithContext(ctx).Where("id IN ?", ids)
	query = ApplyTenantFilter(ctx, query)
	err := query.Find(&items).Error
	return items, err
}

func (r *InventoryRepository) Update(ctx context.Context, item *domain.InventoryItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

func (r *InventoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := ApplyTenantFilter(ctx, r.db.WithContext(ctx).Where("id = ?", id))
	return query.Delete(&domain.InventoryItem{}).Error
}

func (r *InventoryRepository) List(ctx context.Context, page, pageSize int, search, category string) ([]domain.InventoryItem, int64, error) {
	var items []domain.InventoryItem
	var total int64

	page, pageSize = ClampPage(page, pageSize)

	query := r.db.WithContext(ctx).Model(&domain.InventoryItem{}).Preload("Supplier")
	query = ApplyTenantFilter(ctx, query)

	if search != "" {
		searchPattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(name) LIKE ?", searchPattern)
	}
	if category != "" {
		query = query.Where("category = ?", category)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).Order("name ASC").Find(&items).Error

	return items, total, err
}

// ListBelowQuantity returns items at or below the given quantity,
// lowest stock first. Used by the dashboard reorder list and the low
// stock sweep.
func (r *InventoryRepository) ListBelowQuantity(ctx context.Context, threshold int) ([]domain.InventoryItem, error) {
	var items []domain.InventoryItem
	query := r.db.WithContext(ctx).Where("quantity <= ?", threshold)
	query = ApplyTenantFilter(ctx, query)
	err := query.Order("quantity ASC").Find(&items).Error
	return items, err
}

// ListBelowQuantityForTenant is ListBelowQuantity for background jobs
// that run without a request context.
func (r *InventoryRepository) ListBelowQuantityForTenant(ctx context.Context, tenantID uuid.UUID, threshold int) ([]domain.InventoryItem, error) {
	var items []domain.InventoryItem
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND quantity <= ?", tenantID, threshold).
		Order("quantity ASC").
		Find(&items).Error
	return items, err
}

// DecrementStockTx atomically subtracts quantity inside a transaction.
// The WHERE guard makes an over-draw affect zero rows instead of going
// negative; callers must check the returned count.
func (r *InventoryRepository) DecrementStockTx(tx *gorm.DB, itemID uuid.UUID, quantity int) (int64, error) {
	result := tx.Model(&domain.InventoryItem{}).
		Where("id = ? AND quantity >= ?", itemID, quantity).
		UpdateColumn("quantity", gorm.Expr("quantity - ?", quantity))
	return result.RowsAffected, result.Error
}

// RestoreStockTx adds quantity back inside a transaction, used when a
// sale is edited or deleted.
func (r *InventoryRepository) RestoreStockTx(tx *gorm.DB, itemID uuid.UUID, quantity int) error {
	return tx.Model(&domain.InventoryItem{}).
		Where("id = ?", itemID).
		UpdateColumn("quantity", gorm.Expr("quantity + ?", quantity)).Error
}
