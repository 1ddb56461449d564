package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/taller-labs/workshop-api/internal/domain"
	"gorm.io/gorm"
)

type SaleRepository struct {
	db *gorm.DB
}

func NewSaleRepository(db *gorm.DB) *SaleRepository {
	return &SaleRepository{db: db}
}

// Transaction runs fn inside a database transaction. The sale service
// composes header, line and stock writes through this.
func (r *SaleRepository) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func (r *SaleRepository) CreateTx(tx *gorm.DB, sale *domain.Sale) error {
	return tx.Create(sale).Error
}

func (r *SaleRepository) CreateItemsTx(tx *gorm.DB, items []domain.SaleItem) error {
	return tx.Create(&items).Error
}

func (r *SaleRepository) DeleteItemsTx(tx *gorm.DB, saleID uuid.UUID) error {
	return tx.Where("sale_id = ?", saleID).Delete(&domain.SaleItem{}).Error
}

func (r *SaleRepository) UpdateTx(tx *gorm.DB, sale *domain.Sale) error {
	return tx.Save(sale).Error
}

func (r *SaleRepository) DeleteTx(tx *gorm.DB, saleID uuid.UUID) error {
	return tx.Where("id = ?", saleID).Delete(&domain.Sale{}).Error
}

func (r *SaleRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Sale, error) {
	var sale domain.Sale
	query := r.db.WithContext(ctx).
		Preload("Customer").
		Preload("Employee").
		Preload("Items").
		Where("id = ?", id)
	query = ApplyTenantFilter(ctx, query)
	err := query.First(&sale).Error
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

func (r *SaleRepository) List(ctx context.Context, page, pageSize int, from, to *time.Time) ([]domain.Sale, int64, error) {
	var sales []domain.Sale
	var total int64

	page, pageSize = ClampPage(page, pageSize)

	query := r.db.WithContext(ctx).Model(&domain.Sale{}).
		Preload("Customer").
		Preload("Employee").
		Preload("Items")
	query = ApplyTenantFilter(ctx, query)

	if from != nil {
		query = query.Where("sold_at >= ?", *from)
	}
	if to != nil {
		query = query.Where("sold_at < ?", *to)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).Order("sold_at DESC").Find(&sales).Error

	return sales, total, err
}

// TotalSince sums sale totals from the given time, for dashboard metrics
func (r *SaleRepository) TotalSince(ctx context.Context, since time.Time) (decimal.Decimal, error) {
	var total *string
	query := r.db.WithContext(ctx).Model(&domain.Sale{}).
		Select("SUM(total)").
		Where("sold_at >= ?", since)
	query = ApplyTenantFilter(ctx, query)
	if err := query.Scan(&total).Error; err != nil {
		return decimal.Zero, err
	}
	if total == nil {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(*total)
}

// LastPurchaseFromSupplier returns the most recent sale time of any item
// sourced from the given supplier.
func (r *SaleRepository) LastPurchaseFromSupplier(ctx context.Context, supplierID uuid.UUID) (*time.Time, error) {
	var last *time.Time
	query := r.db.WithContext(ctx).Model(&domain.Sale{}).
		Select("MAX(sales.sold_at)").
		Joins("JOIN sale_items ON sale_items.sale_id = sales.id").
		Joins("JOIN inventory_items ON inventory_items.id = sale_items.item_id").
		Where("inventory_items.supplier_id = ?", supplierID)
	query = ApplyTenantFilterWithAlias(ctx, query, "sales")
	err := query.Scan(&last).Error
	return last, err
}
