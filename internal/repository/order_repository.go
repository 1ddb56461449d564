package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/taller-labs/workshop-api/internal/domain"
	"gorm.io/gorm"
)

// OrderListFilter narrows the order list query
type OrderListFilter struct {
	Status domain.OrderStatus
	// TechnicianID restricts results to one technician's assignments.
	// Set by the service for technician callers.
	TechnicianID *uuid.UUID
	Search       string
	Sort         SortConfig
}

// orderSortFields whitelists sortable API fields
var orderSortFields = map[string]string{
	"createdAt":  "work_orders.created_at",
	"receivedAt": "work_orders.received_at",
	"status":     "work_orders.status",
	"priority":   "work_orders.priority",
}

type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) Create(ctx context.Context, order *domain.WorkOrder) error {
	return r.db.WithContext(ctx).Create(order).Error
}

// CreateWithCustomer inserts a new customer and its first order atomically
func (r *OrderRepository) CreateWithCustomer(ctx context.Context, customer *domain.Customer, order *domain.WorkOrder) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(customer).Error; err != nil {
			return err
		}
		order.CustomerID = customer.ID
		return tx.Create(order).Error
	})
}

func (r *OrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.WorkOrder, error) {
	var order domain.WorkOrder
	query := r.db.WithContext(ctx).
		Preload("Customer").
		Preload("Technician").
		Where("id = ?", id)
	query = ApplyTenantFilter(ctx, query)
	err := query.First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *OrderRepository) Update(ctx context.Context, order *domain.WorkOrder) error {
	return r.db.WithContext(ctx).Save(order).Error
}

// UpdateFields applies a partial update to the given order columns
func (r *OrderRepository) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	query := ApplyTenantFilter(ctx, r.db.WithContext(ctx).Model(&domain.WorkOrder{}).Where("id = ?", id))
	return query.Updates(fields).Error
}

// Delete removes an order and its history entries in one transaction
func (r *OrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", id).Delete(&domain.OrderHistoryEntry{}).Error; err != nil {
			return err
		}
		query := ApplyTenantFilter(ctx, tx.Where("id = ?", id))
		return query.Delete(&domain.WorkOrder{}).Error
	})
}

func (r *OrderRepository) List(ctx context.Context, page, pageSize int, filter OrderListFilter) ([]domain.WorkOrder, int64, error) {
	var orders []domain.WorkOrder
	var total int64

	page, pageSize = ClampPage(page, pageSize)

	query := r.db.WithContext(ctx).Model(&domain.WorkOrder{}).
		Preload("Customer").
		Preload("Technician")
	query = ApplyTenantFilter(ctx, query)

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.TechnicianID != nil {
		query = query.Where("technician_id = ?", *filter.TechnicianID)
	}
	if filter.Search != "" {
		searchPattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where(
			"LOWER(device_type) LIKE ? OR LOWER(device_model) LIKE ? OR LOWER(imei) LIKE ?",
			searchPattern, searchPattern, searchPattern,
		)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	orderClause := BuildOrderClause(filter.Sort, orderSortFields, "work_orders.created_at DESC")
	offset := (page - 1) * pageSize
	err := query.Order(orderClause).Offset(offset).Limit(pageSize).Find(&orders).Error

	return orders, total, err
}

// Recent returns the newest orders for the dashboard
func (r *OrderRepository) Recent(ctx context.Context, limit int) ([]domain.WorkOrder, error) {
	var orders []domain.WorkOrder
	query := r.db.WithContext(ctx).
		Preload("Customer").
		Preload("Technician")
	query = ApplyTenantFilter(ctx, query)
	err := query.Order("created_at DESC").Limit(limit).Find(&orders).Error
	return orders, err
}

// CountByStatus returns the number of orders per status
func (r *OrderRepository) CountByStatus(ctx context.Context) (map[domain.OrderStatus]int64, error) {
	type row struct {
		Status domain.OrderStatus
		Count  int64
	}
	var rows []row

	query := r.db.WithContext(ctx).Model(&domain.WorkOrder{}).
		Select("status, COUNT(*) as count").
		Group("status")
	query = ApplyTenantFilter(ctx, query)
	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[domain.OrderStatus]int64, len(rows))
	for _, r := range rows {
		counts[r.Status] = r.Count
	}
	return counts, nil
}
