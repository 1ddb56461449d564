package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/taller-labs/workshop-api/internal/auth"
	"github.com/taller-labs/workshop-api/internal/domain"
	"github.com/taller-labs/workshop-api/internal/events"
	"github.com/taller-labs/workshop-api/internal/mapper"
	"github.com/taller-labs/workshop-api/internal/repository"
	"go.uber.org/zap"
)

type InventoryService struct {
	inventoryRepo *repository.InventoryRepository
	supplierRepo  *repository.SupplierRepository
	feed          *events.Feed
	logger        *zap.Logger
}

func NewInventoryService(
	inventoryRepo *repository.InventoryRepository,
	supplierRepo *repository.SupplierRepository,
	feed *events.Feed,
	logger *zap.Logger,
) *InventoryService {
	return &InventoryService{
		inventoryRepo: inventoryRepo,
		supplierRepo:  supplierRepo,
		feed:          feed,
		logger:        logger,
	}
}

func (s *InventoryService) Create(ctx context.Context, req *domain.CreateInventoryItemRequest) (*domain.InventoryItemDTO, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUserContextRequired
	}

	price, err := decimal.NewFromString(req.Price)
	if err != nil || price.IsNegative() {
		return nil, fmt.Errorf("%w: bad price", ErrInvalidInput)
	}

	if req.SupplierID != nil {
		if _, err := s.supplierRepo.GetByID(ctx, *req.SupplierID); err != nil {
			return nil, fmt.Errorf("supplier not found: %w", ErrNotFound)
		}
	}

	item := &domain.InventoryItem{
		TenantID:    userCtx.TenantID,
		Name:        req.Name,
		Category:    req.Category,
		Description: req.Description,
		Price:       price,
		Quantity:    req.Quantity,
		SupplierID:  req.SupplierID,
	}

	if err := s.inventoryRepo.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to create inventory item: %w", err)
	}

	s.feed.Publish(events.Event{
		Entity: "inventory", Action: events.ActionCreated, EntityID: item.ID, TenantID: userCtx.TenantID,
	})

	dto := mapper.ToInventoryItemDTO(item)
	return &dto, nil
}

func (s *InventoryService) GetByID(ctx context.Context, id uuid.UUID) (*domain.InventoryItemDTO, error) {
	item, err := s.inventoryRepo.GetByID(ctx, id)
	if err != nil {
		if isRecordNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get inventory item: %w", err)
	}

	dto := mapper.ToInventoryItemDTO(item)
	return &dto, nil
}

func (s *InventoryService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateInventoryItemRequest) (*domain.InventoryItemDTO, error) {
	item, err := s.inventoryRepo.GetByID(ctx, id)
	if err != nil {
		if isRecordNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get inventory item: %w", err)
	}

	if req.Name != nil {
		item.Name = *req.Name
	}
	if req.Category != nil {
		item.Category = *req.Category
	}
	if req.Description != nil {
		item.Description = *req.Description
	}
	if req.Price != nil {
		price, err := decimal.NewFromString(*req.Price)
		if err != nil || price.IsNegative() {
			return nil, fmt.Errorf("%w: bad price", ErrInvalidInput)
		}
		item.Price = price
	}
	if req.Quantity != nil {
		if *req.Quantity < 0 {
			return nil, fmt.Errorf("%w: quantity cannot be negative", ErrInvalidInput)
		}
		item.Quantity = *req.Quantity
	}
	if req.SupplierID != nil {
		if _, err := s.supplierRepo.GetByID(ctx, *req.SupplierID); err != nil {
			return nil, fmt.Errorf("supplier not found: %w", ErrNotFound)
		}
		item.SupplierID = req.SupplierID
	}

	if err := s.inventoryRepo.Update(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to update inventory item: %w", err)
	}

	s.feed.Publish(events.Event{
		Entity: "inventory", Action: events.ActionUpdated, EntityID: item.ID, TenantID: item.TenantID,
	})

	dto := mapper.ToInventoryItemDTO(item)
	return &dto, nil
}

func (s *InventoryService) Delete(ctx context.Context, id uuid.UUID) error {
	item, err := s.inventoryRepo.GetByID(ctx, id)
	if err != nil {
		if isRecordNotFound(err) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get inventory item: %w", err)
	}

	if err := s.inventoryRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete inventory item: %w", err)
	}

	s.feed.Publish(events.Event{
		Entity: "inventory", Action: events.ActionDeleted, EntityID: item.ID, TenantID: item.TenantID,
	})
	return nil
}

func (s *InventoryService) List(ctx context.Context, page, pageSize int, search, category string) (*domain.PaginatedResponse, error) {
	items, total, err := s.inventoryRepo.List(ctx, page, pageSize, search, category)
	if err != nil {
		return nil, fmt.Errorf("failed to list inventory: %w", err)
	}

	page, pageSize = repository.ClampPage(page, pageSize)
	dtos := make([]domain.InventoryItemDTO, len(items))
	for i := range items {
		dtos[i] = mapper.ToInventoryItemDTO(&items[i])
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return &domain.PaginatedResponse{
		Data:       dtos,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

// LowStock returns items at or below the tenant's reorder threshold
func (s *InventoryService) LowStock(ctx context.Context, threshold int) ([]domain.InventoryItemDTO, error) {
	items, err := s.inventoryRepo.ListBelowQuantity(ctx, threshold)
	if err != nil {
		return nil, fmt.Errorf("failed to list low stock items: %w", err)
	}

	dtos := make([]domain.InventoryItemDTO, len(items))
	for i := range items {
		dtos[i] = mapper.ToInventoryItemDTO(&items[i])
	}
	return dtos, nil
}
