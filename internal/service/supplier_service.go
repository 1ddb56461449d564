package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/taller-labs/workshop-api/internal/auth"
	"github.com/taller-labs/workshop-api/internal/domain"
	"github.com/taller-labs/workshop-api/internal/events"
	"github.com/taller-labs/workshop-api/internal/mapper"
	"github.com/taller-labs/workshop-api/internal/repository"
	"go.uber.org/zap"
)

type SupplierService struct {
	supplierRepo *repository.SupplierRepository
	saleRepo     *repository.SaleRepository
	feed         *events.Feed
	logger       *zap.Logger
}

func NewSupplierService(
	supplierRepo *repository.SupplierRepository,
	saleRepo *repository.SaleRepository,
	feed *events.Feed,
	logger *zap.Logger,
) *SupplierService {
	return &SupplierService{
		supplierRepo: supplierRepo,
		saleRepo:     saleRepo,
		feed:         feed,
		logger:       logger,
	}
}

func (s *SupplierService) Create(ctx context.Context, req *domain.CreateSupplierRequest) (*domain.SupplierDTO, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUserContextRequired
	}

	supplier := &domain.Supplier{
		TenantID:      userCtx.TenantID,
		Name:          req.Name,
		Category:      req.Category,
		ContactPerson: req.ContactPerson,
		Phone:         req.Phone,
		Email:         req.Email,
		Address:       req.Address,
		Status:        domain.SupplierStatusActive,
	}

	if err := s.supplierRepo.Create(ctx, supplier); err != nil {
		return nil, fmt.Errorf("failed to create supplier: %w", err)
	}

	s.feed.Publish(events.Event{
		Entity: "supplier", Action: events.ActionCreated, EntityID: supplier.ID, TenantID: userCtx.TenantID,
	})

	dto := mapper.ToSupplierDTO(supplier)
	return &dto, nil
}

func (s *SupplierService) GetByID(ctx context.Context, id uuid.UUID) (*domain.SupplierDTO, error) {
	supplier, err := s.supplierRepo.GetByID(ctx, id)
	if err != nil {
		if isRecordNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get supplier: %w", err)
	}

	dto := s.enrich(ctx, supplier)
	return &dto, nil
}

func (s *SupplierService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateSupplierRequest) (*domain.SupplierDTO, error) {
	supplier, err := s.supplierRepo.GetByID(ctx, id)
	if err != nil {
		if isRecordNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get supplier: %w", err)
	}

	if req.Name != nil {
		supplier.Name = *req.Name
	}
	if req.Category != nil {
		supplier.Category = *req.Category
	}
	if req.ContactPerson != nil {
		supplier.ContactPerson = *req.ContactPerson
	}
	if req.Phone != nil {
		supplier.Phone = *req.Phone
	}
	if req.Email != nil {
		supplier.Email = *req.Email
	}
	if req.Address != nil {
		supplier.Address = *req.Address
	}
	if req.Status != nil {
		supplier.Status = *req.Status
	}

	if err := s.supplierRepo.Update(ctx, supplier); err != nil {
		return nil, fmt.Errorf("failed to update supplier: %w", err)
	}

	s.feed.Publish(events.Event{
		Entity: "supplier", Action: events.ActionUpdated, EntityID: supplier.ID, TenantID: supplier.TenantID,
	})

	dto := s.enrich(ctx, supplier)
	return &dto, nil
}

func (s *SupplierService) Delete(ctx context.Context, id uuid.UUID) error {
	supplier, err := s.supplierRepo.GetByID(ctx, id)
	if err != nil {
		if isRecordNotFound(err) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get supplier: %w", err)
	}

	if err := s.supplierRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete supplier: %w", err)
	}

	s.feed.Publish(events.Event{
		Entity: "supplier", Action: events.ActionDeleted, EntityID: supplier.ID, TenantID: supplier.TenantID,
	})
	return nil
}

func (s *SupplierService) List(ctx context.Context, page, pageSize int, search string) (*domain.PaginatedResponse, error) {
	suppliers, total, err := s.supplierRepo.List(ctx, page, pageSize, search)
	if err != nil {
		return nil, fmt.Errorf("failed to list suppliers: %w", err)
	}

	page, pageSize = repository.ClampPage(page, pageSize)
	dtos := make([]domain.SupplierDTO, len(suppliers))
	for i := range suppliers {
		dtos[i] = s.enrich(ctx, &suppliers[i])
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

// enrich decorates the DTO with the catalogue count and the most recent
// sale that moved one of this supplier's items. Aggregate failures are
// logged and the plain DTO returned, a supplier row should never 500
// because of its stats.
func (s *SupplierService) enrich(ctx context.Context, supplier *domain.Supplier) domain.SupplierDTO {
	dto := mapper.ToSupplierDTO(supplier)

	count, err := s.supplierRepo.CountProducts(ctx, supplier.ID)
	if err != nil {
		s.logger.Warn("failed to count supplier products",
			zap.String("supplierID", supplier.ID.String()),
			zap.Error(err),
		)
	} else {
		dto.ProductCount = count
	}

	last, err := s.saleRepo.LastPurchaseFromSupplier(ctx, supplier.ID)
	if err != nil {
		s.logger.Warn("failed to resolve last purchase",
			zap.String("supplierID", supplier.ID.String()),
			zap.Error(err),
		)
	} else if last != nil {
		formatted := last.UTC().Format("2006-01-02T15:04:05Z")
		dto.LastPurchase = &formatted
	}

	return dto
}
