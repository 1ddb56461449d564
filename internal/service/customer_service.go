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

type CustomerService struct {
	customerRepo *repository.CustomerRepository
	feed         *events.Feed
	logger       *zap.Logger
}

func NewCustomerService(customerRepo *repository.CustomerRepository, feed *events.Feed, logger *zap.Logger) *CustomerService {
	return &CustomerService{
		customerRepo: customerRepo,
		feed:         feed,
		logger:       logger,
	}
}

func (s *CustomerService) Create(ctx context.Context, req *domain.CreateCustomerRequest) (*domain.CustomerDTO, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUserContextRequired
	}

	customer := &domain.Customer{
		TenantID: userCtx.TenantID,
		Name:     req.Name,
		Phone:    req.Phone,
		Email:    req.Email,
	}

	if err := s.customerRepo.Create(ctx, customer); err != nil {
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}

	s.feed.Publish(events.Event{
		Entity: "customer", Action: events.ActionCreated, EntityID: customer.ID, TenantID: userCtx.TenantID,
	})

	dto := mapper.ToCustomerDTO(customer)
	return &dto, nil
}

func (s *CustomerService) GetByID(ctx context.Context, id uuid.UUID) (*domain.CustomerDTO, error) {
	customer, err := s.customerRepo.GetByID(ctx, id)
	if err != nil {
		if isRecordNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}

	dto := mapper.ToCustomerDTO(customer)
	return &dto, nil
}

func (s *CustomerService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateCustomerRequest) (*domain.CustomerDTO, error) {
	customer, err := s.customerRepo.GetByID(ctx, id)
	if err != nil {
		if isRecordNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}

	if req.Name != nil {
		customer.Name = *req.Name
	}
	if req.Phone != nil {
		customer.Phone = *req.Phone
	}
	if req.Email != nil {
		customer.Email = *req.Email
	}

	if err := s.customerRepo.Update(ctx, customer); err != nil {
		return nil, fmt.Errorf("failed to update customer: %w", err)
	}

	s.feed.Publish(events.Event{
		Entity: "customer", Action: events.ActionUpdated, EntityID: customer.ID, TenantID: customer.TenantID,
	})

	dto := mapper.ToCustomerDTO(customer)
	return &dto, nil
}

func (s *CustomerService) Delete(ctx context.Context, id uuid.UUID) error {
	customer, err := s.customerRepo.GetByID(ctx, id)
	if err != nil {
		if isRecordNotFound(err) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get customer: %w", err)
	}

	if err := s.customerRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete customer: %w", err)
	}

	s.feed.Publish(events.Event{
		Entity: "customer", Action: events.ActionDeleted, EntityID: customer.ID, TenantID: customer.TenantID,
	})
	return nil
}

func (s *CustomerService) List(ctx context.Context, page, pageSize int, search string) (*domain.PaginatedResponse, error) {
	customers, total, err := s.customerRepo.List(ctx, page, pageSize, search)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}

	page, pageSize = repository.ClampPage(page, pageSize)
	dtos := make([]domain.CustomerDTO, len(customers))
	for i := range customers {
		dtos[i] = mapper.ToCustomerDTO(&customers[i])
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

// Search is the typeahead used by the order intake form
func (s *CustomerService) Search(ctx context.Context, query string, limit int) ([]domain.CustomerDTO, error) {
	if limit < 1 || limit > 50 {
		limit = 10
	}
	customers, err := s.customerRepo.Search(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search customers: %w", err)
	}

	dtos := make([]domain.CustomerDTO, len(customers))
	for i := range customers {
		dtos[i] = mapper.ToCustomerDTO(&customers[i])
	}
	return dtos, nil
}
