package service

import (
	"context"
	"fmt"
	"time"

	"github.com/taller-labs/workshop-api/internal/auth"
	"github.com/taller-labs/workshop-api/internal/domain"
	"github.com/taller-labs/workshop-api/internal/mapper"
	"github.com/taller-labs/workshop-api/internal/repository"
	"go.uber.org/zap"
)

const recentOrderLimit = 5

// DashboardService aggregates the landing page counters and lists
type DashboardService struct {
	orderRepo     *repository.OrderRepository
	customerRepo  *repository.CustomerRepository
	saleRepo      *repository.SaleRepository
	inventoryRepo *repository.InventoryRepository
	configRepo    *repository.TenantConfigRepository
	logger        *zap.Logger
}

func NewDashboardService(
	orderRepo *repository.OrderRepository,
	customerRepo *repository.CustomerRepository,
	saleRepo *repository.SaleRepository,
	inventoryRepo *repository.InventoryRepository,
	configRepo *repository.TenantConfigRepository,
	logger *zap.Logger,
) *DashboardService {
	return &DashboardService{
		orderRepo:     orderRepo,
		customerRepo:  customerRepo,
		saleRepo:      saleRepo,
		inventoryRepo: inventoryRepo,
		configRepo:    configRepo,
		logger:        logger,
	}
}

// Get assembles the dashboard for the current tenant. Sales are summed
// from the start of the current calendar month, the reorder list uses the
// tenant's configured threshold.
func (s *DashboardService) Get(ctx context.Context) (*domain.DashboardDTO, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUserContextRequired
	}

	counts, err := s.orderRepo.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}

	customerCount, err := s.customerRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count customers: %w", err)
	}

	now := time.Now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	monthlyTotal, err := s.saleRepo.TotalSince(ctx, monthStart)
	if err != nil {
		return nil, fmt.Errorf("failed to sum monthly sales: %w", err)
	}

	recent, err := s.orderRepo.Recent(ctx, recentOrderLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load recent orders: %w", err)
	}

	cfg, err := s.configRepo.GetOrCreate(ctx, userCtx.TenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to load tenant config: %w", err)
	}
	lowStock, err := s.inventoryRepo.ListBelowQuantity(ctx, cfg.LowStockThreshold)
	if err != nil {
		return nil, fmt.Errorf("failed to load low stock items: %w", err)
	}

	recentDTOs := make([]domain.WorkOrderDTO, len(recent))
	for i := range recent {
		recentDTOs[i] = mapper.ToWorkOrderDTO(&recent[i])
	}
	lowStockDTOs := make([]domain.InventoryItemDTO, len(lowStock))
	for i := range lowStock {
		lowStockDTOs[i] = mapper.ToInventoryItemDTO(&lowStock[i])
	}

	return &domain.DashboardDTO{
		PendingOrders:     counts[domain.OrderStatusPending],
		InProgressOrders:  counts[domain.OrderStatusInProgress],
		FinishedOrders:    counts[domain.OrderStatusFinished],
		DeliveredOrders:   counts[domain.OrderStatusDelivered],
		CustomerCount:     customerCount,
		MonthlySalesTotal: monthlyTotal.StringFixed(2),
		RecentOrders:      recentDTOs,
		LowStockItems:     lowStockDTOs,
	}, nil
}
