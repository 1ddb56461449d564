package jobs

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/taller-labs/workshop-api/internal/domain"
	"github.com/taller-labs/workshop-api/internal/repository"
	"go.uber.org/zap"
)

// LowStockJobName is the name of the low stock sweep job
const LowStockJobName = "low_stock_sweep"

// lowStockJobTimeout bounds one full sweep across all tenants
const lowStockJobTimeout = 5 * time.Minute

// LowStockJob sweeps every tenant's inventory and notifies its admins
// about items at or below the configured reorder threshold. Tenants that
// disabled low stock notifications are skipped.
type LowStockJob struct {
	configRepo       *repository.TenantConfigRepository
	inventoryRepo    *repository.InventoryRepository
	employeeRepo     *repository.EmployeeRepository
	notificationRepo *repository.NotificationRepository
	logger           *zap.Logger
}

func NewLowStockJob(
	configRepo *repository.TenantConfigRepository,
	inventoryRepo *repository.InventoryRepository,
	employeeRepo *repository.EmployeeRepository,
	notificationRepo *repository.NotificationRepository,
	logger *zap.Logger,
) *LowStockJob {
	return &LowStockJob{
		configRepo:       configRepo,
		inventoryRepo:    inventoryRepo,
		employeeRepo:     employeeRepo,
		notificationRepo: notificationRepo,
		logger:           logger,
	}
}

// Run executes one sweep. It is called by the scheduler.
func (j *LowStockJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), lowStockJobTimeout)
	defer cancel()

	start := time.Now()

	tenantIDs, err := j.configRepo.AllTenantIDs(ctx)
	if err != nil {
		j.logger.Error("low stock sweep failed to list tenants", zap.Error(err))
		return
	}

	notified := 0
	for _, tenantID := range tenantIDs {
		count, err := j.sweepTenant(ctx, tenantID)
		if err != nil {
			j.logger.Error("low stock sweep failed for tenant",
				zap.String("tenantID", tenantID.String()),
				zap.Error(err))
			continue
		}
		notified += count
	}

	j.logger.Info("low stock sweep completed",
		zap.Int("tenants", len(tenantIDs)),
		zap.Int("notifications", notified),
		zap.Duration("duration", time.Since(start)))
}

func (j *LowStockJob) sweepTenant(ctx context.Context, tenantID uuid.UUID) (int, error) {
	cfg, err := j.configRepo.GetForTenant(ctx, tenantID)
	if err != nil {
		return 0, fmt.Errorf("failed to load config: %w", err)
	}
	if !cfg.NotifyLowStock {
		return 0, nil
	}

	items, err := j.inventoryRepo.ListBelowQuantityForTenant(ctx, tenantID, cfg.LowStockThreshold)
	if err != nil {
		return 0, fmt.Errorf("failed to list low stock items: %w", err)
	}
	if len(items) == 0 {
		return 0, nil
	}

	admins, err := j.employeeRepo.ListAdminsForTenant(ctx, tenantID)
	if err != nil {
		return 0, fmt.Errorf("failed to list admins: %w", err)
	}
	if len(admins) == 0 {
		return 0, nil
	}

	message := lowStockMessage(items)
	notifications := make([]domain.Notification, 0, len(admins))
	for _, admin := range admins {
		notifications = append(notifications, domain.Notification{
			TenantID:    tenantID,
			RecipientID: admin.ID,
			Title:       "Low stock alert",
			Message:     message,
			Icon:        "inventory",
			Link:        "/inventory?filter=low_stock",
		})
	}

	if err := j.notificationRepo.CreateBatch(ctx, notifications); err != nil {
		return 0, fmt.Errorf("failed to create notifications: %w", err)
	}
	return len(notifications), nil
}

// lowStockMessage lists up to five items by name, then summarizes the rest
func lowStockMessage(items []domain.InventoryItem) string {
	const maxNamed = 5

	names := make([]string, 0, maxNamed)
	for i, item := range items {
		if i == maxNamed {
			break
		}
		names = append(names, fmt.Sprintf("%s (%d left)", item.Name, item.Quantity))
	}

	msg := fmt.Sprintf("%d item(s) need restocking: %s", len(items), strings.Join(names, ", "))
	if len(items) > maxNamed {
		msg += fmt.Sprintf(" and %d more", len(items)-maxNamed)
	}
	return msg
}

// RegisterLowStockJob registers the sweep with the scheduler
func RegisterLowStockJob(scheduler *Scheduler, job *LowStockJob, cronExpr string) error {
	return scheduler.AddJob(LowStockJobName, cronExpr, job.Run)
}
