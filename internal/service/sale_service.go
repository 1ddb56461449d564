package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/taller-labs/workshop-api/internal/auth"
	"github.com/taller-labs/workshop-api/internal/domain"
	"github.com/taller-labs/workshop-api/internal/events"
	"github.com/taller-labs/workshop-api/internal/mapper"
	"github.com/taller-labs/workshop-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type SaleService struct {
	saleRepo      *repository.SaleRepository
	inventoryRepo *repository.InventoryRepository
	customerRepo  *repository.CustomerRepository
	configRepo    *repository.TenantConfigRepository
	feed          *events.Feed
	logger        *zap.Logger
}

func NewSaleService(
	saleRepo *repository.SaleRepository,
	inventoryRepo *repository.InventoryRepository,
	customerRepo *repository.CustomerRepository,
	configRepo *repository.TenantConfigRepository,
	feed *events.Feed,
	logger *zap.Logger,
) *SaleService {
	return &SaleService{
		saleRepo:      saleRepo,
		inventoryRepo: inventoryRepo,
		customerRepo:  customerRepo,
		configRepo:    configRepo,
		feed:          feed,
		logger:        logger,
	}
}

// Commit records a sale: header, line items and guarded stock decrements
// in a single transaction. Overdrawing any line rolls the whole sale back.
func (s *SaleService) Commit(ctx context.Context, req *domain.CreateSaleRequest) (*domain.SaleDTO, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUserContextRequired
	}

	if req.CustomerID != nil {
		if _, err := s.customerRepo.GetByID(ctx, *req.CustomerID); err != nil {
			return nil, fmt.Errorf("customer not found: %w", ErrNotFound)
		}
	}

	cart, err := s.buildCart(ctx, req.Items)
	if err != nil {
		return nil, err
	}

	cfg, err := s.configRepo.GetOrCreate(ctx, userCtx.TenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to load tenant config: %w", err)
	}
	totals := cart.Totals(cfg.TaxPercent)

	sale := &domain.Sale{
		TenantID:      userCtx.TenantID,
		CustomerID:    req.CustomerID,
		EmployeeID:    userCtx.EmployeeID,
		PaymentMethod: req.PaymentMethod,
		Subtotal:      totals.Subtotal,
		Tax:           totals.Tax,
		Total:         totals.Total,
		SoldAt:        time.Now().UTC(),
	}

	err = s.saleRepo.Transaction(ctx, func(tx *gorm.DB) error {
		if err := s.saleRepo.CreateTx(tx, sale); err != nil {
			return fmt.Errorf("failed to create sale: %w", err)
		}
		if err := s.saleRepo.CreateItemsTx(tx, linesToItems(sale.ID, cart.Lines)); err != nil {
			return fmt.Errorf("failed to create sale items: %w", err)
		}
		return s.decrementLines(tx, cart.Lines)
	})
	if err != nil {
		return nil, err
	}

	s.feed.Publish(events.Event{
		Entity: "sale", Action: events.ActionCreated, EntityID: sale.ID, TenantID: userCtx.TenantID,
	})

	sale, err = s.saleRepo.GetByID(ctx, sale.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload sale: %w", err)
	}
	dto := mapper.ToSaleDTO(sale)
	return &dto, nil
}

// Edit replaces the line items of an existing sale. Previously sold
// quantities are restored, the new set is decremented with the same
// overdraw guard, and the stored totals are recomputed, all in one
// transaction.
func (s *SaleService) Edit(ctx context.Context, id uuid.UUID, req *domain.UpdateSaleRequest) (*domain.SaleDTO, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUserContextRequired
	}

	sale, err := s.saleRepo.GetByID(ctx, id)
	if err != nil {
		if isRecordNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get sale: %w", err)
	}

	if req.CustomerID != nil {
		if _, err := s.customerRepo.GetByID(ctx, *req.CustomerID); err != nil {
			return nil, fmt.Errorf("customer not found: %w", ErrNotFound)
		}
	}

	// Quantities already on this sale count as available again when
	// validating the replacement lines
	credit := make(map[uuid.UUID]int, len(sale.Items))
	for _, item := range sale.Items {
		credit[item.ItemID] += item.Quantity
	}
	cart, err := s.buildCartWithCredit(ctx, req.Items, credit)
	if err != nil {
		return nil, err
	}

	cfg, err := s.configRepo.GetOrCreate(ctx, userCtx.TenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to load tenant config: %w", err)
	}
	totals := cart.Totals(cfg.TaxPercent)

	oldItems := sale.Items

	err = s.saleRepo.Transaction(ctx, func(tx *gorm.DB) error {
		// Give the old quantities back before applying the new lines so
		// that an unchanged line does not fail its own guard
		for _, item := range oldItems {
			if err := s.inventoryRepo.RestoreStockTx(tx, item.ItemID, item.Quantity); err != nil {
				return fmt.Errorf("failed to restore stock: %w", err)
			}
		}
		if err := s.saleRepo.DeleteItemsTx(tx, sale.ID); err != nil {
			return fmt.Errorf("failed to delete sale items: %w", err)
		}
		if err := s.saleRepo.CreateItemsTx(tx, linesToItems(sale.ID, cart.Lines)); err != nil {
			return fmt.Errorf("failed to create sale items: %w", err)
		}
		if err := s.decrementLines(tx, cart.Lines); err != nil {
			return err
		}

		sale.CustomerID = req.CustomerID
		if req.PaymentMethod != nil {
			sale.PaymentMethod = *req.PaymentMethod
		}
		sale.Subtotal = totals.Subtotal
		sale.Tax = totals.Tax
		sale.Total = totals.Total
		sale.Items = nil
		return s.saleRepo.UpdateTx(tx, sale)
	})
	if err != nil {
		return nil, err
	}

	s.feed.Publish(events.Event{
		Entity: "sale", Action: events.ActionUpdated, EntityID: sale.ID, TenantID: userCtx.TenantID,
	})

	sale, err = s.saleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to reload sale: %w", err)
	}
	dto := mapper.ToSaleDTO(sale)
	return &dto, nil
}

// Delete removes a sale and returns its quantities to inventory
func (s *SaleService) Delete(ctx context.Context, id uuid.UUID) error {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return ErrUserContextRequired
	}

	sale, err := s.saleRepo.GetByID(ctx, id)
	if err != nil {
		if isRecordNotFound(err) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get sale: %w", err)
	}

	err = s.saleRepo.Transaction(ctx, func(tx *gorm.DB) error {
		for _, item := range sale.Items {
			if err := s.inventoryRepo.RestoreStockTx(tx, item.ItemID, item.Quantity); err != nil {
				return fmt.Errorf("failed to restore stock: %w", err)
			}
		}
		if err := s.saleRepo.DeleteItemsTx(tx, sale.ID); err != nil {
			return fmt.Errorf("failed to delete sale items: %w", err)
		}
		return s.saleRepo.DeleteTx(tx, sale.ID)
	})
	if err != nil {
		return err
	}

	s.feed.Publish(events.Event{
		Entity: "sale", Action: events.ActionDeleted, EntityID: sale.ID, TenantID: userCtx.TenantID,
	})
	return nil
}

func (s *SaleService) GetByID(ctx context.Context, id uuid.UUID) (*domain.SaleDTO, error) {
	sale, err := s.saleRepo.GetByID(ctx, id)
	if err != nil {
		if isRecordNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get sale: %w", err)
	}
	dto := mapper.ToSaleDTO(sale)
	return &dto, nil
}

func (s *SaleService) List(ctx context.Context, page, pageSize int, from, to *time.Time) ([]domain.SaleDTO, int64, error) {
	sales, total, err := s.saleRepo.List(ctx, page, pageSize, from, to)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list sales: %w", err)
	}

	dtos := make([]domain.SaleDTO, 0, len(sales))
	for i := range sales {
		dtos = append(dtos, mapper.ToSaleDTO(&sales[i]))
	}
	return dtos, total, nil
}

// buildCart resolves the requested lines against current inventory,
// snapshotting prices server-side.
func (s *SaleService) buildCart(ctx context.Context, lines []domain.SaleLineRequest) (*domain.Cart, error) {
	return s.buildCartWithCredit(ctx, lines, nil)
}

func (s *SaleService) buildCartWithCredit(ctx context.Context, lines []domain.SaleLineRequest, credit map[uuid.UUID]int) (*domain.Cart, error) {
	ids := make([]uuid.UUID, 0, len(lines))
	seen := make(map[uuid.UUID]int, len(lines))
	for _, line := range lines {
		if line.Quantity <= 0 {
			return nil, fmt.Errorf("%w: quantity must be positive", ErrInvalidInput)
		}
		if _, dup := seen[line.ItemID]; dup {
			return nil, fmt.Errorf("%w: duplicate item %s", ErrInvalidInput, line.ItemID)
		}
		seen[line.ItemID] = line.Quantity
		ids = append(ids, line.ItemID)
	}

	items, err := s.inventoryRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load inventory: %w", err)
	}
	if len(items) != len(ids) {
		return nil, fmt.Errorf("inventory item not found: %w", ErrNotFound)
	}

	cart := &domain.Cart{}
	for i := range items {
		item := &items[i]
		if credit != nil {
			item.Quantity += credit[item.ID]
		}
		for n := 0; n < seen[item.ID]; n++ {
			if err := cart.AddItem(item); err != nil {
				return nil, fmt.Errorf("%w: %s", ErrInsufficientStock, item.Name)
			}
		}
	}
	return cart, nil
}

// decrementLines applies the guarded stock decrement per line
func (s *SaleService) decrementLines(tx *gorm.DB, lines []domain.CartLine) error {
	for _, line := range lines {
		affected, err := s.inventoryRepo.DecrementStockTx(tx, line.ItemID, line.Quantity)
		if err != nil {
			return fmt.Errorf("failed to decrement stock: %w", err)
		}
		if affected == 0 {
			return fmt.Errorf("%w: %s", ErrInsufficientStock, line.Name)
		}
	}
	return nil
}

func linesToItems(saleID uuid.UUID, lines []domain.CartLine) []domain.SaleItem {
	items := make([]domain.SaleItem, 0, len(lines))
	for _, line := range lines {
		items = append(items, domain.SaleItem{
			SaleID:   saleID,
			ItemID:   line.ItemID,
			Name:     line.Name,
			Price:    line.Price,
			Quantity: line.Quantity,
			Subtotal: line.Subtotal,
		})
	}
	return items
}
