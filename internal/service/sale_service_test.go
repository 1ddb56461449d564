package service_test

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taller-labs/workshop-api/internal/domain"
	"github.com/taller-labs/workshop-api/internal/events"
	"github.com/taller-labs/workshop-api/internal/repository"
	"github.com/taller-labs/workshop-api/internal/service"
	"github.com/taller-labs/workshop-api/internal/testutil"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type saleTestEnv struct {
	db     *gorm.DB
	svc    *service.SaleService
	tenant *domain.Tenant
	seller *domain.Employee
	ctx    context.Context
}

func setupSaleTest(t *testing.T) *saleTestEnv {
	db := testutil.SetupTestDB(t)

	tenant := testutil.CreateTestTenant(t, db, "Test Workshop")
	seller := testutil.CreateTestEmployee(t, db, tenant.ID, "Seller", domain.RoleSalesperson)
	testutil.CreateTestConfig(t, db, tenant.ID)

	svc := service.NewSaleService(
		repository.NewSaleRepository(db),
		repository.NewInventoryRepository(db),
		repository.NewCustomerRepository(db),
		repository.NewTenantConfigRepository(db),
		events.NewFeed(),
		zap.NewNop(),
	)

	return &saleTestEnv{
		db:     db,
		svc:    svc,
		tenant: tenant,
		seller: seller,
		ctx:    testutil.ContextFor(seller),
	}
}

func (e *saleTestEnv) createItem(t *testing.T, name, price string, quantity int) *domain.InventoryItem {
	t.Helper()
	item := &domain.InventoryItem{
		TenantID: e.tenant.ID,
		Name:     name,
		Price:    decimal.RequireFromString(price),
		Quantity: quantity,
	}
	require.NoError(t, e.db.Create(item).Error)
	return item
}

func (e *saleTestEnv) stockOf(t *testing.T, itemID uuid.UUID) int {
	t.Helper()
	var item domain.InventoryItem
	require.NoError(t, e.db.First(&item, "id = ?", itemID).Error)
	return item.Quantity
}

func TestSaleService_ConcurrentCommits(t *testing.T) {
	env := setupSaleTest(t)
	item := env.createItem(t, "Charger", "15.50", 10)

	// sqlite has a single writer; cap the pool so the two commits queue
	// instead of failing busy
	sqlDB, err := env.db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	results := make(chan error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.svc.Commit(env.ctx, &domain.CreateSaleRequest{
				PaymentMethod: domain.PaymentCash,
				Items:         []domain.SaleLineRequest{{ItemID: item.ID, Quantity: 6}},
			})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	succeeded := 0
	var failures []error
	for err := range results {
		if err == nil {
			succeeded++
		} else {
			failures = append(failures, err)
		}
	}

	// Combined quantity overdraws the stock, exactly one commit may land
	assert.Equal(t, 1, succeeded)
	require.Len(t, failures, 1)
	assert.ErrorIs(t, failures[0], service.ErrInsufficientStock)

	assert.Equal(t, 4, env.stockOf(t, item.ID))

	var saleCount int64
	require.NoError(t, env.db.Model(&domain.Sale{}).Count(&saleCount).Error)
	assert.Equal(t, int64(1), saleCount)
}

func TestSaleService_Commit(t *testing.T) {
	t.Run("records sale and decrements stock", func(t *testing.T) {
		env := setupSaleTest(t)
		charger := env.createItem(t, "Charger", "15.50", 10)
		caseItem := env.createItem(t, "Case", "10.00", 5)

		dto, err := env.svc.Commit(env.ctx, &domain.CreateSaleRequest{
			PaymentMethod: domain.PaymentCash,
			Items: []domain.SaleLineRequest{
				{ItemID: charger.ID, Quantity: 1},
				{ItemID: caseItem.ID, Quantity: 1},
			},
		})
		require.NoError(t, err)

		// default tax is 16%
		assert.Equal(t, "25.50", dto.Subtotal)
		assert.Equal(t, "4.08", dto.Tax)
		assert.Equal(t, "29.58", dto.Total)
		assert.Len(t, dto.Items, 2)

		assert.Equal(t, 9, env.stockOf(t, charger.ID))
		assert.Equal(t, 4, env.stockOf(t, caseItem.ID))
	})

	t.Run("snapshots name and price at sale time", func(t *testing.T) {
		env := setupSaleTest(t)
		item := env.createItem(t, "Battery", "20.00", 10)

		dto, err := env.svc.Commit(env.ctx, &domain.CreateSaleRequest{
			PaymentMethod: domain.PaymentCard,
			Items:         []domain.SaleLineRequest{{ItemID: item.ID, Quantity: 2}},
		})
		require.NoError(t, err)

		require.Len(t, dto.Items, 1)
		assert.Equal(t, "Battery", dto.Items[0].Name)
		assert.Equal(t, "20.00", dto.Items[0].Price)
		assert.Equal(t, "40.00", dto.Items[0].Subtotal)
	})

	t.Run("overdraw rolls back the whole sale", func(t *testing.T) {
		env := setupSaleTest(t)
		plenty := env.createItem(t, "Plenty", "5.00", 100)
		scarce := env.createItem(t, "Scarce", "50.00", 1)

		_, err := env.svc.Commit(env.ctx, &domain.CreateSaleRequest{
			PaymentMethod: domain.PaymentCash,
			Items: []domain.SaleLineRequest{
				{ItemID: plenty.ID, Quantity: 10},
				{ItemID: scarce.ID, Quantity: 2},
			},
		})
		assert.ErrorIs(t, err, service.ErrInsufficientStock)

		// Nothing was written
		assert.Equal(t, 100, env.stockOf(t, plenty.ID))
		assert.Equal(t, 1, env.stockOf(t, scarce.ID))

		var count int64
		require.NoError(t, env.db.Model(&domain.Sale{}).Count(&count).Error)
		assert.Equal(t, int64(0), count)
	})

	t.Run("rejects unknown items", func(t *testing.T) {
		env := setupSaleTest(t)

		_, err := env.svc.Commit(env.ctx, &domain.CreateSaleRequest{
			PaymentMethod: domain.PaymentCash,
			Items:         []domain.SaleLineRequest{{ItemID: uuid.New(), Quantity: 1}},
		})
		assert.ErrorIs(t, err, service.ErrNotFound)
	})

	t.Run("rejects duplicate lines", func(t *testing.T) {
		env := setupSaleTest(t)
		item := env.createItem(t, "Cable", "3.00", 10)

		_, err := env.svc.Commit(env.ctx, &domain.CreateSaleRequest{
			PaymentMethod: domain.PaymentCash,
			Items: []domain.SaleLineRequest{
				{ItemID: item.ID, Quantity: 1},
				{ItemID: item.ID, Quantity: 2},
			},
		})
		assert.ErrorIs(t, err, service.ErrInvalidInput)
	})

	t.Run("rejects unknown customer", func(t *testing.T) {
		env := setupSaleTest(t)
		item := env.createItem(t, "Cable", "3.00", 10)
		badCustomer := uuid.New()

		_, err := env.svc.Commit(env.ctx, &domain.CreateSaleRequest{
			CustomerID:    &badCustomer,
			PaymentMethod: domain.PaymentCash,
			Items:         []domain.SaleLineRequest{{ItemID: item.ID, Quantity: 1}},
		})
		assert.ErrorIs(t, err, service.ErrNotFound)
	})
}

func TestSaleService_Edit(t *testing.T) {
	t.Run("unchanged line does not fail its own stock guard", func(t *testing.T) {
		env := setupSaleTest(t)
		// All stock is in the sale: editing without the credit would overdraw
		item := env.createItem(t, "Last unit", "30.00", 1)

		dto, err := env.svc.Commit(env.ctx, &domain.CreateSaleRequest{
			PaymentMethod: domain.PaymentCash,
			Items:         []domain.SaleLineRequest{{ItemID: item.ID, Quantity: 1}},
		})
		require.NoError(t, err)
		require.Equal(t, 0, env.stockOf(t, item.ID))

		method := domain.PaymentCard
		updated, err := env.svc.Edit(env.ctx, dto.ID, &domain.UpdateSaleRequest{
			PaymentMethod: &method,
			Items:         []domain.SaleLineRequest{{ItemID: item.ID, Quantity: 1}},
		})
		require.NoError(t, err)

		assert.Equal(t, domain.PaymentCard, updated.PaymentMethod)
		assert.Equal(t, 0, env.stockOf(t, item.ID))
	})

	t.Run("reducing a line returns stock", func(t *testing.T) {
		env := setupSaleTest(t)
		item := env.createItem(t, "Screen", "80.00", 10)

		dto, err := env.svc.Commit(env.ctx, &domain.CreateSaleRequest{
			PaymentMethod: domain.PaymentCash,
			Items:         []domain.SaleLineRequest{{ItemID: item.ID, Quantity: 3}},
		})
		require.NoError(t, err)
		require.Equal(t, 7, env.stockOf(t, item.ID))

		updated, err := env.svc.Edit(env.ctx, dto.ID, &domain.UpdateSaleRequest{
			Items: []domain.SaleLineRequest{{ItemID: item.ID, Quantity: 1}},
		})
		require.NoError(t, err)

		assert.Equal(t, 9, env.stockOf(t, item.ID))
		assert.Equal(t, "80.00", updated.Subtotal)
	})

	t.Run("overdraw on edit rolls everything back", func(t *testing.T) {
		env := setupSaleTest(t)
		item := env.createItem(t, "Adapter", "12.00", 5)

		dto, err := env.svc.Commit(env.ctx, &domain.CreateSaleRequest{
			PaymentMethod: domain.PaymentCash,
			Items:         []domain.SaleLineRequest{{ItemID: item.ID, Quantity: 2}},
		})
		require.NoError(t, err)
		require.Equal(t, 3, env.stockOf(t, item.ID))

		// 2 in the sale + 3 on hand = 5 available; ask for 6
		_, err = env.svc.Edit(env.ctx, dto.ID, &domain.UpdateSaleRequest{
			Items: []domain.SaleLineRequest{{ItemID: item.ID, Quantity: 6}},
		})
		assert.ErrorIs(t, err, service.ErrInsufficientStock)

		// Stock and sale are unchanged
		assert.Equal(t, 3, env.stockOf(t, item.ID))
		reloaded, err := env.svc.GetByID(env.ctx, dto.ID)
		require.NoError(t, err)
		require.Len(t, reloaded.Items, 1)
		assert.Equal(t, 2, reloaded.Items[0].Quantity)
	})

	t.Run("recomputes totals", func(t *testing.T) {
		env := setupSaleTest(t)
		cheap := env.createItem(t, "Cheap", "1.00", 10)
		dear := env.createItem(t, "Dear", "100.00", 10)

		dto, err := env.svc.Commit(env.ctx, &domain.CreateSaleRequest{
			PaymentMethod: domain.PaymentCash,
			Items:         []domain.SaleLineRequest{{ItemID: cheap.ID, Quantity: 1}},
		})
		require.NoError(t, err)

		updated, err := env.svc.Edit(env.ctx, dto.ID, &domain.UpdateSaleRequest{
			Items: []domain.SaleLineRequest{{ItemID: dear.ID, Quantity: 1}},
		})
		require.NoError(t, err)

		assert.Equal(t, "100.00", updated.Subtotal)
		assert.Equal(t, "16.00", updated.Tax)
		assert.Equal(t, "116.00", updated.Total)

		// The cheap item got its unit back
		assert.Equal(t, 10, env.stockOf(t, cheap.ID))
		assert.Equal(t, 9, env.stockOf(t, dear.ID))
	})
}

func TestSaleService_Delete(t *testing.T) {
	env := setupSaleTest(t)
	item := env.createItem(t, "Speaker", "45.00", 8)

	dto, err := env.svc.Commit(env.ctx, &domain.CreateSaleRequest{
		PaymentMethod: domain.PaymentTransfer,
		Items:         []domain.SaleLineRequest{{ItemID: item.ID, Quantity: 3}},
	})
	require.NoError(t, err)
	require.Equal(t, 5, env.stockOf(t, item.ID))

	require.NoError(t, env.svc.Delete(env.ctx, dto.ID))

	// Stock restored, sale and lines gone
	assert.Equal(t, 8, env.stockOf(t, item.ID))

	_, err = env.svc.GetByID(env.ctx, dto.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)

	var count int64
	require.NoError(t, env.db.Model(&domain.SaleItem{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestSaleService_TenantIsolation(t *testing.T) {
	env := setupSaleTest(t)
	item := env.createItem(t, "Tool", "25.00", 4)

	dto, err := env.svc.Commit(env.ctx, &domain.CreateSaleRequest{
		PaymentMethod: domain.PaymentCash,
		Items:         []domain.SaleLineRequest{{ItemID: item.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	otherTenant := testutil.CreateTestTenant(t, env.db, "Other Workshop")
	otherSeller := testutil.CreateTestEmployee(t, env.db, otherTenant.ID, "Other Seller", domain.RoleSalesperson)
	otherCtx := testutil.ContextFor(otherSeller)

	_, err = env.svc.GetByID(otherCtx, dto.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)

	// Another tenant cannot sell this tenant's stock
	_, err = env.svc.Commit(otherCtx, &domain.CreateSaleRequest{
		PaymentMethod: domain.PaymentCash,
		Items:         []domain.SaleLineRequest{{ItemID: item.ID, Quantity: 1}},
	})
	assert.ErrorIs(t, err, service.ErrNotFound)
}
