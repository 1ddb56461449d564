package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
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

type inventoryTestEnv struct {
	db     *gorm.DB
	svc    *service.InventoryService
	tenant *domain.Tenant
	ctx    context.Context
}

func setupInventoryTest(t *testing.T) *inventoryTestEnv {
	db := testutil.SetupTestDB(t)

	tenant := testutil.CreateTestTenant(t, db, "Test Workshop")
	admin := testutil.CreateTestEmployee(t, db, tenant.ID, "Admin", domain.RoleAdmin)

	svc := service.NewInventoryService(
		repository.NewInventoryRepository(db),
		repository.NewSupplierRepository(db),
		events.NewFeed(),
		zap.NewNop(),
	)

	return &inventoryTestEnv{
		db:     db,
		svc:    svc,
		tenant: tenant,
		ctx:    testutil.ContextFor(admin),
	}
}

func TestInventoryService_Create(t *testing.T) {
	t.Run("creates an item", func(t *testing.T) {
		env := setupInventoryTest(t)

		dto, err := env.svc.Create(env.ctx, &domain.CreateInventoryItemRequest{
			Name:     "Screen protector",
			Category: "accessories",
			Price:    "5.99",
			Quantity: 40,
		})
		require.NoError(t, err)

		assert.Equal(t, "Screen protector", dto.Name)
		assert.Equal(t, "5.99", dto.Price)
		assert.Equal(t, 40, dto.Quantity)
		assert.Equal(t, domain.StockNormal, dto.StockLevel)
	})

	t.Run("classifies stock level", func(t *testing.T) {
		env := setupInventoryTest(t)

		dto, err := env.svc.Create(env.ctx, &domain.CreateInventoryItemRequest{
			Name: "Rare part", Price: "99.00", Quantity: 0,
		})
		require.NoError(t, err)
		assert.Equal(t, domain.StockOut, dto.StockLevel)

		dto, err = env.svc.Create(env.ctx, &domain.CreateInventoryItemRequest{
			Name: "Low part", Price: "9.00", Quantity: 2,
		})
		require.NoError(t, err)
		assert.Equal(t, domain.StockLow, dto.StockLevel)
	})

	t.Run("rejects bad price", func(t *testing.T) {
		env := setupInventoryTest(t)

		_, err := env.svc.Create(env.ctx, &domain.CreateInventoryItemRequest{
			Name: "Bad", Price: "free", Quantity: 1,
		})
		assert.ErrorIs(t, err, service.ErrInvalidInput)

		_, err = env.svc.Create(env.ctx, &domain.CreateInventoryItemRequest{
			Name: "Negative", Price: "-1.00", Quantity: 1,
		})
		assert.ErrorIs(t, err, service.ErrInvalidInput)
	})

	t.Run("rejects unknown supplier", func(t *testing.T) {
		env := setupInventoryTest(t)
		badSupplier := uuid.New()

		_, err := env.svc.Create(env.ctx, &domain.CreateInventoryItemRequest{
			Name: "Part", Price: "10.00", Quantity: 1, SupplierID: &badSupplier,
		})
		assert.ErrorIs(t, err, service.ErrNotFound)
	})

	t.Run("links an existing supplier", func(t *testing.T) {
		env := setupInventoryTest(t)
		supplier := &domain.Supplier{
			TenantID: env.tenant.ID,
			Name:     "Parts Inc",
			Status:   domain.SupplierStatusActive,
		}
		require.NoError(t, env.db.Create(supplier).Error)

		dto, err := env.svc.Create(env.ctx, &domain.CreateInventoryItemRequest{
			Name: "Part", Price: "10.00", Quantity: 1, SupplierID: &supplier.ID,
		})
		require.NoError(t, err)
		require.NotNil(t, dto.SupplierID)
		assert.Equal(t, supplier.ID, *dto.SupplierID)
	})
}

func TestInventoryService_Update(t *testing.T) {
	env := setupInventoryTest(t)

	created, err := env.svc.Create(env.ctx, &domain.CreateInventoryItemRequest{
		Name: "Battery", Price: "20.00", Quantity: 10,
	})
	require.NoError(t, err)

	t.Run("patches only provided fields", func(t *testing.T) {
		newPrice := "22.50"
		dto, err := env.svc.Update(env.ctx, created.ID, &domain.UpdateInventoryItemRequest{
			Price: &newPrice,
		})
		require.NoError(t, err)

		assert.Equal(t, "22.50", dto.Price)
		assert.Equal(t, "Battery", dto.Name)
		assert.Equal(t, 10, dto.Quantity)
	})

	t.Run("rejects negative quantity", func(t *testing.T) {
		bad := -5
		_, err := env.svc.Update(env.ctx, created.ID, &domain.UpdateInventoryItemRequest{
			Quantity: &bad,
		})
		assert.ErrorIs(t, err, service.ErrInvalidInput)
	})

	t.Run("unknown item", func(t *testing.T) {
		name := "Ghost"
		_, err := env.svc.Update(env.ctx, uuid.New(), &domain.UpdateInventoryItemRequest{Name: &name})
		assert.ErrorIs(t, err, service.ErrNotFound)
	})
}

func TestInventoryService_List(t *testing.T) {
	env := setupInventoryTest(t)

	for _, spec := range []struct {
		name     string
		category string
	}{
		{"iPhone screen", "screens"},
		{"Pixel screen", "screens"},
		{"USB cable", "cables"},
	} {
		_, err := env.svc.Create(env.ctx, &domain.CreateInventoryItemRequest{
			Name: spec.name, Category: spec.category, Price: "10.00", Quantity: 5,
		})
		require.NoError(t, err)
	}

	t.Run("lists everything paginated", func(t *testing.T) {
		result, err := env.svc.List(env.ctx, 1, 2, "", "")
		require.NoError(t, err)
		assert.Equal(t, int64(3), result.Total)
		assert.Equal(t, 2, result.TotalPages)
		assert.Len(t, result.Data.([]domain.InventoryItemDTO), 2)
	})

	t.Run("filters by search", func(t *testing.T) {
		result, err := env.svc.List(env.ctx, 1, 20, "screen", "")
		require.NoError(t, err)
		assert.Equal(t, int64(2), result.Total)
	})

	t.Run("filters by category", func(t *testing.T) {
		result, err := env.svc.List(env.ctx, 1, 20, "", "cables")
		require.NoError(t, err)
		assert.Equal(t, int64(1), result.Total)
	})
}

func TestInventoryService_LowStock(t *testing.T) {
	env := setupInventoryTest(t)

	specs := map[string]int{"Empty": 0, "Low": 3, "Fine": 50}
	for name, qty := range specs {
		_, err := env.svc.Create(env.ctx, &domain.CreateInventoryItemRequest{
			Name: name, Price: "10.00", Quantity: qty,
		})
		require.NoError(t, err)
	}

	dtos, err := env.svc.LowStock(env.ctx, 10)
	require.NoError(t, err)

	require.Len(t, dtos, 2)
	// Lowest stock first
	assert.Equal(t, "Empty", dtos[0].Name)
	assert.Equal(t, "Low", dtos[1].Name)
}

func TestInventoryService_Delete(t *testing.T) {
	env := setupInventoryTest(t)

	created, err := env.svc.Create(env.ctx, &domain.CreateInventoryItemRequest{
		Name: "Doomed", Price: "1.00", Quantity: 1,
	})
	require.NoError(t, err)

	require.NoError(t, env.svc.Delete(env.ctx, created.ID))

	_, err = env.svc.GetByID(env.ctx, created.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)

	assert.ErrorIs(t, env.svc.Delete(env.ctx, created.ID), service.ErrNotFound)
}
