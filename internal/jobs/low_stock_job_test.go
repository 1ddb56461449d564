package jobs_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taller-labs/workshop-api/internal/domain"
	"github.com/taller-labs/workshop-api/internal/jobs"
	"github.com/taller-labs/workshop-api/internal/repository"
	"github.com/taller-labs/workshop-api/internal/testutil"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newLowStockJob(db *gorm.DB) *jobs.LowStockJob {
	return jobs.NewLowStockJob(
		repository.NewTenantConfigRepository(db),
		repository.NewInventoryRepository(db),
		repository.NewEmployeeRepository(db),
		repository.NewNotificationRepository(db),
		zap.NewNop(),
	)
}

func TestLowStockJob_NotifiesAdmins(t *testing.T) {
	db := testutil.SetupTestDB(t)

	tenant := testutil.CreateTestTenant(t, db, "Workshop")
	admin := testutil.CreateTestEmployee(t, db, tenant.ID, "Admin", domain.RoleAdmin)
	tech := testutil.CreateTestEmployee(t, db, tenant.ID, "Tech", domain.RoleTechnician)
	testutil.CreateTestConfig(t, db, tenant.ID) // threshold 10, notifications on

	low := &domain.InventoryItem{TenantID: tenant.ID, Name: "Screen", Price: decimal.NewFromInt(80), Quantity: 2}
	fine := &domain.InventoryItem{TenantID: tenant.ID, Name: "Cable", Price: decimal.NewFromInt(3), Quantity: 50}
	require.NoError(t, db.Create(low).Error)
	require.NoError(t, db.Create(fine).Error)

	newLowStockJob(db).Run()

	var notifications []domain.Notification
	require.NoError(t, db.Find(&notifications).Error)

	require.Len(t, notifications, 1)
	assert.Equal(t, admin.ID, notifications[0].RecipientID)
	assert.Equal(t, "Low stock alert", notifications[0].Title)
	assert.Contains(t, notifications[0].Message, "Screen")
	assert.NotContains(t, notifications[0].Message, "Cable")

	// Non-admins are not notified
	var techCount int64
	require.NoError(t, db.Model(&domain.Notification{}).Where("recipient_id = ?", tech.ID).Count(&techCount).Error)
	assert.Equal(t, int64(0), techCount)
}

func TestLowStockJob_RespectsTenantToggle(t *testing.T) {
	db := testutil.SetupTestDB(t)

	tenant := testutil.CreateTestTenant(t, db, "Quiet Workshop")
	testutil.CreateTestEmployee(t, db, tenant.ID, "Admin", domain.RoleAdmin)
	cfg := testutil.CreateTestConfig(t, db, tenant.ID)
	require.NoError(t, db.Model(cfg).Update("notify_low_stock", false).Error)

	item := &domain.InventoryItem{TenantID: tenant.ID, Name: "Screen", Price: decimal.NewFromInt(80), Quantity: 0}
	require.NoError(t, db.Create(item).Error)

	newLowStockJob(db).Run()

	var count int64
	require.NoError(t, db.Model(&domain.Notification{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestLowStockJob_SkipsHealthyTenants(t *testing.T) {
	db := testutil.SetupTestDB(t)

	tenant := testutil.CreateTestTenant(t, db, "Stocked Workshop")
	testutil.CreateTestEmployee(t, db, tenant.ID, "Admin", domain.RoleAdmin)
	testutil.CreateTestConfig(t, db, tenant.ID)

	item := &domain.InventoryItem{TenantID: tenant.ID, Name: "Cable", Price: decimal.NewFromInt(3), Quantity: 500}
	require.NoError(t, db.Create(item).Error)

	newLowStockJob(db).Run()

	var count int64
	require.NoError(t, db.Model(&domain.Notification{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}
