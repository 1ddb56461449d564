package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taller-labs/workshop-api/internal/domain"
	"github.com/taller-labs/workshop-api/internal/repository"
	"github.com/taller-labs/workshop-api/internal/service"
	"github.com/taller-labs/workshop-api/internal/testutil"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type notificationTestEnv struct {
	db       *gorm.DB
	svc      *service.NotificationService
	tenant   *domain.Tenant
	employee *domain.Employee
	ctx      context.Context
}

func setupNotificationTest(t *testing.T) *notificationTestEnv {
	db := testutil.SetupTestDB(t)

	tenant := testutil.CreateTestTenant(t, db, "Test Workshop")
	employee := testutil.CreateTestEmployee(t, db, tenant.ID, "Recipient", domain.RoleTechnician)

	svc := service.NewNotificationService(
		repository.NewNotificationRepository(db),
		zap.NewNop(),
	)

	return &notificationTestEnv{
		db:       db,
		svc:      svc,
		tenant:   tenant,
		employee: employee,
		ctx:      testutil.ContextFor(employee),
	}
}

func (e *notificationTestEnv) notify(t *testing.T, recipientID uuid.UUID, title string, read bool) *domain.Notification {
	t.Helper()
	n := &domain.Notification{
		TenantID:    e.tenant.ID,
		RecipientID: recipientID,
		Title:       title,
		Message:     "message body",
		IsRead:      read,
	}
	require.NoError(t, e.db.Create(n).Error)
	return n
}

func TestNotificationService_GetForCurrentUser(t *testing.T) {
	env := setupNotificationTest(t)

	for i := 0; i < 3; i++ {
		env.notify(t, env.employee.ID, "Unread", false)
	}
	env.notify(t, env.employee.ID, "Read", true)

	other := testutil.CreateTestEmployee(t, env.db, env.tenant.ID, "Other", domain.RoleViewer)
	env.notify(t, other.ID, "Not mine", false)

	t.Run("lists own notifications", func(t *testing.T) {
		result, err := env.svc.GetForCurrentUser(env.ctx, 1, 10, false)
		require.NoError(t, err)
		assert.Equal(t, int64(4), result.Total)
	})

	t.Run("unread only", func(t *testing.T) {
		result, err := env.svc.GetForCurrentUser(env.ctx, 1, 10, true)
		require.NoError(t, err)
		assert.Equal(t, int64(3), result.Total)
	})

	t.Run("paginates", func(t *testing.T) {
		result, err := env.svc.GetForCurrentUser(env.ctx, 1, 2, false)
		require.NoError(t, err)
		assert.Equal(t, int64(4), result.Total)
		assert.Equal(t, 2, result.TotalPages)
		assert.Len(t, result.Data.([]domain.NotificationDTO), 2)
	})

	t.Run("requires user context", func(t *testing.T) {
		_, err := env.svc.GetForCurrentUser(context.Background(), 1, 10, false)
		assert.ErrorIs(t, err, service.ErrUserContextRequired)
	})
}

func TestNotificationService_MarkAsRead(t *testing.T) {
	env := setupNotificationTest(t)

	t.Run("marks own notification", func(t *testing.T) {
		n := env.notify(t, env.employee.ID, "Unread", false)

		require.NoError(t, env.svc.MarkAsRead(env.ctx, n.ID))

		dto, err := env.svc.GetByID(env.ctx, n.ID)
		require.NoError(t, err)
		assert.True(t, dto.IsRead)
		assert.NotNil(t, dto.ReadAt)
	})

	t.Run("idempotent on already read", func(t *testing.T) {
		n := env.notify(t, env.employee.ID, "Read", true)
		assert.NoError(t, env.svc.MarkAsRead(env.ctx, n.ID))
	})

	t.Run("cannot touch another user's notification", func(t *testing.T) {
		other := testutil.CreateTestEmployee(t, env.db, env.tenant.ID, "Other", domain.RoleViewer)
		n := env.notify(t, other.ID, "Not mine", false)

		err := env.svc.MarkAsRead(env.ctx, n.ID)
		assert.ErrorIs(t, err, service.ErrNotificationNotOwned)
	})

	t.Run("unknown notification", func(t *testing.T) {
		err := env.svc.MarkAsRead(env.ctx, uuid.New())
		assert.ErrorIs(t, err, service.ErrNotFound)
	})
}

func TestNotificationService_MarkAllAsReadForUser(t *testing.T) {
	env := setupNotificationTest(t)

	for i := 0; i < 3; i++ {
		env.notify(t, env.employee.ID, "Unread", false)
	}
	other := testutil.CreateTestEmployee(t, env.db, env.tenant.ID, "Other", domain.RoleViewer)
	env.notify(t, other.ID, "Other unread", false)

	require.NoError(t, env.svc.MarkAllAsReadForUser(env.ctx))

	count, err := env.svc.GetUnreadCount(env.ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count.Count)

	// The other user's notification is untouched
	otherCount, err := env.svc.GetUnreadCount(testutil.ContextFor(other))
	require.NoError(t, err)
	assert.Equal(t, int64(1), otherCount.Count)
}

func TestNotificationService_GetUnreadCount(t *testing.T) {
	env := setupNotificationTest(t)

	count, err := env.svc.GetUnreadCount(env.ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count.Count)

	env.notify(t, env.employee.ID, "One", false)
	env.notify(t, env.employee.ID, "Two", false)
	env.notify(t, env.employee.ID, "Read", true)

	count, err = env.svc.GetUnreadCount(env.ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count.Count)
}
