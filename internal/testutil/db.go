// Package testutil provides shared helpers for package tests. Tests run
// against an in-memory SQLite database migrated from the domain models,
// so no external services are needed.
package testutil

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/taller-labs/workshop-api/internal/auth"
	"github.com/taller-labs/workshop-api/internal/database"
	"github.com/taller-labs/workshop-api/internal/domain"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var dbCounter int64

// SetupTestDB creates a fresh in-memory database for one test
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// A named shared-cache database keeps the schema alive across the
	// connections in gorm's pool but stays isolated per test
	name := fmt.Sprintf("test_%d", atomic.AddInt64(&dbCounter, 1))
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "failed to open test database")

	require.NoError(t, database.AutoMigrate(db), "failed to migrate test database")

	return db
}

// CreateTestTenant creates a tenant row
func CreateTestTenant(t *testing.T, db *gorm.DB, name string) *domain.Tenant {
	t.Helper()
	tenant := &domain.Tenant{Name: name}
	require.NoError(t, db.Create(tenant).Error)
	return tenant
}

// CreateTestEmployee creates an active employee with the given role
func CreateTestEmployee(t *testing.T, db *gorm.DB, tenantID uuid.UUID, name string, role domain.EmployeeRole) *domain.Employee {
	t.Helper()
	employee := &domain.Employee{
		TenantID: tenantID,
		Name:     name,
		Email:    fmt.Sprintf("%s@example.com", uuid.NewString()),
		Role:     role,
		Status:   domain.EmployeeStatusActive,
	}
	require.NoError(t, db.Create(employee).Error)
	return employee
}

// CreateTestCustomer creates a customer row
func CreateTestCustomer(t *testing.T, db *gorm.DB, tenantID uuid.UUID, name string) *domain.Customer {
	t.Helper()
	customer := &domain.Customer{
		TenantID: tenantID,
		Name:     name,
		Phone:    "555-0100",
		Email:    "customer@example.com",
	}
	require.NoError(t, db.Create(customer).Error)
	return customer
}

// CreateTestConfig creates the tenant's settings row with defaults
func CreateTestConfig(t *testing.T, db *gorm.DB, tenantID uuid.UUID) *domain.TenantConfig {
	t.Helper()
	cfg := domain.DefaultTenantConfig(tenantID)
	require.NoError(t, db.Create(&cfg).Error)
	return &cfg
}

// ContextFor builds a request context authenticated as the given employee
func ContextFor(employee *domain.Employee) context.Context {
	return auth.WithUserContext(context.Background(), &auth.UserContext{
		EmployeeID:  employee.ID,
		TenantID:    employee.TenantID,
		DisplayName: employee.Name,
		Email:       employee.Email,
		Role:        employee.Role,
	})
}
