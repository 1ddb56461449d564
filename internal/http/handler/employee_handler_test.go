package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taller-labs/workshop-api/internal/auth"
	"github.com/taller-labs/workshop-api/internal/config"
	"github.com/taller-labs/workshop-api/internal/domain"
	"github.com/taller-labs/workshop-api/internal/http/handler"
	"github.com/taller-labs/workshop-api/internal/repository"
	"github.com/taller-labs/workshop-api/internal/service"
	"github.com/taller-labs/workshop-api/internal/testutil"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type employeeHandlerEnv struct {
	db       *gorm.DB
	h        *handler.EmployeeHandler
	employee *domain.Employee
}

func setupEmployeeHandlerTest(t *testing.T, role domain.EmployeeRole) *employeeHandlerEnv {
	db := testutil.SetupTestDB(t)

	tenant := testutil.CreateTestTenant(t, db, "Test Workshop")
	employee := testutil.CreateTestEmployee(t, db, tenant.ID, "Profile Owner", role)

	tokens := auth.NewTokenManager(&config.AuthConfig{
		JWTSecret: "test-secret-key-for-unit-tests",
		TokenTTL:  3600,
		Issuer:    "workshop-api-test",
	})
	svc := service.NewEmployeeService(
		repository.NewEmployeeRepository(db),
		repository.NewTenantRepository(db),
		repository.NewTenantConfigRepository(db),
		tokens,
		zap.NewNop(),
	)

	return &employeeHandlerEnv{
		db:       db,
		h:        handler.NewEmployeeHandler(svc, zap.NewNop()),
		employee: employee,
	}
}

func (e *employeeHandlerEnv) request(method, body string) *http.Request {
	req := httptest.NewRequest(method, "/employees/me", strings.NewReader(body))
	return req.WithContext(testutil.ContextFor(e.employee))
}

func TestEmployeeHandler_Me(t *testing.T) {
	env := setupEmployeeHandlerTest(t, domain.RoleTechnician)

	rec := httptest.NewRecorder()
	env.h.Me(rec, env.request(http.MethodGet, ""))

	require.Equal(t, http.StatusOK, rec.Code)

	var dto domain.EmployeeDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dto))
	assert.Equal(t, env.employee.ID, dto.ID)
	assert.Equal(t, "Profile Owner", dto.Name)
}

func TestEmployeeHandler_UpdateMe(t *testing.T) {
	t.Run("updates own name and phone", func(t *testing.T) {
		env := setupEmployeeHandlerTest(t, domain.RoleTechnician)

		rec := httptest.NewRecorder()
		env.h.UpdateMe(rec, env.request(http.MethodPut, `{"name":"Renamed","phone":"555-0101"}`))

		require.Equal(t, http.StatusOK, rec.Code)

		var dto domain.EmployeeDTO
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dto))
		assert.Equal(t, "Renamed", dto.Name)
		assert.Equal(t, "555-0101", dto.Phone)
	})

	t.Run("rejects a role change", func(t *testing.T) {
		env := setupEmployeeHandlerTest(t, domain.RoleViewer)

		rec := httptest.NewRecorder()
		env.h.UpdateMe(rec, env.request(http.MethodPut, `{"role":"admin"}`))

		assert.Equal(t, http.StatusBadRequest, rec.Code)

		// The stored role is untouched
		var stored domain.Employee
		require.NoError(t, env.db.First(&stored, "id = ?", env.employee.ID).Error)
		assert.Equal(t, domain.RoleViewer, stored.Role)
	})

	t.Run("rejects a status change", func(t *testing.T) {
		env := setupEmployeeHandlerTest(t, domain.RoleTechnician)

		rec := httptest.NewRecorder()
		env.h.UpdateMe(rec, env.request(http.MethodPut, `{"status":"inactive"}`))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
