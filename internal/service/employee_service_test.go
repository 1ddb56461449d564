package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taller-labs/workshop-api/internal/auth"
	"github.com/taller-labs/workshop-api/internal/config"
	"github.com/taller-labs/workshop-api/internal/domain"
	"github.com/taller-labs/workshop-api/internal/repository"
	"github.com/taller-labs/workshop-api/internal/service"
	"github.com/taller-labs/workshop-api/internal/testutil"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type employeeTestEnv struct {
	db     *gorm.DB
	svc    *service.EmployeeService
	tokens *auth.TokenManager
}

func setupEmployeeTest(t *testing.T) *employeeTestEnv {
	db := testutil.SetupTestDB(t)

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

	return &employeeTestEnv{db: db, svc: svc, tokens: tokens}
}

func (e *employeeTestEnv) register(t *testing.T, email string) *domain.LoginResponse {
	t.Helper()
	resp, err := e.svc.Register(context.Background(), &domain.RegisterRequest{
		WorkshopName: "Registered Workshop",
		Name:         "Owner",
		Email:        email,
		Password:     "correct-horse",
	})
	require.NoError(t, err)
	return resp
}

func (e *employeeTestEnv) adminCtx(t *testing.T, resp *domain.LoginResponse) context.Context {
	t.Helper()
	userCtx, err := e.tokens.Validate(resp.Token)
	require.NoError(t, err)
	return auth.WithUserContext(context.Background(), userCtx)
}

func TestEmployeeService_Register(t *testing.T) {
	t.Run("creates tenant, config and admin together", func(t *testing.T) {
		env := setupEmployeeTest(t)

		resp := env.register(t, "owner@example.com")

		assert.NotEmpty(t, resp.Token)
		assert.Equal(t, domain.RoleAdmin, resp.Employee.Role)
		assert.Equal(t, domain.EmployeeStatusActive, resp.Employee.Status)

		// The token carries the new tenant
		userCtx, err := env.tokens.Validate(resp.Token)
		require.NoError(t, err)

		var cfg domain.TenantConfig
		require.NoError(t, env.db.First(&cfg, "tenant_id = ?", userCtx.TenantID).Error)
		assert.Equal(t, "16", cfg.TaxPercent.String())

		var tenant domain.Tenant
		require.NoError(t, env.db.First(&tenant, "id = ?", userCtx.TenantID).Error)
		assert.Equal(t, "Registered Workshop", tenant.Name)
	})

	t.Run("rejects duplicate email", func(t *testing.T) {
		env := setupEmployeeTest(t)
		env.register(t, "owner@example.com")

		_, err := env.svc.Register(context.Background(), &domain.RegisterRequest{
			WorkshopName: "Second Workshop",
			Name:         "Copycat",
			Email:        "owner@example.com",
			Password:     "another-pass",
		})
		assert.ErrorIs(t, err, service.ErrEmailTaken)
	})
}

func TestEmployeeService_Login(t *testing.T) {
	env := setupEmployeeTest(t)
	env.register(t, "owner@example.com")

	t.Run("valid credentials", func(t *testing.T) {
		resp, err := env.svc.Login(context.Background(), &domain.LoginRequest{
			Email:    "owner@example.com",
			Password: "correct-horse",
		})
		require.NoError(t, err)
		assert.NotEmpty(t, resp.Token)
	})

	t.Run("wrong password and unknown email look the same", func(t *testing.T) {
		_, err := env.svc.Login(context.Background(), &domain.LoginRequest{
			Email:    "owner@example.com",
			Password: "wrong-password",
		})
		assert.ErrorIs(t, err, service.ErrInvalidCredentials)

		_, err = env.svc.Login(context.Background(), &domain.LoginRequest{
			Email:    "nobody@example.com",
			Password: "whatever-pass",
		})
		assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	})

	t.Run("inactive account cannot log in", func(t *testing.T) {
		require.NoError(t, env.db.Model(&domain.Employee{}).
			Where("email = ?", "owner@example.com").
			Update("status", domain.EmployeeStatusInactive).Error)

		_, err := env.svc.Login(context.Background(), &domain.LoginRequest{
			Email:    "owner@example.com",
			Password: "correct-horse",
		})
		assert.ErrorIs(t, err, service.ErrAccountInactive)
	})
}

func TestEmployeeService_InviteAndActivate(t *testing.T) {
	env := setupEmployeeTest(t)
	owner := env.register(t, "owner@example.com")
	ctx := env.adminCtx(t, owner)

	dto, token, err := env.svc.Invite(ctx, &domain.InviteEmployeeRequest{
		Name:  "New Tech",
		Email: "tech@example.com",
		Role:  domain.RoleTechnician,
	})
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.Equal(t, domain.EmployeeStatusInvited, dto.Status)

	t.Run("invited account cannot log in yet", func(t *testing.T) {
		_, err := env.svc.Login(context.Background(), &domain.LoginRequest{
			Email:    "tech@example.com",
			Password: "anything-goes",
		})
		assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	})

	t.Run("activation sets password and logs in", func(t *testing.T) {
		resp, err := env.svc.Activate(context.Background(), &domain.ActivateEmployeeRequest{
			Token:    token,
			Password: "techs-password",
		})
		require.NoError(t, err)
		assert.Equal(t, domain.EmployeeStatusActive, resp.Employee.Status)

		_, err = env.svc.Login(context.Background(), &domain.LoginRequest{
			Email:    "tech@example.com",
			Password: "techs-password",
		})
		assert.NoError(t, err)
	})

	t.Run("invite token is single use", func(t *testing.T) {
		_, err := env.svc.Activate(context.Background(), &domain.ActivateEmployeeRequest{
			Token:    token,
			Password: "second-try",
		})
		assert.ErrorIs(t, err, service.ErrInvalidInviteToken)
	})

	t.Run("bogus token", func(t *testing.T) {
		_, err := env.svc.Activate(context.Background(), &domain.ActivateEmployeeRequest{
			Token:    "deadbeef",
			Password: "whatever-pass",
		})
		assert.ErrorIs(t, err, service.ErrInvalidInviteToken)
	})
}

func TestEmployeeService_SelfManagementGuards(t *testing.T) {
	env := setupEmployeeTest(t)
	owner := env.register(t, "owner@example.com")
	ctx := env.adminCtx(t, owner)
	ownerID := owner.Employee.ID

	t.Run("cannot demote own account", func(t *testing.T) {
		role := domain.RoleViewer
		_, err := env.svc.Update(ctx, ownerID, &domain.UpdateEmployeeRequest{Role: &role})
		assert.ErrorIs(t, err, service.ErrInvalidInput)
	})

	t.Run("cannot deactivate own account", func(t *testing.T) {
		status := domain.EmployeeStatusInactive
		_, err := env.svc.Update(ctx, ownerID, &domain.UpdateEmployeeRequest{Status: &status})
		assert.ErrorIs(t, err, service.ErrInvalidInput)
	})

	t.Run("cannot delete own account", func(t *testing.T) {
		err := env.svc.Delete(ctx, ownerID)
		assert.ErrorIs(t, err, service.ErrInvalidInput)
	})

	t.Run("can still edit own name and phone", func(t *testing.T) {
		name := "Renamed Owner"
		phone := "555-0101"
		dto, err := env.svc.Update(ctx, ownerID, &domain.UpdateEmployeeRequest{Name: &name, Phone: &phone})
		require.NoError(t, err)
		assert.Equal(t, "Renamed Owner", dto.Name)
		assert.Equal(t, "555-0101", dto.Phone)
	})
}

func TestEmployeeService_ListTechnicians(t *testing.T) {
	env := setupEmployeeTest(t)
	owner := env.register(t, "owner@example.com")
	ctx := env.adminCtx(t, owner)

	userCtx, err := env.tokens.Validate(owner.Token)
	require.NoError(t, err)

	testutil.CreateTestEmployee(t, env.db, userCtx.TenantID, "Active Tech", domain.RoleTechnician)
	inactive := testutil.CreateTestEmployee(t, env.db, userCtx.TenantID, "Inactive Tech", domain.RoleTechnician)
	require.NoError(t, env.db.Model(&domain.Employee{}).
		Where("id = ?", inactive.ID).
		Update("status", domain.EmployeeStatusInactive).Error)

	dtos, err := env.svc.ListTechnicians(ctx)
	require.NoError(t, err)

	require.Len(t, dtos, 1)
	assert.Equal(t, "Active Tech", dtos[0].Name)
}
