package auth_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taller-labs/workshop-api/internal/auth"
	"github.com/taller-labs/workshop-api/internal/config"
	"github.com/taller-labs/workshop-api/internal/domain"
)

func newTestTokenManager(ttlSeconds int) *auth.TokenManager {
	return auth.NewTokenManager(&config.AuthConfig{
		JWTSecret: "test-secret-key-for-unit-tests",
		TokenTTL:  ttlSeconds,
		Issuer:    "workshop-api-test",
	})
}

func testEmployee() *domain.Employee {
	emp := &domain.Employee{
		TenantID: uuid.New(),
		Name:     "Ana Torres",
		Email:    "ana@example.com",
		Role:     domain.RoleAdmin,
		Status:   domain.EmployeeStatusActive,
	}
	emp.ID = uuid.New()
	return emp
}

func TestTokenManager_IssueAndValidate(t *testing.T) {
	tokens := newTestTokenManager(3600)
	emp := testEmployee()

	token, err := tokens.Issue(emp)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userCtx, err := tokens.Validate(token)
	require.NoError(t, err)

	assert.Equal(t, emp.ID, userCtx.EmployeeID)
	assert.Equal(t, emp.TenantID, userCtx.TenantID)
	assert.Equal(t, emp.Name, userCtx.DisplayName)
	assert.Equal(t, emp.Email, userCtx.Email)
	assert.Equal(t, domain.RoleAdmin, userCtx.Role)
}

func TestTokenManager_ExpiredToken(t *testing.T) {
	tokens := newTestTokenManager(-60)
	emp := testEmployee()

	token, err := tokens.Issue(emp)
	require.NoError(t, err)

	_, err = tokens.Validate(token)
	assert.ErrorIs(t, err, auth.ErrExpiredToken)
}

func TestTokenManager_WrongSecret(t *testing.T) {
	issuer := newTestTokenManager(3600)
	verifier := auth.NewTokenManager(&config.AuthConfig{
		JWTSecret: "a-different-secret",
		TokenTTL:  3600,
		Issuer:    "workshop-api-test",
	})

	token, err := issuer.Issue(testEmployee())
	require.NoError(t, err)

	_, err = verifier.Validate(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestTokenManager_WrongIssuer(t *testing.T) {
	issuer := auth.NewTokenManager(&config.AuthConfig{
		JWTSecret: "test-secret-key-for-unit-tests",
		TokenTTL:  3600,
		Issuer:    "someone-else",
	})
	verifier := newTestTokenManager(3600)

	token, err := issuer.Issue(testEmployee())
	require.NoError(t, err)

	_, err = verifier.Validate(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestTokenManager_GarbageToken(t *testing.T) {
	tokens := newTestTokenManager(3600)

	_, err := tokens.Validate("not.a.token")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestUserContext_Roles(t *testing.T) {
	t.Run("admin can write", func(t *testing.T) {
		u := &auth.UserContext{Role: domain.RoleAdmin}
		assert.True(t, u.IsAdmin())
		assert.True(t, u.CanWrite())
	})

	t.Run("technician can write but is not admin", func(t *testing.T) {
		u := &auth.UserContext{Role: domain.RoleTechnician}
		assert.False(t, u.IsAdmin())
		assert.True(t, u.IsTechnician())
		assert.True(t, u.CanWrite())
	})

	t.Run("viewer cannot write", func(t *testing.T) {
		u := &auth.UserContext{Role: domain.RoleViewer}
		assert.False(t, u.CanWrite())
	})
}
