package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taller-labs/workshop-api/internal/auth"
	"github.com/taller-labs/workshop-api/internal/domain"
	"github.com/taller-labs/workshop-api/internal/repository"
	"github.com/taller-labs/workshop-api/internal/testutil"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type middlewareTestEnv struct {
	db     *gorm.DB
	tokens *auth.TokenManager
	mw     *auth.Middleware
	tenant *domain.Tenant
}

func setupMiddlewareTest(t *testing.T) *middlewareTestEnv {
	db := testutil.SetupTestDB(t)
	tokens := newTestTokenManager(3600)
	mw := auth.NewMiddleware(tokens, repository.NewEmployeeRepository(db), zap.NewNop())
	tenant := testutil.CreateTestTenant(t, db, "Test Workshop")
	return &middlewareTestEnv{db: db, tokens: tokens, mw: mw, tenant: tenant}
}

// serve runs a request with the given bearer token through Authenticate
// and returns the response plus the user context the inner handler saw.
func (e *middlewareTestEnv) serve(t *testing.T, token string) (*httptest.ResponseRecorder, *auth.UserContext) {
	t.Helper()

	var captured *auth.UserContext
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured, _ = auth.FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.mw.Authenticate(next).ServeHTTP(rec, req)
	return rec, captured
}

func TestMiddleware_Authenticate(t *testing.T) {
	t.Run("active account passes", func(t *testing.T) {
		env := setupMiddlewareTest(t)
		emp := testutil.CreateTestEmployee(t, env.db, env.tenant.ID, "Admin", domain.RoleAdmin)
		token, err := env.tokens.Issue(emp)
		require.NoError(t, err)

		rec, userCtx := env.serve(t, token)

		assert.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, userCtx)
		assert.Equal(t, emp.ID, userCtx.EmployeeID)
		assert.True(t, userCtx.IsAdmin())
	})

	t.Run("deactivated account is rejected before token expiry", func(t *testing.T) {
		env := setupMiddlewareTest(t)
		emp := testutil.CreateTestEmployee(t, env.db, env.tenant.ID, "Admin", domain.RoleAdmin)
		token, err := env.tokens.Issue(emp)
		require.NoError(t, err)

		require.NoError(t, env.db.Model(&domain.Employee{}).
			Where("id = ?", emp.ID).
			Update("status", domain.EmployeeStatusInactive).Error)

		rec, _ := env.serve(t, token)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("demotion applies on the next request", func(t *testing.T) {
		env := setupMiddlewareTest(t)
		emp := testutil.CreateTestEmployee(t, env.db, env.tenant.ID, "Former Admin", domain.RoleAdmin)
		token, err := env.tokens.Issue(emp)
		require.NoError(t, err)

		require.NoError(t, env.db.Model(&domain.Employee{}).
			Where("id = ?", emp.ID).
			Update("role", domain.RoleViewer).Error)

		rec, userCtx := env.serve(t, token)

		assert.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, userCtx)
		assert.Equal(t, domain.RoleViewer, userCtx.Role)
		assert.False(t, userCtx.IsAdmin())
	})

	t.Run("deleted account is rejected", func(t *testing.T) {
		env := setupMiddlewareTest(t)
		emp := testutil.CreateTestEmployee(t, env.db, env.tenant.ID, "Gone", domain.RoleTechnician)
		token, err := env.tokens.Issue(emp)
		require.NoError(t, err)

		require.NoError(t, env.db.Delete(&domain.Employee{}, "id = ?", emp.ID).Error)

		rec, _ := env.serve(t, token)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("missing header", func(t *testing.T) {
		env := setupMiddlewareTest(t)
		rec, _ := env.serve(t, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		env := setupMiddlewareTest(t)
		rec, _ := env.serve(t, "not-a-token")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
