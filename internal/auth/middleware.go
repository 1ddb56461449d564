package auth

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/taller-labs/workshop-api/internal/domain"
	"go.uber.org/zap"
)

// ProfileLookup resolves the employee record behind a validated token.
// Implemented by repository.EmployeeRepository.
type ProfileLookup interface {
	GetForAuth(ctx context.Context, id uuid.UUID) (*domain.Employee, error)
}

// Middleware handles authentication for HTTP requests
type Middleware struct {
	tokens   *TokenManager
	profiles ProfileLookup
	logger   *zap.Logger
}

// NewMiddleware creates a new authentication middleware
func NewMiddleware(tokens *TokenManager, profiles ProfileLookup, logger *zap.Logger) *Middleware {
	return &Middleware{
		tokens:   tokens,
		profiles: profiles,
		logger:   logger,
	}
}

// Authenticate is the main authentication middleware
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			http.Error(w, "Unauthorized: missing authorization header", http.StatusUnauthorized)
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			http.Error(w, "Unauthorized: invalid authorization header format", http.StatusUnauthorized)
			return
		}

		userCtx, err := m.tokens.Validate(parts[1])
		if err != nil {
			m.logger.Warn("token validation failed",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("remote_addr", r.RemoteAddr),
				zap.Error(err),
			)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		// The token only proves who the caller was at login. Status,
		// role and tenant come from the current employee row, so a
		// deactivation or demotion takes effect on the next request
		// rather than at token expiry.
		employee, err := m.profiles.GetForAuth(r.Context(), userCtx.EmployeeID)
		if err != nil {
			m.logger.Warn("token subject lookup failed",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("user_id", userCtx.EmployeeID.String()),
				zap.Error(err),
			)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		if employee.TenantID != userCtx.TenantID || employee.Status != domain.EmployeeStatusActive {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		userCtx.Role = employee.Role
		userCtx.DisplayName = employee.Name
		userCtx.Email = employee.Email

		m.logger.Debug("request authenticated",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("user_id", userCtx.EmployeeID.String()),
			zap.String("tenant_id", userCtx.TenantID.String()),
			zap.String("role", string(userCtx.Role)),
			zap.Duration("auth_duration", time.Since(start)),
		)

		ctx := WithUserContext(r.Context(), userCtx)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole middleware ensures user has one of the specified roles
func (m *Middleware) RequireRole(roles ...domain.EmployeeRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userCtx, ok := FromContext(r.Context())
			if !ok {
				http.Error(w, "Forbidden: no user context", http.StatusForbidden)
				return
			}

			if !userCtx.HasAnyRole(roles...) {
				http.Error(w, "Forbidden: insufficient permissions", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin middleware ensures user has the admin role
func (m *Middleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userCtx, ok := FromContext(r.Context())
		if !ok {
			http.Error(w, "Forbidden: no user context", http.StatusForbidden)
			return
		}

		if !userCtx.IsAdmin() {
			http.Error(w, "Forbidden: admin access required", http.StatusForbidden)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RequireWriter middleware rejects read-only roles on mutating routes
func (m *Middleware) RequireWriter(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userCtx, ok := FromContext(r.Context())
		if !ok {
			http.Error(w, "Forbidden: no user context", http.StatusForbidden)
			return
		}

		if !userCtx.CanWrite() {
			http.Error(w, "Forbidden: read-only access", http.StatusForbidden)
			return
		}

		next.ServeHTTP(w, r)
	})
}
