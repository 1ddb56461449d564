package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/taller-labs/workshop-api/internal/auth"
	"github.com/taller-labs/workshop-api/internal/config"
	"github.com/taller-labs/workshop-api/internal/database"
	"github.com/taller-labs/workshop-api/internal/http/handler"
	"github.com/taller-labs/workshop-api/internal/http/middleware"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Router struct {
	cfg                 *config.Config
	logger              *zap.Logger
	db                  *gorm.DB
	authMiddleware      *auth.Middleware
	rateLimiter         *middleware.RateLimiter
	authHandler         *handler.AuthHandler
	employeeHandler     *handler.EmployeeHandler
	customerHandler     *handler.CustomerHandler
	orderHandler        *handler.OrderHandler
	inventoryHandler    *handler.InventoryHandler
	supplierHandler     *handler.SupplierHandler
	saleHandler         *handler.SaleHandler
	notificationHandler *handler.NotificationHandler
	configHandler       *handler.ConfigHandler
	dashboardHandler    *handler.DashboardHandler
	eventsHandler       *handler.EventsHandler
}

func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	db *gorm.DB,
	authMiddleware *auth.Middleware,
	rateLimiter *middleware.RateLimiter,
	authHandler *handler.AuthHandler,
	employeeHandler *handler.EmployeeHandler,
	customerHandler *handler.CustomerHandler,
	orderHandler *handler.OrderHandler,
	inventoryHandler *handler.InventoryHandler,
	supplierHandler *handler.SupplierHandler,
	saleHandler *handler.SaleHandler,
	notificationHandler *handler.NotificationHandler,
	configHandler *handler.ConfigHandler,
	dashboardHandler *handler.DashboardHandler,
	eventsHandler *handler.EventsHandler,
) *Router {
	return &Router{
		cfg:                 cfg,
		logger:              logger,
		db:                  db,
		authMiddleware:      authMiddleware,
		rateLimiter:         rateLimiter,
		authHandler:         authHandler,
		employeeHandler:     employeeHandler,
		customerHandler:     customerHandler,
		orderHandler:        orderHandler,
		inventoryHandler:    inventoryHandler,
		supplierHandler:     supplierHandler,
		saleHandler:         saleHandler,
		notificationHandler: notificationHandler,
		configHandler:       configHandler,
		dashboardHandler:    dashboardHandler,
		eventsHandler:       eventsHandler,
	}
}

func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.Logging(rt.logger))
	r.Use(middleware.SecurityHeaders(&rt.cfg.Security))
	r.Use(middleware.CORS(&rt.cfg.CORS, rt.cfg.App.Environment, rt.logger))
	r.Use(rt.rateLimiter.LimitByIP)

	// Health check (basic liveness probe)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Database health check (readiness probe with pool stats)
	r.Get("/health/db", func(w http.ResponseWriter, r *http.Request) {
		stats, err := database.HealthCheckWithStats(rt.db)
		if err != nil {
			rt.logger.Error("database health check failed", zap.Error(err))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status":  "unhealthy",
				"error":   err.Error(),
				"service": "database",
			})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  "healthy",
			"service": "database",
			"stats": map[string]interface{}{
				"max_open_connections": stats.MaxOpenConnections,
				"open_connections":     stats.OpenConnections,
				"in_use":               stats.InUse,
				"idle":                 stats.Idle,
				"wait_count":           stats.WaitCount,
				"wait_duration_ms":     stats.WaitDuration.Milliseconds(),
			},
		})
	})

	// Combined readiness check
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		checks := make(map[string]interface{})
		allHealthy := true

		if err := database.HealthCheck(rt.db); err != nil {
			rt.logger.Error("database health check failed", zap.Error(err))
			checks["database"] = map[string]interface{}{
				"status": "unhealthy",
				"error":  err.Error(),
			}
			allHealthy = false
		} else {
			checks["database"] = map[string]interface{}{
				"status": "healthy",
			}
		}

		w.Header().Set("Content-Type", "application/json")
		status := http.StatusOK
		overall := "healthy"
		if !allHealthy {
			status = http.StatusServiceUnavailable
			overall = "unhealthy"
		}
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status": overall,
			"checks": checks,
		})
	})

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Public routes (no auth required)
		r.Post("/auth/register", rt.authHandler.Register)
		r.Post("/auth/login", rt.authHandler.Login)
		r.Post("/auth/activate", rt.authHandler.Activate)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(rt.authMiddleware.Authenticate)
			r.Use(rt.rateLimiter.Limit)

			// Change feed
			r.Get("/events", rt.eventsHandler.Stream)

			// Dashboard
			r.Get("/dashboard", rt.dashboardHandler.Get)

			// Employees (staff management is admin-only)
			r.Route("/employees", func(r chi.Router) {
				r.Get("/technicians", rt.employeeHandler.ListTechnicians)
				r.Get("/me", rt.employeeHandler.Me)
				r.Put("/me", rt.employeeHandler.UpdateMe)
				r.Group(func(r chi.Router) {
					r.Use(rt.authMiddleware.RequireAdmin)
					r.Get("/", rt.employeeHandler.List)
					r.Post("/", rt.employeeHandler.Invite)
					r.Get("/{id}", rt.employeeHandler.GetByID)
					r.Put("/{id}", rt.employeeHandler.Update)
					r.Delete("/{id}", rt.employeeHandler.Delete)
				})
			})

			// Customers
			r.Route("/customers", func(r chi.Router) {
				r.Get("/", rt.customerHandler.List)
				r.Get("/search", rt.customerHandler.Search)
				r.Get("/{id}", rt.customerHandler.GetByID)
				r.Group(func(r chi.Router) {
					r.Use(rt.authMiddleware.RequireWriter)
					r.Post("/", rt.customerHandler.Create)
					r.Put("/{id}", rt.customerHandler.Update)
					r.Delete("/{id}", rt.customerHandler.Delete)
				})
			})

			// Work orders
			r.Route("/orders", func(r chi.Router) {
				r.Get("/", rt.orderHandler.List)
				r.Get("/{id}", rt.orderHandler.GetByID)
				r.Group(func(r chi.Router) {
					r.Use(rt.authMiddleware.RequireWriter)
					r.Post("/", rt.orderHandler.Create)
					r.Put("/{id}/status", rt.orderHandler.UpdateStatus)
					r.Put("/{id}/technician", rt.orderHandler.AssignTechnician)
					r.Post("/{id}/notes", rt.orderHandler.AddNote)
				})
				r.With(rt.authMiddleware.RequireAdmin).Delete("/{id}", rt.orderHandler.Delete)
			})

			// Inventory
			r.Route("/inventory", func(r chi.Router) {
				r.Get("/", rt.inventoryHandler.List)
				r.Get("/low-stock", rt.inventoryHandler.LowStock)
				r.Get("/{id}", rt.inventoryHandler.GetByID)
				r.Group(func(r chi.Router) {
					r.Use(rt.authMiddleware.RequireWriter)
					r.Post("/", rt.inventoryHandler.Create)
					r.Put("/{id}", rt.inventoryHandler.Update)
					r.Delete("/{id}", rt.inventoryHandler.Delete)
				})
			})

			// Suppliers
			r.Route("/suppliers", func(r chi.Router) {
				r.Get("/", rt.supplierHandler.List)
				r.Get("/{id}", rt.supplierHandler.GetByID)
				r.Group(func(r chi.Router) {
					r.Use(rt.authMiddleware.RequireWriter)
					r.Post("/", rt.supplierHandler.Create)
					r.Put("/{id}", rt.supplierHandler.Update)
					r.Delete("/{id}", rt.supplierHandler.Delete)
				})
			})

			// Point of sale
			r.Route("/sales", func(r chi.Router) {
				r.Get("/", rt.saleHandler.List)
				r.Get("/{id}", rt.saleHandler.GetByID)
				r.With(rt.authMiddleware.RequireWriter).Post("/", rt.saleHandler.Create)
				r.Group(func(r chi.Router) {
					r.Use(rt.authMiddleware.RequireAdmin)
					r.Put("/{id}", rt.saleHandler.Update)
					r.Delete("/{id}", rt.saleHandler.Delete)
				})
			})

			// Notifications
			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", rt.notificationHandler.List)
				r.Get("/unread-count", rt.notificationHandler.UnreadCount)
				r.Put("/read-all", rt.notificationHandler.MarkAllRead)
				r.Put("/{id}/read", rt.notificationHandler.MarkRead)
			})

			// Workshop settings (admin-only)
			r.Route("/config", func(r chi.Router) {
				r.Get("/logo", rt.configHandler.DownloadLogo)
				r.Group(func(r chi.Router) {
					r.Use(rt.authMiddleware.RequireAdmin)
					r.Get("/", rt.configHandler.Get)
					r.Put("/", rt.configHandler.Update)
					r.Post("/logo", rt.configHandler.UploadLogo)
				})
			})
		})
	})

	return r
}
