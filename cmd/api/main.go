package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/taller-labs/workshop-api/internal/auth"
	"github.com/taller-labs/workshop-api/internal/config"
	"github.com/taller-labs/workshop-api/internal/database"
	"github.com/taller-labs/workshop-api/internal/events"
	"github.com/taller-labs/workshop-api/internal/http/handler"
	"github.com/taller-labs/workshop-api/internal/http/middleware"
	"github.com/taller-labs/workshop-api/internal/http/router"
	"github.com/taller-labs/workshop-api/internal/jobs"
	"github.com/taller-labs/workshop-api/internal/logger"
	"github.com/taller-labs/workshop-api/internal/repository"
	"github.com/taller-labs/workshop-api/internal/service"
	"github.com/taller-labs/workshop-api/internal/storage"
	"go.uber.org/zap"
)

// @title Workshop API
// @version 1.0
// @description Multi-tenant repair shop management API: work orders, inventory, point of sale, and staff

// @contact.name API Support
// @contact.email support@taller-labs.io

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Bearer token

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	log, err := logger.NewLogger(&cfg.Logging, &cfg.App)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting application",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Environment),
		zap.Int("port", cfg.App.Port),
	)

	// Connect to database
	db, err := database.NewDatabase(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	// Auto-migrate in development; staging/production run goose migrations
	if cfg.App.Environment == "development" {
		if err := database.AutoMigrate(db); err != nil {
			return fmt.Errorf("failed to auto-migrate database: %w", err)
		}
		log.Info("Auto-migration completed")
	}

	// Initialize storage
	fileStorage, err := storage.NewStorage(&cfg.Storage, log)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}

	log.Info("Storage initialized", zap.String("mode", cfg.Storage.Mode))

	// Token manager and change feed
	tokens := auth.NewTokenManager(&cfg.Auth)
	feed := events.NewFeed()

	// Initialize repositories
	tenantRepo := repository.NewTenantRepository(db)
	employeeRepo := repository.NewEmployeeRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	orderHistoryRepo := repository.NewOrderHistoryRepository(db)
	inventoryRepo := repository.NewInventoryRepository(db)
	saleRepo := repository.NewSaleRepository(db)
	supplierRepo := repository.NewSupplierRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	configRepo := repository.NewTenantConfigRepository(db)

	// Initialize services
	employeeService := service.NewEmployeeService(employeeRepo, tenantRepo, configRepo, tokens, log)
	customerService := service.NewCustomerService(customerRepo, feed, log)
	orderService := service.NewOrderService(orderRepo, orderHistoryRepo, customerRepo, employeeRepo, notificationRepo, configRepo, feed, log)
	saleService := service.NewSaleService(saleRepo, inventoryRepo, customerRepo, configRepo, feed, log)
	inventoryService := service.NewInventoryService(inventoryRepo, supplierRepo, feed, log)
	supplierService := service.NewSupplierService(supplierRepo, saleRepo, feed, log)
	notificationService := service.NewNotificationService(notificationRepo, log)
	configService := service.NewConfigService(configRepo, fileStorage, log)
	dashboardService := service.NewDashboardService(orderRepo, customerRepo, saleRepo, inventoryRepo, configRepo, log)

	// Initialize middleware
	authMiddleware := auth.NewMiddleware(tokens, employeeRepo, log)
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit, log)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(employeeService, log)
	employeeHandler := handler.NewEmployeeHandler(employeeService, log)
	customerHandler := handler.NewCustomerHandler(customerService, log)
	orderHandler := handler.NewOrderHandler(orderService, log)
	inventoryHandler := handler.NewInventoryHandler(inventoryService, log)
	supplierHandler := handler.NewSupplierHandler(supplierService, log)
	saleHandler := handler.NewSaleHandler(saleService, log)
	notificationHandler := handler.NewNotificationHandler(notificationService, log)
	configHandler := handler.NewConfigHandler(configService, log)
	dashboardHandler := handler.NewDashboardHandler(dashboardService, log)
	eventsHandler := handler.NewEventsHandler(feed, log)

	// Setup router
	rt := router.NewRouter(
		cfg,
		log,
		db,
		authMiddleware,
		rateLimiter,
		authHandler,
		employeeHandler,
		customerHandler,
		orderHandler,
		inventoryHandler,
		supplierHandler,
		saleHandler,
		notificationHandler,
		configHandler,
		dashboardHandler,
		eventsHandler,
	)

	// Initialize and start scheduler for background jobs
	var scheduler *jobs.Scheduler
	if cfg.Jobs.Enabled {
		scheduler = jobs.NewScheduler(log)

		lowStockJob := jobs.NewLowStockJob(configRepo, inventoryRepo, employeeRepo, notificationRepo, log)
		if err := jobs.RegisterLowStockJob(scheduler, lowStockJob, cfg.Jobs.LowStockCron); err != nil {
			log.Error("Failed to register low stock job", zap.Error(err))
		} else {
			scheduler.Start()
			log.Info("Scheduler started",
				zap.String("cron_expr", cfg.Jobs.LowStockCron),
			)
		}
	} else {
		log.Info("Background jobs disabled")
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      rt.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
	}

	// Start server in goroutine
	serverErrors := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		serverErrors <- srv.ListenAndServe()
	}()

	// Wait for interrupt signal
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))

		// Stop scheduler if running
		if scheduler != nil {
			ctx := scheduler.Stop()
			<-ctx.Done()
			log.Info("Scheduler stopped")
		}

		// Graceful shutdown with timeout
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Failed to shutdown gracefully", zap.Error(err))
			return err
		}

		log.Info("Server stopped gracefully")
	}

	return nil
}
