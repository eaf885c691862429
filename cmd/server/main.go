package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	billingapp "github.com/billing/backend/internal/application/billing"
	"github.com/billing/backend/internal/domain/shared"
	"github.com/billing/backend/internal/infrastructure/cache"
	"github.com/billing/backend/internal/infrastructure/clock"
	"github.com/billing/backend/internal/infrastructure/config"
	"github.com/billing/backend/internal/infrastructure/event"
	"github.com/billing/backend/internal/infrastructure/logger"
	"github.com/billing/backend/internal/infrastructure/persistence"
	"github.com/billing/backend/internal/interfaces/http/handler"
	"github.com/billing/backend/internal/interfaces/http/middleware"
	"github.com/billing/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

//	@title			Billing Backend API
//	@version		1.0
//	@description	Duration billing service for time-based products

//	@contact.name	API Support
//	@contact.url	https://github.com/billing/backend

//	@host		localhost:8080
//	@BasePath	/api/v1

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting Billing Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Initialize repositories
	productRepo := persistence.NewGormBillingProductRepository(db.DB)
	orderRepo := persistence.NewGormBillingOrderRepository(db.DB)

	// Initialize event bus with idempotent handlers
	eventBus := event.NewInMemoryEventBus(log)

	idempotencyStore, err := newIdempotencyStore(cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize idempotency store", zap.Error(err))
	}
	defer func() {
		if err := idempotencyStore.Close(); err != nil {
			log.Error("Error closing idempotency store", zap.Error(err))
		}
	}()

	idempotencyConfig := shared.IdempotencyConfig{
		TTL:     cfg.Event.IdempotencyTTL,
		Enabled: true,
	}

	refundHandler := billingapp.NewRefundRequiredHandler(log.Named("refund"))
	eventBus.Subscribe(
		event.NewIdempotentHandler(refundHandler, idempotencyStore, log,
			event.WithIdempotencyConfig(idempotencyConfig)),
		refundHandler.EventTypes()...,
	)

	// Initialize application services
	systemClock := clock.NewSystemClock()
	productService := billingapp.NewProductService(productRepo)
	billingService := billingapp.NewBillingService(productRepo, orderRepo, systemClock, eventBus)

	// Initialize handlers
	productHandler := handler.NewProductHandler(productService)
	billingHandler := handler.NewBillingHandler(billingService)
	systemHandler := handler.NewSystemHandler()

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Register custom validators
	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Fatal("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Middleware order matters:
	// 1. RequestID - Generate/propagate request ID
	// 2. Recovery - Catch panics
	// 3. Logger - Log requests
	// 4. Security - Add security headers
	// 5. CORS - Handle cross-origin requests
	// 6. BodyLimit - Limit request body size
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// Health check endpoint (outside API versioning)
	engine.GET("/health", healthHandler(db))

	// Setup API routes
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	billingRoutes := router.NewDomainGroup("billing", "/billing")
	// Product routes
	billingRoutes.POST("/products", productHandler.Create)
	billingRoutes.GET("/products", productHandler.List)
	billingRoutes.GET("/products/:id", productHandler.GetByID)
	billingRoutes.PUT("/products/:id", productHandler.Update)
	billingRoutes.DELETE("/products/:id", productHandler.Delete)
	billingRoutes.POST("/products/:id/enable", productHandler.Enable)
	billingRoutes.POST("/products/:id/disable", productHandler.Disable)
	// Order routes
	billingRoutes.POST("/orders", billingHandler.Start)
	billingRoutes.GET("/orders", billingHandler.List)
	billingRoutes.GET("/orders/active", billingHandler.ListActive)
	billingRoutes.GET("/orders/code/:code", billingHandler.GetByCode)
	billingRoutes.GET("/orders/:id", billingHandler.GetByID)
	billingRoutes.GET("/orders/:id/price", billingHandler.GetCurrentPrice)
	billingRoutes.GET("/orders/:id/price/details", billingHandler.GetPriceDetails)
	billingRoutes.POST("/orders/:id/freeze", billingHandler.Freeze)
	billingRoutes.POST("/orders/:id/resume", billingHandler.Resume)
	billingRoutes.POST("/orders/:id/end", billingHandler.End)
	billingRoutes.POST("/orders/:id/cancel", billingHandler.Cancel)
	r.Register(billingRoutes)

	systemRoutes := router.NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", systemHandler.GetSystemInfo)
	systemRoutes.GET("/ping", systemHandler.Ping)
	r.Register(systemRoutes)

	r.Setup()

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// newIdempotencyStore builds the configured idempotency store. Single-instance
// deployments use the in-memory store; distributed ones share state via Redis.
func newIdempotencyStore(cfg *config.Config, log *zap.Logger) (shared.IdempotencyStore, error) {
	switch cfg.Event.IdempotencyMode {
	case "redis":
		log.Info("Using Redis idempotency store",
			zap.String("host", cfg.Redis.Host),
			zap.Int("port", cfg.Redis.Port),
		)
		return cache.NewRedisIdempotencyStore(cache.RedisConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	default:
		log.Info("Using in-memory idempotency store")
		return cache.NewInMemoryIdempotencyStore(), nil
	}
}

// healthHandler returns a handler for health check endpoints
func healthHandler(db *persistence.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := logger.GetGinLogger(c)
		if err := db.Ping(); err != nil {
			reqLog.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}
