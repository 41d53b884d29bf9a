package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/amaretto/amaretto-backend/config"
	"github.com/amaretto/amaretto-backend/internal/app/cart"
	"github.com/amaretto/amaretto-backend/internal/app/controller"
	"github.com/amaretto/amaretto-backend/internal/app/repository"
	"github.com/amaretto/amaretto-backend/internal/app/service"
	"github.com/amaretto/amaretto-backend/internal/db"
	"github.com/amaretto/amaretto-backend/internal/middleware"
	"github.com/amaretto/amaretto-backend/internal/router"
	"github.com/amaretto/amaretto-backend/internal/scheduler"
	"github.com/amaretto/amaretto-backend/internal/storage"
	ws "github.com/amaretto/amaretto-backend/internal/websocket"
	"github.com/amaretto/amaretto-backend/pkg/logger"
	"github.com/amaretto/amaretto-backend/pkg/redis"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logLevel := "info"
	logFormat := "json"
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
		logFormat = "console"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      logFormat,
		EnableColor: logFormat == "console",
	})

	logger.Info("Starting Amaretto Backend Server", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
	})

	ctx := context.Background()

	// The pool connects lazily; requests fall back to the catalog file while
	// the database is unreachable.
	pool, err := db.Open(&cfg.Database)
	if err != nil {
		logger.Fatal("Failed to open database pool", err)
	}
	defer func() {
		if err := pool.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()
	if err := pool.Ping(ctx); err != nil {
		logger.Warn("Primary database unreachable at startup, catalog will use the fallback file", map[string]interface{}{
			"error":         err.Error(),
			"fallback_file": cfg.Catalog.FallbackFile,
		})
	}

	// Cart storage and session revocations: Redis when enabled, local otherwise
	var cartStorage cart.Storage
	var revocations service.SessionRevocations
	if cfg.Redis.Enabled {
		client, err := redis.NewClient(ctx, &cfg.Redis)
		if err != nil {
			logger.Fatal("Failed to connect to Redis", err)
		}
		defer redis.Close(client)
		cartStorage = cart.NewRedisStorage(client, cfg.Cart.TTL)
		revocations = redis.NewTokenBlacklist(client)
	} else {
		cartStorage = cart.NewFileStorage(cfg.Cart.Dir)
		revocations = service.NewMemoryRevocations()
	}

	images := storage.NewS3Storage(ctx,
		cfg.S3.Region,
		cfg.S3.Bucket,
		cfg.S3.AccessKeyID,
		cfg.S3.SecretAccessKey,
		cfg.S3.BaseURL,
	)

	// Initialize repositories
	productRepo := repository.NewProductRepository(pool.DB())
	fallbackRepo := repository.NewFileProductRepository(cfg.Catalog.FallbackFile)
	settingsRepo := repository.NewSettingsRepository(pool.DB())
	featuredRepo := repository.NewHomepageFeaturedRepository(pool.DB())

	hub := ws.NewHub(cfg.CORS.AllowedOrigins)
	go hub.Run()

	// Initialize services
	probeTimeout := cfg.Database.ProbeTimeout
	catalogService := service.NewCatalogService(pool, productRepo, fallbackRepo, images, probeTimeout)
	settingsService := service.NewSettingsService(pool, settingsRepo, probeTimeout, cfg.Storefront.WhatsAppNumber)
	homepageService := service.NewHomepageService(pool, featuredRepo, catalogService, probeTimeout)
	orderService := service.NewOrderService(pool, settingsService, hub, probeTimeout)
	reportService := service.NewReportService(orderService)
	cartService := service.NewCartService(cartStorage, catalogService, settingsService)
	authService := service.NewAuthService(cfg.Admin, revocations)
	diagnosticsService := service.NewDiagnosticsService(pool, productRepo, fallbackRepo, probeTimeout)

	// Initialize controllers
	controllers := router.Controllers{
		Auth:        controller.NewAuthController(authService, cfg.Server.Environment != "development"),
		Product:     controller.NewProductController(catalogService),
		Order:       controller.NewOrderController(orderService, reportService),
		OrderFeed:   controller.NewOrderFeedController(hub),
		Cart:        controller.NewCartController(cartService),
		Settings:    controller.NewSettingsController(settingsService, homepageService),
		Upload:      controller.NewUploadController(images),
		Diagnostics: controller.NewDiagnosticsController(diagnosticsService),
	}

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(cfg.Admin.JWTSecret, revocations)
	orderLimiter := middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	loginLimiter := middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	orderLimiter.StartCleanup(time.Minute)
	loginLimiter.StartCleanup(time.Minute)

	reportScheduler := scheduler.NewOrderReportScheduler(reportService, cfg.Report.Schedule, cfg.Report.Dir)
	if err := reportScheduler.Start(); err != nil {
		logger.Fatal("Failed to start order report scheduler", err)
	}

	// Setup router
	r := router.NewRouter(controllers, authMiddleware, orderLimiter, loginLimiter, cfg)
	engine := r.Setup()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server started successfully", map[string]interface{}{
			"address": srv.Addr,
			"pid":     os.Getpid(),
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", err)
	}

	reportScheduler.Stop()
	hub.Stop()
	orderLimiter.Stop()
	loginLimiter.Stop()

	logger.Info("Server stopped successfully")
}
