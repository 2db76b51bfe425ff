package main

// @title Estate Geo Service API
// @version 1.0.0
// @description Геопространственное ядро платформы недвижимости.
// @description
// @description Основные возможности:
// @description - Поиск объявлений, школ и POI по радиусу (PostGIS или ручной расчёт расстояния)
// @description - Постраничная выдача с фильтрами по цене, спальням и ванным
// @description - Отчёт о согласованности координат

// @contact.name API Support

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /
// @schemes http https

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/estate-geo-service/docs"
	"github.com/estate-geo-service/internal/config"
	httpDelivery "github.com/estate-geo-service/internal/delivery/http"
	"github.com/estate-geo-service/internal/delivery/http/handler"
	"github.com/estate-geo-service/internal/pkg/logger"
	"github.com/estate-geo-service/internal/pkg/metrics"
	"github.com/estate-geo-service/internal/repository/cache"
	"github.com/estate-geo-service/internal/repository/postgres"
	"github.com/estate-geo-service/internal/usecase"
	"go.uber.org/zap"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// 2. Initialize logger
	log, err := logger.New(cfg.Log.Level)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting Estate Geo Service")
	log.Info("Configuration loaded",
		zap.String("env", cfg.Server.Env),
		zap.String("server_addr", cfg.GetServerAddr()),
	)

	// 3. Connect to PostgreSQL
	db, err := postgres.New(&cfg.Database, log)
	if err != nil {
		log.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
	}

	// 4. Connect to Redis
	redisClient, err := cache.NewRedis(&cfg.Redis, log)
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}

	// 5. Health checks
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.Health(ctx); err != nil {
		log.Fatal("PostgreSQL health check failed", zap.Error(err))
	}

	if err := redisClient.Health(ctx); err != nil {
		log.Fatal("Redis health check failed", zap.Error(err))
	}

	log.Info("All connections healthy")

	// 6. Initialize Repositories
	geoRecordRepo := postgres.NewGeoRecordRepository(db)
	cacheRepo := cache.NewCacheRepository(redisClient)

	log.Info("Repositories initialized")

	// 7. Initialize Use Cases
	searchUC := usecase.NewProximitySearchUseCase(
		geoRecordRepo,
		cacheRepo,
		log,
		usecase.SearchOptions{
			DefaultRadiusKm:  cfg.Search.DefaultRadiusKm,
			MaxRadiusKm:      cfg.Search.MaxRadiusKm,
			DefaultPageSize:  cfg.Search.DefaultPageSize,
			MaxPageSize:      cfg.Search.MaxPageSize,
			ScanBatchSize:    cfg.Search.ScanBatchSize,
			GeohashPrecision: cfg.Search.GeohashPrecision,
			CacheTTL:         cfg.Cache.SearchCacheTTL,
		},
	)

	// HTTP API только читает отчёт, исправления выполняет geofix
	consistencyUC := usecase.NewConsistencyUseCase(
		geoRecordRepo,
		nil,
		log,
		cfg.Search.ScanBatchSize,
	)

	log.Info("Use cases initialized")

	// 8. Initialize HTTP Handlers
	searchHandler := handler.NewSearchHandler(searchUC, log)
	maintenanceHandler := handler.NewMaintenanceHandler(consistencyUC, log)
	healthHandler := handler.NewHealthHandler(map[string]handler.HealthChecker{
		"postgres": db,
		"redis":    redisClient,
	}, log)

	log.Info("HTTP handlers initialized")

	// 9. Initialize HTTP Server
	server := httpDelivery.NewServer(
		cfg,
		log,
		searchHandler,
		maintenanceHandler,
		healthHandler,
	)

	log.Info("HTTP server initialized")

	// 10. Export DB pool metrics
	metricsCtx, stopMetrics := context.WithCancel(context.Background())
	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-metricsCtx.Done():
				return
			case <-ticker.C:
				metrics.UpdateDBPoolMetrics(db.Stats())
			}
		}
	}()

	// 11. Start server in goroutine
	go func() {
		if err := server.Start(); err != nil {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	log.Info("Server started successfully",
		zap.String("address", cfg.GetServerAddr()),
		zap.String("env", cfg.Server.Env),
	)

	// 12. Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server gracefully...")
	stopMetrics()

	ctx, cancel = context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("Server shutdown error", zap.Error(err))
	}

	if err := db.Close(); err != nil {
		log.Error("Failed to close PostgreSQL", zap.Error(err))
	}

	if err := redisClient.Close(); err != nil {
		log.Error("Failed to close Redis", zap.Error(err))
	}

	log.Info("Server stopped successfully")
}
