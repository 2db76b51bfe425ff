package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/estate-geo-service/internal/cli"
	"github.com/estate-geo-service/internal/config"
	"github.com/estate-geo-service/internal/domain/repository"
	"github.com/estate-geo-service/internal/pkg/logger"
	"github.com/estate-geo-service/internal/repository/cache"
	"github.com/estate-geo-service/internal/repository/postgres"
	redisRepo "github.com/estate-geo-service/internal/repository/redis"
	"go.uber.org/zap"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to load config: %v\n", err)
		return 1
	}

	log, err := logger.NewCLI(cfg.Log.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize logger: %v\n", err)
		return 1
	}
	defer log.Sync()

	db, err := postgres.New(&cfg.Database, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer db.Close()

	deps := cli.Dependencies{
		Store:       postgres.NewGeoRecordRepository(db),
		Logger:      log,
		RegionsFile: cfg.Repair.RegionsFile,
		Seed:        cfg.Repair.Seed,
		PreviewCap:  cfg.Repair.PreviewCap,
		BatchSize:   cfg.Search.ScanBatchSize,
	}

	// Без Redis ремонт работает, но не сбрасывает кеш и не публикует события
	redisClient, err := cache.NewRedis(&cfg.Redis, log)
	if err != nil {
		log.Warn("Redis unavailable, cache invalidation and repair events disabled", zap.Error(err))
	} else {
		defer redisClient.Close()
		deps.Cache = cache.NewCacheRepository(redisClient)
		deps.Streams = redisStreams(redisClient, log)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return cli.Execute(ctx, os.Args[1:], deps, os.Stdout, os.Stderr)
}

func redisStreams(client *cache.Redis, log *zap.Logger) repository.StreamRepository {
	return redisRepo.NewStreamRepository(client.Client(), log)
}
