package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"photovault/internal/cache"
	"photovault/internal/config"
	"photovault/internal/database"
	"photovault/internal/gateway"
	"photovault/internal/handlers"
	"photovault/internal/jobs"
	"photovault/internal/log"
	"photovault/internal/media"
	"photovault/internal/queue"
	"photovault/internal/repository"
	"photovault/internal/security"
	"photovault/internal/server"
	"photovault/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger := log.New(cfg.Environment, cfg.Logging.Level)

	ctx := context.Background()

	dbPool, err := database.NewPostgresPool(ctx, cfg.Postgres)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect postgres")
	}

	redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect redis")
	}

	store, err := storage.New(cfg.Storage)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init storage")
	}
	if objectStore, ok := store.(*storage.ObjectStore); ok {
		if err := objectStore.CheckBucket(ctx); err != nil {
			logger.Warn().Err(err).Msg("bucket check failed")
		}
	}

	auth, err := security.NewAuthenticator(cfg.Security.JWTSecret)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init authenticator")
	}

	gw := gateway.New(
		auth,
		repository.NewLibrary(dbPool),
		gateway.NewFileResolver(store, cfg.Storage, logger),
		media.NewContentTypeResolver(media.NewStoreSniffer(store)),
		store,
		logger,
	)

	producer := queue.NewProducer(redisClient, cfg.Queue.Stream)
	handlerSet := handlers.NewHandlerSet(
		logger,
		cfg,
		gw,
		producer,
		func(ctx context.Context) error { return dbPool.Ping(ctx) },
		func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
	)
	httpServer := server.NewHTTPServer(cfg, logger, handlerSet)

	scheduler := jobs.NewScheduler(producer, jobs.NewRedisLocker(redisClient), cfg.Jobs, logger)
	if err := scheduler.Start(); err != nil {
		logger.Error().Err(err).Msg("scheduler start failed")
	}

	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	waitForShutdown(logger, httpServer, scheduler, dbPool, redisClient)
}

func waitForShutdown(logger zerolog.Logger, srv *server.HTTPServer, scheduler *jobs.Scheduler, db *pgxpool.Pool, redisClient *redis.Client) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	scheduler.Stop(shutdownCtx)

	db.Close()
	if err := redisClient.Close(); err != nil {
		logger.Error().Err(err).Msg("redis close error")
	}

	logger.Info().Msg("server exited cleanly")
}
