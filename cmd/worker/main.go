package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"photovault/internal/cache"
	"photovault/internal/config"
	"photovault/internal/log"
	"photovault/internal/queue"
	"photovault/internal/storage"
	"photovault/internal/tasks"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger := log.New(cfg.Environment, cfg.Logging.Level).With().Str("process", "worker").Logger()

	client, err := cache.NewRedisClient(context.Background(), cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis connection failed")
	}
	defer client.Close()

	store, err := storage.New(cfg.Storage)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init storage")
	}

	processor := tasks.NewProcessor(store, cfg.Storage, cfg.Jobs, logger)
	consumer := queue.NewConsumer(client, cfg.Queue, logger, processor)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error().Err(err).Msg("consumer stopped unexpectedly")
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		logger.Warn().Msg("consumer did not stop in time")
	}
}
