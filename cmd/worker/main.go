package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"eldrix/admin/internal/cache"
	"eldrix/admin/internal/config"
	"eldrix/admin/internal/log"
	"eldrix/admin/internal/notify"
	"eldrix/admin/internal/queue"
	"eldrix/admin/internal/tasks"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := log.New(cfg.Environment, cfg.Log.Level)

	client, err := cache.NewRedisClient(context.Background(), cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis connection failed")
	}
	defer client.Close()

	if cfg.Bridge.URL == "" {
		logger.Fatal().Msg("bridge.url is required for the worker")
	}

	processor := tasks.NewProcessor(notify.NewBridgeClient(cfg.Bridge), logger)
	consumer := queue.NewConsumer(
		client,
		cfg.Bridge.Stream,
		cfg.Worker.Group,
		cfg.Worker.Consumer,
		cfg.Worker.ClaimInterval,
		cfg.Worker.MinIdle,
		logger,
		processor,
	)

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
	case <-time.After(5 * time.Second):
		logger.Warn().Msg("consumer did not stop in time")
	}
}
