package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"eldrix/admin/internal/cache"
	"eldrix/admin/internal/config"
	"eldrix/admin/internal/database"
	"eldrix/admin/internal/handlers"
	"eldrix/admin/internal/jobs"
	"eldrix/admin/internal/log"
	"eldrix/admin/internal/middleware"
	"eldrix/admin/internal/notify"
	"eldrix/admin/internal/repository"
	"eldrix/admin/internal/server"
	"eldrix/admin/internal/service"
	"eldrix/admin/internal/storage"
	"eldrix/admin/internal/summarize"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := log.New(cfg.Environment, cfg.Log.Level)

	ctx := context.Background()

	db, err := database.NewPostgres(ctx, cfg.Postgres)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect postgres")
	}
	if cfg.Postgres.MigrateOnStart {
		if err := db.MigrateUp(); err != nil {
			logger.Fatal().Err(err).Msg("migrations failed")
		}
	}

	redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect redis")
	}

	objectStore, err := storage.NewObjectStore(cfg.Storage)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init object store")
	}
	if err := objectStore.EnsureBuckets(ctx); err != nil {
		logger.Warn().Err(err).Msg("ensure buckets failed")
	}

	pool := db.Pool()
	sessionRepo := repository.NewHelpSessionRepository(pool)
	messageRepo := repository.NewMessageRepository(pool)
	userRepo := repository.NewUserRepository(pool)
	techUsageRepo := repository.NewTechUsageRepository(pool)

	notifier := notify.NewQueueNotifier(redisClient, cfg.Bridge.Stream)
	summarizer := summarize.New(cfg.Summarizer)
	if _, ok := summarizer.(summarize.Noop); ok {
		logger.Warn().Msg("summarizer api key not set, closed sessions get the fallback recap")
	}
	limiter := cache.NewFixedWindowLimiter(redisClient, "login", cfg.Security.LoginLimit, cfg.Security.LoginWindow)

	messageService := service.NewMessageService(sessionRepo, messageRepo, userRepo, notifier, logger)
	sessionService := service.NewSessionService(sessionRepo, messageRepo, userRepo, summarizer, cfg.Summarizer.Timeout, notifier, logger)
	userService := service.NewUserService(userRepo, techUsageRepo, notifier, cfg.SetupLinkBase, cfg.Security.SessionSecret, logger)
	uploadService := service.NewUploadService(objectStore, messageService, cfg.Storage.MaxUploadBytes, cfg.Storage.UploadPrefix, logger)
	authService := service.NewAuthService(cfg.Security, limiter, logger)

	handlerSet := handlers.NewHandlerSet(handlers.Deps{
		Log:          logger,
		Config:       cfg,
		Sessions:     sessionService,
		Messages:     messageService,
		Users:        userService,
		Uploads:      uploadService,
		Auth:         authService,
		SessionStore: middleware.NewSessionStore(cfg.Security, cfg.IsProduction()),
		DB:           db,
		Cache:        redisClient,
	})
	httpServer := server.NewHTTPServer(cfg, logger, handlerSet)

	scheduler := jobs.NewScheduler(sessionService, cfg.Jobs.StatsSpec, logger)
	if err := scheduler.Start(); err != nil {
		logger.Error().Err(err).Msg("scheduler start failed")
	}

	runCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := httpServer.Run(runCtx); err != nil {
		logger.Error().Err(err).Msg("http server failed")
	}
	logger.Info().Msg("http server stopped")

	shutdown(logger, scheduler, db, redisClient, cfg.HTTP.ShutdownTimeout)
}

func shutdown(logger zerolog.Logger, scheduler *jobs.Scheduler, db *database.Postgres, redisClient *redis.Client, timeout time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	select {
	case <-scheduler.Stop().Done():
	case <-ctx.Done():
		logger.Warn().Msg("scheduler did not stop in time")
	}

	db.Close()
	if err := redisClient.Close(); err != nil {
		logger.Error().Err(err).Msg("redis close error")
	}

	logger.Info().Msg("server exited cleanly")
}
