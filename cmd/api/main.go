package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"blogsupport/internal/cache"
	"blogsupport/internal/config"
	"blogsupport/internal/database"
	"blogsupport/internal/handlers"
	"blogsupport/internal/jobs"
	"blogsupport/internal/log"
	"blogsupport/internal/metrics"
	"blogsupport/internal/middleware"
	"blogsupport/internal/notify"
	"blogsupport/internal/repository"
	"blogsupport/internal/security"
	"blogsupport/internal/server"
	"blogsupport/internal/service"
	"blogsupport/internal/storage"
	"blogsupport/internal/thumbnail"
	"blogsupport/internal/tracing"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := log.New(cfg.Environment)

	ctx := context.Background()

	shutdownTracing, err := tracing.Setup(ctx, cfg.Tracing, cfg.Environment)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init tracing")
	}

	mongoClient, err := database.NewMongoClient(ctx, cfg.Mongo)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect mongo")
	}
	db := mongoClient.Database(cfg.Mongo.Database)
	if err := database.EnsureIndexes(ctx, db); err != nil {
		logger.Warn().Err(err).Msg("ensure indexes failed")
	}

	redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		if cfg.Notify.Mode == config.NotifyQueue {
			logger.Fatal().Err(err).Msg("failed to connect redis")
		}
		logger.Warn().Err(err).Msg("redis unavailable, continuing without it")
		redisClient = nil
	}

	var thumbCache thumbnail.Cache
	if cfg.Storage.Enabled() {
		objectStore, err := storage.NewObjectStore(cfg.Storage)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to init object store")
		}
		if err := objectStore.EnsureBucket(ctx); err != nil {
			logger.Warn().Err(err).Msg("ensure bucket failed")
		}
		thumbCache = objectStore
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(registry)

	dispatcher, err := notify.New(cfg.Notify, redisClient, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init notifications")
	}

	users := repository.NewUserRepository(db)
	comments := repository.NewCommentRepository(db)

	authService := service.NewAuthService(users, cfg.Security, logger)
	commentService := service.NewCommentService(comments, dispatcher, security.NewSanitizer(), logger).
		WithObserver(collector)

	limiter := middleware.NewRateLimiter(
		middleware.PerMinute(cfg.RateLimit.CommentRate, cfg.RateLimit.CommentBurst),
		collector,
		logger,
	)

	handlerSet := handlers.NewHandlerSet(logger, cfg, handlers.Deps{
		Auth:         authService,
		Comments:     commentService,
		Thumbnails:   thumbnail.NewService(thumbCache, logger),
		HealthChecks: healthChecks(mongoClient, redisClient),
		Metrics:      metrics.Handler(registry),
		RateLimiter:  limiter,
	})
	httpServer := server.NewHTTPServer(cfg, logger, handlerSet, collector)

	var scheduler *jobs.Scheduler
	if cfg.Notify.Mode == config.NotifyQueue && redisClient != nil {
		scheduler = jobs.NewScheduler(redisClient, cfg.Notify.Stream, cfg.Notify.StreamMaxLen, logger)
		if err := scheduler.Start(); err != nil {
			logger.Error().Err(err).Msg("scheduler start failed")
		}
	}

	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	waitForShutdown(logger, httpServer, scheduler, limiter, mongoClient, redisClient, shutdownTracing)
}

func healthChecks(mongoClient *mongo.Client, redisClient *redis.Client) []handlers.HealthCheck {
	checks := []handlers.HealthCheck{{
		Name: "mongo",
		Ping: func(ctx context.Context) error { return mongoClient.Ping(ctx, readpref.Primary()) },
	}}
	if redisClient != nil {
		checks = append(checks, handlers.HealthCheck{
			Name: "redis",
			Ping: func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
		})
	}
	return checks
}

func waitForShutdown(
	logger zerolog.Logger,
	srv *server.HTTPServer,
	scheduler *jobs.Scheduler,
	limiter *middleware.RateLimiter,
	mongoClient *mongo.Client,
	redisClient *redis.Client,
	shutdownTracing tracing.ShutdownFunc,
) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	if scheduler != nil {
		select {
		case <-scheduler.Stop().Done():
		case <-shutdownCtx.Done():
		}
	}
	limiter.Stop()

	if err := mongoClient.Disconnect(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("mongo disconnect error")
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			logger.Error().Err(err).Msg("redis close error")
		}
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("tracing shutdown error")
	}

	logger.Info().Msg("server exited cleanly")
}
