package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"blogsupport/internal/cache"
	"blogsupport/internal/config"
	"blogsupport/internal/log"
	"blogsupport/internal/notify"
	"blogsupport/internal/queue"
	"blogsupport/internal/tasks"
)

func main() {
	cfg, err := config.LoadWorker()
	if err != nil {
		panic(err)
	}

	logger := log.NewWithLevel(cfg.Logging.Level)

	client, err := cache.NewRedisClient(context.Background(), config.RedisConfig{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil || client == nil {
		logger.Fatal().Err(err).Msg("redis connection failed")
	}
	defer client.Close()

	webhook := notify.NewWebhook(notify.WebhookConfig{
		URL:           cfg.Notify.WebhookURL,
		Timeout:       cfg.Notify.Timeout,
		SigningSecret: cfg.Notify.SigningSecret,
	}, logger)

	processor := tasks.NewProcessor(webhook, logger)
	consumer := queue.NewConsumer(
		client,
		cfg.Redis.Stream,
		cfg.Redis.Group,
		cfg.Redis.Consumer,
		cfg.Queues.ClaimInterval,
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
	case <-time.After(10 * time.Second):
		logger.Warn().Msg("consumer did not stop in time")
	}
}
