package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type WorkerConfig struct {
	Environment string
	Redis       WorkerRedisConfig
	Queues      QueueConfig
	Notify      NotifyConfig
	Logging     LoggingConfig
}

type WorkerRedisConfig struct {
	Addr     string
	Password string
	DB       int
	Stream   string
	Group    string
	Consumer string
}

type QueueConfig struct {
	ClaimInterval time.Duration
}

type LoggingConfig struct {
	Level string
}

// LoadWorker reads worker.yaml and BLOG_WORKER_* environment variables.
func LoadWorker() (*WorkerConfig, error) {
	v := newViper("worker", "BLOG_WORKER")
	setWorkerDefaults(v)
	_ = v.BindEnv("notify.webhookurl", "BLOG_WORKER_NOTIFY_WEBHOOKURL", "DISCORD_WEBHOOK_URL")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("load config: %w", err)
		}
	}

	var cfg WorkerConfig
	if err := v.Unmarshal(&cfg, decoderOptions); err != nil {
		return nil, fmt.Errorf("unmarshal: %w", err)
	}
	if cfg.Notify.WebhookURL == "" {
		return nil, errors.New("config: notify.webhookurl is required for the worker")
	}
	return &cfg, nil
}

func setWorkerDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")
	v.SetDefault("redis.addr", "127.0.0.1:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.stream", "comments:notify")
	v.SetDefault("redis.group", "notify-workers")
	v.SetDefault("redis.consumer", "worker-1")

	v.SetDefault("queues.claiminterval", "30s")

	v.SetDefault("notify.timeout", "5s")
	v.SetDefault("notify.signingsecret", "")

	v.SetDefault("logging.level", "info")
}
