package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

const (
	NotifyDirect = "direct"
	NotifyQueue  = "queue"
	NotifyOff    = "off"
)

type HTTPConfig struct {
	Host         string
	Port         int
	BasePath     string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type MongoConfig struct {
	URI            string
	Database       string
	ConnectTimeout time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type StorageConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	Region    string
}

// Enabled reports whether an object store has been configured.
func (s StorageConfig) Enabled() bool {
	return s.Endpoint != "" && s.Bucket != ""
}

type SecurityConfig struct {
	JWTSecret      string
	TokenTTL       time.Duration
	CookieName     string
	CookieDomain   string
	PasswordTime   uint32
	PasswordMemory uint32
}

type NotifyConfig struct {
	Mode          string
	WebhookURL    string
	Timeout       time.Duration
	Stream        string
	StreamMaxLen  int64
	SigningSecret string
}

type TracingConfig struct {
	Endpoint     string
	ServiceName  string
	SamplingRate float64
}

type RateLimitConfig struct {
	CommentRate  int
	CommentBurst int
}

type AppConfig struct {
	Environment      string
	HTTP             HTTPConfig
	Mongo            MongoConfig
	Redis            RedisConfig
	Storage          StorageConfig
	Security         SecurityConfig
	Notify           NotifyConfig
	Tracing          TracingConfig
	RateLimit        RateLimitConfig
	AllowCORSOrigins []string
}

// Load reads config.yaml and BLOG_* environment variables.
func Load() (*AppConfig, error) {
	v := newViper("config", "BLOG")
	setDefaults(v)
	bindLegacyEnv(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg, decoderOptions); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *AppConfig) Validate() error {
	if c.Security.JWTSecret == "" {
		return errors.New("config: security.jwtsecret is required")
	}
	if c.Security.TokenTTL <= 0 {
		return errors.New("config: security.tokenttl must be positive")
	}
	if c.Mongo.URI == "" || c.Mongo.Database == "" {
		return errors.New("config: mongo.uri and mongo.database are required")
	}
	if c.Environment == "production" && len(c.AllowCORSOrigins) == 0 {
		return errors.New("config: allowcorsorigins must list the frontend origins in production")
	}
	switch c.Notify.Mode {
	case NotifyDirect, NotifyOff:
	case NotifyQueue:
		if c.Notify.Stream == "" {
			return errors.New("config: notify.stream is required in queue mode")
		}
	default:
		return fmt.Errorf("config: unknown notify.mode %q", c.Notify.Mode)
	}
	return nil
}

func newViper(name, prefix string) *viper.Viper {
	v := viper.New()
	v.SetConfigName(name)
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("../config")

	v.SetEnvPrefix(prefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func decoderOptions(dc *mapstructure.DecoderConfig) {
	dc.TagName = "mapstructure"
	dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)
}

// bindLegacyEnv keeps the variable names of the previous deployment working.
func bindLegacyEnv(v *viper.Viper) {
	_ = v.BindEnv("security.jwtsecret", "BLOG_SECURITY_JWTSECRET", "JWT_SECRET")
	_ = v.BindEnv("security.cookiedomain", "BLOG_SECURITY_COOKIEDOMAIN", "COOKIE_DOMAIN")
	_ = v.BindEnv("notify.webhookurl", "BLOG_NOTIFY_WEBHOOKURL", "DISCORD_WEBHOOK_URL")
	_ = v.BindEnv("mongo.uri", "BLOG_MONGO_URI", "MONGO_URI")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")
	v.SetDefault("allowcorsorigins", []string{})

	v.SetDefault("http.host", "0.0.0.0")
	v.SetDefault("http.port", 8080)
	v.SetDefault("http.basepath", "")
	v.SetDefault("http.readtimeout", "10s")
	v.SetDefault("http.writetimeout", "15s")
	v.SetDefault("http.idletimeout", "60s")

	v.SetDefault("mongo.database", "blog")
	v.SetDefault("mongo.connecttimeout", "10s")

	v.SetDefault("redis.addr", "127.0.0.1:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("storage.endpoint", "")
	v.SetDefault("storage.accesskey", "")
	v.SetDefault("storage.secretkey", "")
	v.SetDefault("storage.bucket", "blog-thumbnails")
	v.SetDefault("storage.usessl", false)
	v.SetDefault("storage.region", "us-east-1")

	v.SetDefault("security.tokenttl", "24h")
	v.SetDefault("security.cookiename", "auth-token")
	v.SetDefault("security.cookiedomain", "localhost")
	v.SetDefault("security.passwordtime", 3)
	v.SetDefault("security.passwordmemory", 64*1024)

	v.SetDefault("notify.mode", NotifyDirect)
	v.SetDefault("notify.timeout", "5s")
	v.SetDefault("notify.stream", "comments:notify")
	v.SetDefault("notify.streammaxlen", 10000)
	v.SetDefault("notify.signingsecret", "")

	v.SetDefault("tracing.endpoint", "")
	v.SetDefault("tracing.servicename", "blog-api")
	v.SetDefault("tracing.samplingrate", 1.0)

	v.SetDefault("ratelimit.commentrate", 30)
	v.SetDefault("ratelimit.commentburst", 10)
}
