package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsAndEnv(t *testing.T) {
	t.Setenv("BLOG_SECURITY_JWTSECRET", "s3cret")
	t.Setenv("BLOG_MONGO_URI", "mongodb://localhost:27017")
	t.Setenv("BLOG_HTTP_BASEPATH", "/api")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "s3cret", cfg.Security.JWTSecret)
	assert.Equal(t, "/api", cfg.HTTP.BasePath)
	assert.Equal(t, 24*time.Hour, cfg.Security.TokenTTL)
	assert.Equal(t, "auth-token", cfg.Security.CookieName)
	assert.Equal(t, "localhost", cfg.Security.CookieDomain)
	assert.Equal(t, NotifyDirect, cfg.Notify.Mode)
	assert.Equal(t, "comments:notify", cfg.Notify.Stream)
	assert.Equal(t, 30, cfg.RateLimit.CommentRate)
	assert.False(t, cfg.Storage.Enabled())
}

func TestLoad_LegacyVariables(t *testing.T) {
	t.Setenv("JWT_SECRET", "legacy")
	t.Setenv("MONGO_URI", "mongodb://db:27017")
	t.Setenv("COOKIE_DOMAIN", "blog.example.com")
	t.Setenv("DISCORD_WEBHOOK_URL", "https://discord.example.com/hook")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "legacy", cfg.Security.JWTSecret)
	assert.Equal(t, "mongodb://db:27017", cfg.Mongo.URI)
	assert.Equal(t, "blog.example.com", cfg.Security.CookieDomain)
	assert.Equal(t, "https://discord.example.com/hook", cfg.Notify.WebhookURL)
}

func TestLoad_FailsWithoutSecret(t *testing.T) {
	t.Setenv("BLOG_MONGO_URI", "mongodb://localhost:27017")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "jwtsecret")
}

func TestValidate(t *testing.T) {
	valid := func() AppConfig {
		return AppConfig{
			Mongo:    MongoConfig{URI: "mongodb://x", Database: "blog"},
			Security: SecurityConfig{JWTSecret: "k", TokenTTL: time.Hour},
			Notify:   NotifyConfig{Mode: NotifyQueue, Stream: "s"},
		}
	}

	cfg := valid()
	require.NoError(t, cfg.Validate())

	cfg = valid()
	cfg.Notify.Mode = "carrier-pigeon"
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.Notify.Stream = ""
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.Security.TokenTTL = 0
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.Mongo.Database = ""
	assert.Error(t, cfg.Validate())
}

func TestValidate_ProductionRequiresCORSOrigins(t *testing.T) {
	cfg := AppConfig{
		Environment: "production",
		Mongo:       MongoConfig{URI: "mongodb://x", Database: "blog"},
		Security:    SecurityConfig{JWTSecret: "k", TokenTTL: time.Hour},
		Notify:      NotifyConfig{Mode: NotifyOff},
	}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "allowcorsorigins")

	cfg.AllowCORSOrigins = []string{"https://blog.example.com"}
	assert.NoError(t, cfg.Validate())

	cfg.Environment = "development"
	cfg.AllowCORSOrigins = nil
	assert.NoError(t, cfg.Validate())
}
