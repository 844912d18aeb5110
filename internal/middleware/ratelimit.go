package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

type RateLimiterConfig struct {
	Rate            rate.Limit
	Burst           int
	CleanupInterval time.Duration
}

// PerMinute builds a limiter config allowing n requests per minute.
func PerMinute(n, burst int) RateLimiterConfig {
	return RateLimiterConfig{
		Rate:            rate.Limit(float64(n) / 60.0),
		Burst:           burst,
		CleanupInterval: 5 * time.Minute,
	}
}

type clientLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

type RejectionRecorder interface {
	RecordRateLimited()
}

// RateLimiter keeps one token bucket per client IP.
type RateLimiter struct {
	cfg      RateLimiterConfig
	recorder RejectionRecorder
	log      zerolog.Logger

	mu      sync.Mutex
	clients map[string]*clientLimiter

	stopCh chan struct{}
	once   sync.Once
}

func NewRateLimiter(cfg RateLimiterConfig, recorder RejectionRecorder, log zerolog.Logger) *RateLimiter {
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = 5 * time.Minute
	}
	rl := &RateLimiter{
		cfg:      cfg,
		recorder: recorder,
		log:      log,
		clients:  make(map[string]*clientLimiter),
		stopCh:   make(chan struct{}),
	}
	go rl.cleanupLoop()
	return rl
}

func (rl *RateLimiter) Stop() {
	rl.once.Do(func() { close(rl.stopCh) })
}

func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if rl.limiter(ip).Allow() {
			c.Next()
			return
		}

		if rl.recorder != nil {
			rl.recorder.RecordRateLimited()
		}
		rl.log.Warn().Str("client_ip", ip).Str("path", c.FullPath()).Msg("rate limit exceeded")

		c.Header("Retry-After", strconv.Itoa(retryAfter(rl.cfg.Rate)))
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"statusCode": http.StatusTooManyRequests,
			"error":      "too_many_requests",
			"message":    "Too many requests. Please try again later.",
		})
	}
}

// Clients reports how many client buckets are tracked.
func (rl *RateLimiter) Clients() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.clients)
}

func (rl *RateLimiter) limiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	if cl, ok := rl.clients[key]; ok {
		cl.lastAccess = now
		return cl.limiter
	}

	cl := &clientLimiter{limiter: rate.NewLimiter(rl.cfg.Rate, rl.cfg.Burst), lastAccess: now}
	rl.clients[key] = cl
	return cl.limiter
}

func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.cfg.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup(time.Now())
		case <-rl.stopCh:
			return
		}
	}
}

// cleanup drops buckets idle for more than two cleanup intervals.
func (rl *RateLimiter) cleanup(now time.Time) {
	ttl := rl.cfg.CleanupInterval * 2

	rl.mu.Lock()
	defer rl.mu.Unlock()
	for key, cl := range rl.clients {
		if now.Sub(cl.lastAccess) > ttl {
			delete(rl.clients, key)
		}
	}
}

func retryAfter(r rate.Limit) int {
	if r <= 0 {
		return 60
	}
	return max(int(math.Ceil(1.0/float64(r))), 1)
}
