package middleware

import (
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-notes/errors"
	"github.com/johnquangdev/meeting-notes/internal/infrastructure/cache"
	"github.com/johnquangdev/meeting-notes/pkg/metrics"
)

// RateLimitConfig configures the per-caller limiter
type RateLimitConfig struct {
	RPS    float64
	Burst  int
	Window time.Duration
}

// RateLimiter enforces a per-caller request budget. With a Redis client it
// uses a fixed window shared across replicas, otherwise an in-memory token
// bucket. Redis failures fall back to the in-memory bucket.
type RateLimiter struct {
	client  *redis.Client
	memory  *cache.LimiterStore
	window  time.Duration
	allowed int64
	logger  *zap.Logger
	now     func() time.Time
}

// NewRateLimiter creates a limiter. client may be nil.
func NewRateLimiter(client *redis.Client, cfg RateLimitConfig, logger *zap.Logger) *RateLimiter {
	if logger == nil {
		logger = zap.NewNop()
	}
	window := cfg.Window
	if window < time.Second {
		window = time.Second
	}
	return &RateLimiter{
		client:  client,
		memory:  cache.NewLimiterStore(cfg.RPS, cfg.Burst, 2*window),
		window:  window,
		allowed: int64(cfg.RPS*window.Seconds()) + int64(cfg.Burst),
		logger:  logger,
		now:     time.Now,
	}
}

// Close releases the in-memory store
func (rl *RateLimiter) Close() {
	rl.memory.Close()
}

// Middleware returns the Echo middleware. It keys on the authenticated user
// when EchoAuth ran first, else on the client IP.
func (rl *RateLimiter) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := rateLimitKey(c)

			if rl.client != nil {
				ok, err := rl.allowRedis(c, key)
				if err == nil {
					if !ok {
						metrics.RateLimitRejected.WithLabelValues("redis").Inc()
						c.Response().Header().Set("Retry-After", strconv.Itoa(int(rl.window.Seconds())))
						return errors.ErrRateLimited()
					}
					metrics.RateLimitAllowed.WithLabelValues("redis").Inc()
					return next(c)
				}
				rl.logger.Warn("redis rate limit check failed, using memory limiter",
					zap.String("key", key),
					zap.Error(err),
				)
			}

			if !rl.memory.Allow(key) {
				metrics.RateLimitRejected.WithLabelValues("memory").Inc()
				c.Response().Header().Set("Retry-After", "1")
				return errors.ErrRateLimited()
			}
			metrics.RateLimitAllowed.WithLabelValues("memory").Inc()
			return next(c)
		}
	}
}

// allowRedis increments the caller's counter for the current window. INCR and
// EXPIRE run in one MULTI so a bucket never outlives its window.
func (rl *RateLimiter) allowRedis(c echo.Context, key string) (bool, error) {
	ctx := c.Request().Context()
	windowSeconds := int64(rl.window.Seconds())
	bucket := rl.now().Unix() / windowSeconds
	redisKey := fmt.Sprintf("rl:%s:%d", key, bucket)

	var incr *redis.IntCmd
	_, err := rl.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, redisKey)
		pipe.Expire(ctx, redisKey, rl.window+time.Second)
		return nil
	})
	if err != nil {
		return false, err
	}
	return incr.Val() <= rl.allowed, nil
}

func rateLimitKey(c echo.Context) string {
	if id, ok := c.Get(ContextKeyUserID).(uuid.UUID); ok && id != uuid.Nil {
		return "user:" + id.String()
	}
	ip := c.RealIP()
	if ip == "" {
		ip = "unknown"
	}
	return "ip:" + ip
}
