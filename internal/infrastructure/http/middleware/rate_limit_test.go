package middleware

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnquangdev/meeting-notes/errors"
	"github.com/johnquangdev/meeting-notes/pkg/metrics"
)

func hit(t *testing.T, rl *RateLimiter, userID uuid.UUID) error {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/meetings", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if userID != uuid.Nil {
		c.Set(ContextKeyUserID, userID)
	}
	return rl.Middleware()(func(c echo.Context) error {
		return c.NoContent(http.StatusCreated)
	})(c)
}

func requireRateLimited(t *testing.T, err error) {
	t.Helper()
	var appErr errors.AppError
	require.True(t, stdErrors.As(err, &appErr))
	assert.Equal(t, errors.ErrorCode_RATE_LIMITED, appErr.Code)
	assert.Equal(t, http.StatusTooManyRequests, appErr.HTTPCode)
}

func TestRateLimiter_Redis(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()

	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	defer client.Close()

	rl := NewRateLimiter(client, RateLimitConfig{RPS: 1, Burst: 0, Window: time.Second}, nil)
	defer rl.Close()
	now := time.Unix(1_700_000_000, 0)
	rl.now = func() time.Time { return now }

	user := uuid.New()
	rejectedBefore := testutil.ToFloat64(metrics.RateLimitRejected.WithLabelValues("redis"))

	// first request allowed
	require.NoError(t, hit(t, rl, user))
	// immediate second request -> blocked
	requireRateLimited(t, hit(t, rl, user))
	assert.Equal(t, rejectedBefore+1, testutil.ToFloat64(metrics.RateLimitRejected.WithLabelValues("redis")))

	// another caller has its own window
	require.NoError(t, hit(t, rl, uuid.New()))

	// next window
	now = now.Add(2 * time.Second)
	m.FastForward(2 * time.Second)
	require.NoError(t, hit(t, rl, user))
}

func TestRateLimiter_RedisBucketExpires(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()

	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	defer client.Close()

	rl := NewRateLimiter(client, RateLimitConfig{RPS: 5, Burst: 0, Window: time.Second}, nil)
	defer rl.Close()
	now := time.Unix(1_700_000_000, 0)
	rl.now = func() time.Time { return now }

	user := uuid.New()
	require.NoError(t, hit(t, rl, user))
	require.NoError(t, hit(t, rl, user))

	key := fmt.Sprintf("rl:user:%s:%d", user, now.Unix())
	count, err := m.Get(key)
	require.NoError(t, err)
	assert.Equal(t, "2", count)
	ttl := m.TTL(key)
	assert.Greater(t, ttl, time.Duration(0))
	assert.LessOrEqual(t, ttl, 2*time.Second)

	m.FastForward(3 * time.Second)
	assert.False(t, m.Exists(key))
}

func TestRateLimiter_MemoryWithoutRedis(t *testing.T) {
	rl := NewRateLimiter(nil, RateLimitConfig{RPS: 0.001, Burst: 2, Window: time.Minute}, nil)
	defer rl.Close()

	user := uuid.New()
	allowedBefore := testutil.ToFloat64(metrics.RateLimitAllowed.WithLabelValues("memory"))

	require.NoError(t, hit(t, rl, user))
	require.NoError(t, hit(t, rl, user))
	requireRateLimited(t, hit(t, rl, user))
	assert.Equal(t, allowedBefore+2, testutil.ToFloat64(metrics.RateLimitAllowed.WithLabelValues("memory")))
}

func TestRateLimiter_RedisDownFallsBackToMemory(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: m.Addr(), MaxRetries: -1})
	defer client.Close()
	m.Close()

	rl := NewRateLimiter(client, RateLimitConfig{RPS: 0.001, Burst: 1, Window: time.Minute}, nil)
	defer rl.Close()

	user := uuid.New()
	require.NoError(t, hit(t, rl, user))
	requireRateLimited(t, hit(t, rl, user))
}
