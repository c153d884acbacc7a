package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// setupTestRedis creates a miniredis instance for testing
func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{
		Addr:       mr.Addr(),
		MaxRetries: -1,
	})
	t.Cleanup(func() {
		_ = client.Close()
	})
	return client, mr
}

func newEngine(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(handlers...)
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "OK", "data": "pong"})
	})
	r.GET("/panic", func(c *gin.Context) {
		panic("boom")
	})
	return r
}

func get(r http.Handler, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestRateLimiter_WithinBurst(t *testing.T) {
	client, _ := setupTestRedis(t)
	rl := NewRateLimiter(client, RateLimiterConfig{RequestsPerSecond: 10, BurstCapacity: 10}, zaptest.NewLogger(t))
	r := newEngine(rl.Middleware())

	for i := 0; i < 5; i++ {
		w := get(r, "/ping")
		require.Equal(t, http.StatusOK, w.Code, "request %d", i)
	}
}

func TestRateLimiter_ExceedBurst(t *testing.T) {
	client, _ := setupTestRedis(t)
	rl := NewRateLimiter(client, RateLimiterConfig{RequestsPerSecond: 0.001, BurstCapacity: 3}, zaptest.NewLogger(t))
	r := newEngine(rl.Middleware())

	for i := 0; i < 3; i++ {
		require.Equal(t, http.StatusOK, get(r, "/ping").Code, "request %d", i)
	}

	w := get(r, "/ping")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, MsgRateLimited, body["message"])
	assert.Equal(t, map[string]any{}, body["data"])
}

func TestRateLimiter_SeparateBuckets(t *testing.T) {
	client, _ := setupTestRedis(t)
	rl := NewRateLimiter(client, RateLimiterConfig{RequestsPerSecond: 0.001, BurstCapacity: 1}, zaptest.NewLogger(t))
	ctx := context.Background()

	allowed, err := rl.Allow(ctx, "ratelimit:a")
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = rl.Allow(ctx, "ratelimit:a")
	require.NoError(t, err)
	assert.False(t, allowed)

	allowed, err = rl.Allow(ctx, "ratelimit:b")
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestRateLimiter_BucketExpires(t *testing.T) {
	client, mr := setupTestRedis(t)
	rl := NewRateLimiter(client, RateLimiterConfig{RequestsPerSecond: 1, BurstCapacity: 1}, zaptest.NewLogger(t))

	_, err := rl.Allow(context.Background(), "ratelimit:ttl")
	require.NoError(t, err)

	assert.True(t, mr.Exists("ratelimit:ttl"))
	assert.Greater(t, mr.TTL("ratelimit:ttl").Seconds(), 0.0)
}

func TestRateLimiter_FailOpen(t *testing.T) {
	client, mr := setupTestRedis(t)
	rl := NewRateLimiter(client, RateLimiterConfig{RequestsPerSecond: 1, BurstCapacity: 1}, zaptest.NewLogger(t))
	r := newEngine(rl.Middleware())

	mr.Close()

	assert.Equal(t, http.StatusOK, get(r, "/ping").Code)
	assert.Equal(t, http.StatusOK, get(r, "/ping").Code)
}

func TestRecovery(t *testing.T) {
	r := newEngine(Recovery(zaptest.NewLogger(t)), Logger(zaptest.NewLogger(t)))

	w := get(r, "/panic")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"message":"Internal server error","data":{}}`, w.Body.String())
}

func TestLogger_PassesThrough(t *testing.T) {
	r := newEngine(Logger(zaptest.NewLogger(t)))

	w := get(r, "/ping?x=1")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"OK","data":"pong"}`, w.Body.String())
}
