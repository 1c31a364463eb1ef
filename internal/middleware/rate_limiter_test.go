package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestRateLimiter creates a rate limiter backed by miniredis
func setupTestRateLimiter(tb testing.TB, maxRequests int, window, blockTime time.Duration) (*RateLimiter, *miniredis.Miniredis) {
	mr := miniredis.RunT(tb)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	rl := NewRateLimiter(client, RateLimiterConfig{
		MaxRequests: maxRequests,
		Window:      window,
		BlockTime:   blockTime,
	})

	return rl, mr
}

func limitedRouter(rl *RateLimiter) *gin.Engine {
	router := gin.New()
	router.Use(rl.Middleware())
	router.POST("/api/auth/signin", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "success"})
	})
	return router
}

func signinFrom(router *gin.Engine, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/auth/signin", nil)
	req.RemoteAddr = remoteAddr
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRateLimiter_AllowsRequestsUnderLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)

	rl, _ := setupTestRateLimiter(t, 5, time.Minute, 5*time.Minute)
	router := limitedRouter(rl)

	for i := 0; i < 5; i++ {
		w := signinFrom(router, "192.168.1.1:12345")
		assert.Equal(t, http.StatusOK, w.Code, "Request %d should succeed", i+1)
	}
}

func TestRateLimiter_BlocksWithEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)

	rl, _ := setupTestRateLimiter(t, 5, time.Minute, 5*time.Minute)
	router := limitedRouter(rl)

	for i := 0; i < 5; i++ {
		signinFrom(router, "192.168.1.1:12345")
	}

	w := signinFrom(router, "192.168.1.1:12345")
	assert.Equal(t, http.StatusTooManyRequests, w.Code, "6th request should be rate limited")
	assert.Equal(t, "300", w.Header().Get("Retry-After"))

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, http.StatusTooManyRequests, body.StatusCode)
	assert.NotEmpty(t, body.Message)
}

func TestRateLimiter_DifferentIPsIndependent(t *testing.T) {
	gin.SetMode(gin.TestMode)

	rl, _ := setupTestRateLimiter(t, 3, time.Minute, 5*time.Minute)
	router := limitedRouter(rl)

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, signinFrom(router, "192.168.1.1:12345").Code, "IP1 request %d should succeed", i+1)
	}
	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, signinFrom(router, "192.168.1.2:12345").Code, "IP2 request %d should succeed", i+1)
	}

	assert.Equal(t, http.StatusTooManyRequests, signinFrom(router, "192.168.1.1:12345").Code)
}

func TestRateLimiter_BlockOutlivesWindow(t *testing.T) {
	rl, mr := setupTestRateLimiter(t, 2, time.Second, time.Minute)
	ctx := context.Background()
	ip := "192.168.1.100"

	for i := 0; i < 2; i++ {
		allowed, _, err := rl.CheckLimit(ctx, ip)
		require.NoError(t, err)
		assert.True(t, allowed)
	}

	allowed, retryAfter, err := rl.CheckLimit(ctx, ip)
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.Equal(t, time.Minute, retryAfter)

	// Window has reset but the block is still active
	mr.FastForward(2 * time.Second)
	allowed, retryAfter, err = rl.CheckLimit(ctx, ip)
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.Greater(t, retryAfter, time.Duration(0))

	mr.FastForward(time.Minute)
	allowed, _, err = rl.CheckLimit(ctx, ip)
	require.NoError(t, err)
	assert.True(t, allowed, "Request should be allowed after the block expires")
}

func TestRateLimiter_WindowExpiryWithoutBlock(t *testing.T) {
	rl, mr := setupTestRateLimiter(t, 2, time.Second, 0)
	ctx := context.Background()
	ip := "192.168.1.100"

	for i := 0; i < 2; i++ {
		allowed, _, err := rl.CheckLimit(ctx, ip)
		require.NoError(t, err)
		assert.True(t, allowed, "Request %d should be allowed", i+1)
	}

	allowed, _, err := rl.CheckLimit(ctx, ip)
	require.NoError(t, err)
	assert.False(t, allowed, "3rd request should be denied")

	mr.FastForward(2 * time.Second)

	allowed, _, err = rl.CheckLimit(ctx, ip)
	require.NoError(t, err)
	assert.True(t, allowed, "Request should be allowed after window expires")
}

func TestRateLimiter_Unblock(t *testing.T) {
	rl, _ := setupTestRateLimiter(t, 1, time.Minute, time.Hour)
	ctx := context.Background()
	ip := "10.0.0.7"

	_, _, _ = rl.CheckLimit(ctx, ip)
	allowed, _, err := rl.CheckLimit(ctx, ip)
	require.NoError(t, err)
	require.False(t, allowed)

	require.NoError(t, rl.Unblock(ctx, ip))

	allowed, _, err = rl.CheckLimit(ctx, ip)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestRateLimiter_FailsOpenWhenRedisIsDown(t *testing.T) {
	gin.SetMode(gin.TestMode)

	rl, mr := setupTestRateLimiter(t, 1, time.Minute, time.Minute)
	router := limitedRouter(rl)
	mr.Close()

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, signinFrom(router, "192.168.1.1:12345").Code)
	}
}

func TestRateLimiter_SequentialBurst(t *testing.T) {
	gin.SetMode(gin.TestMode)

	rl, _ := setupTestRateLimiter(t, 10, time.Minute, time.Minute)
	router := limitedRouter(rl)

	successCount := 0
	rateLimitedCount := 0
	for i := 0; i < 20; i++ {
		switch signinFrom(router, "192.168.1.1:12345").Code {
		case http.StatusOK:
			successCount++
		case http.StatusTooManyRequests:
			rateLimitedCount++
		}
	}

	assert.Equal(t, 10, successCount, "Should allow exactly 10 requests")
	assert.Equal(t, 10, rateLimitedCount, "Should block exactly 10 requests")
}

func BenchmarkRateLimiter_CheckLimit(b *testing.B) {
	rl, _ := setupTestRateLimiter(b, 1000000, time.Minute, time.Minute)
	ctx := context.Background()
	ip := "192.168.1.100"

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _, _ = rl.CheckLimit(ctx, ip)
	}
}
