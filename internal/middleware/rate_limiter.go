package middleware

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/quillpress/blog-api/pkg/logger"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RateLimiterConfig defines rate limiting rules
type RateLimiterConfig struct {
	MaxRequests int           // Maximum requests allowed in the window
	Window      time.Duration // Time window (e.g., 1 minute)
	BlockTime   time.Duration // How long to block after exceeding limit
}

// RateLimiter provides IP-based rate limiting using Redis. It guards the
// credential endpoints against password guessing.
type RateLimiter struct {
	redis  *redis.Client
	config RateLimiterConfig
}

func NewRateLimiter(redisClient *redis.Client, config RateLimiterConfig) *RateLimiter {
	return &RateLimiter{
		redis:  redisClient,
		config: config,
	}
}

func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		clientIP := c.ClientIP()

		allowed, retryAfter, err := rl.CheckLimit(c.Request.Context(), clientIP)
		if err != nil {
			// Fail open: Redis being down must not lock everyone out of signin
			logger.Log.Warn("Rate limiter unavailable",
				zap.String("ip", clientIP),
				zap.Error(err),
			)
			c.Next()
			return
		}

		if !allowed {
			c.Header("Retry-After", fmt.Sprintf("%d", int(retryAfter.Seconds())))
			logger.Log.Warn("Rate limit exceeded",
				zap.String("ip", clientIP),
				zap.Duration("retry_after", retryAfter),
			)
			AbortWithStatus(c, http.StatusTooManyRequests, "Too many requests. Please try again later.")
			return
		}

		c.Next()
	}
}

// CheckLimit counts requests per IP in a fixed window. Exceeding the limit
// blocks the IP for BlockTime. Returns (allowed, retryAfter, error).
func (rl *RateLimiter) CheckLimit(ctx context.Context, ip string) (bool, time.Duration, error) {
	blockKey := fmt.Sprintf("ratelimit:block:%s", ip)

	blockTTL, err := rl.redis.TTL(ctx, blockKey).Result()
	if err != nil {
		return false, 0, err
	}
	if blockTTL > 0 {
		return false, blockTTL, nil
	}

	key := fmt.Sprintf("ratelimit:%s", ip)

	count, err := rl.redis.Incr(ctx, key).Result()
	if err != nil {
		return false, 0, err
	}

	// Set expiry on first request (count = 1)
	if count == 1 {
		if err := rl.redis.Expire(ctx, key, rl.config.Window).Err(); err != nil {
			return false, 0, err
		}
	}

	if count > int64(rl.config.MaxRequests) {
		if rl.config.BlockTime > 0 {
			if err := rl.redis.Set(ctx, blockKey, 1, rl.config.BlockTime).Err(); err != nil {
				return false, 0, err
			}
			return false, rl.config.BlockTime, nil
		}

		ttl, err := rl.redis.TTL(ctx, key).Result()
		if err != nil || ttl <= 0 {
			ttl = rl.config.Window
		}
		return false, ttl, nil
	}

	return true, 0, nil
}

// Unblock clears the counters for an IP.
func (rl *RateLimiter) Unblock(ctx context.Context, ip string) error {
	return rl.redis.Del(ctx, fmt.Sprintf("ratelimit:%s", ip), fmt.Sprintf("ratelimit:block:%s", ip)).Err()
}
