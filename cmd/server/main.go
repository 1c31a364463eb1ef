package main

import (
	"context"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/quillpress/blog-api/internal/config"
	"github.com/quillpress/blog-api/internal/database"
	"github.com/quillpress/blog-api/internal/router"
	"github.com/quillpress/blog-api/pkg/logger"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(!cfg.IsProduction(), cfg.LogLevel); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		logger.Log.Fatal("Failed to connect to database", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		logger.Log.Fatal("Failed to run migrations", zap.Error(err))
	}

	redisClient := connectRedis(cfg.RedisURL)
	if redisClient != nil {
		defer redisClient.Close()
	}

	r := router.New(cfg, db, redisClient)

	logger.Log.Info("Server starting",
		zap.String("addr", cfg.ServerPort),
		zap.String("environment", cfg.Environment),
		zap.Bool("rate_limited", redisClient != nil),
		zap.Bool("serving_client", cfg.ClientDir != ""),
	)
	if err := r.Run(cfg.ServerPort); err != nil {
		logger.Log.Fatal("Failed to start server", zap.Error(err))
	}
}

// connectRedis returns nil when REDIS_URL is unset; the auth rate limiter is
// then disabled.
func connectRedis(redisURL string) *redis.Client {
	if redisURL == "" {
		return nil
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		logger.Log.Fatal("Invalid REDIS_URL", zap.Error(err))
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		// The limiter fails open, so keep the client and let it reconnect
		logger.Log.Warn("Redis not reachable at startup", zap.Error(err))
	} else {
		logger.Log.Info("Redis connected")
	}
	return client
}
