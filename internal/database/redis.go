package database

import (
	"context"
	"fmt"

	"evento/internal/config"
	"evento/internal/logger"

	"github.com/go-redis/redis/v8"
)

// ConnectRedis returns nil when Redis is disabled.
func ConnectRedis(ctx context.Context, cfg config.RedisConfig, log *logger.Logger) (*redis.Client, error) {
	if !cfg.Enabled {
		log.Info("REDIS", "Redis disabled, event locks off")
		return nil, nil
	}
	client := redis.NewClient(&redis.Options{Addr: cfg.Addr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis connection error: %w", err)
	}
	log.Info("REDIS", fmt.Sprintf("Redis connection successful to %s (DB: %d)", cfg.Addr, client.Options().DB))
	return client, nil
}
