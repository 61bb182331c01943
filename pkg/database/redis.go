package database

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"tangle-wallet/pkg/config"
	"tangle-wallet/pkg/logger"
)

// ConnectRedis 连接到 Redis 并 Ping 一次
func ConnectRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("无法连接到 Redis: %w", err)
	}

	logger.Info("Redis 连接成功")
	return rdb, nil
}
