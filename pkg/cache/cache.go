package cache

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss 键不存在或已过期
var ErrCacheMiss = errors.New("cache miss")

// Cache 通用缓存接口, 值以 JSON 语义保存
type Cache interface {
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	// Get 命中时把值解码到 target, 未命中返回 ErrCacheMiss
	Get(ctx context.Context, key string, target interface{}) error
	Delete(ctx context.Context, key string) error
}
