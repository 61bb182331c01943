package cache

import (
	"context"
	"time"

	"go.uber.org/zap"

	"tangle-wallet/pkg/logger"
)

// localRefillTTL L2 命中后回写 L1 的 TTL
const localRefillTTL = time.Minute

// MultiLevelCache 多级缓存 (L1: Memory, L2: Redis)
type MultiLevelCache struct {
	local  Cache
	remote Cache
}

func NewMultiLevelCache(local, remote Cache) *MultiLevelCache {
	return &MultiLevelCache{
		local:  local,
		remote: remote,
	}
}

// Set 同时写入两级, L1 的 TTL 取一半
func (m *MultiLevelCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if err := m.local.Set(ctx, key, value, ttl/2); err != nil {
		logger.Warn("写入本地缓存失败", zap.String("key", key), zap.Error(err))
	}
	return m.remote.Set(ctx, key, value, ttl)
}

func (m *MultiLevelCache) Get(ctx context.Context, key string, target interface{}) error {
	if err := m.local.Get(ctx, key, target); err == nil {
		return nil
	}

	if err := m.remote.Get(ctx, key, target); err != nil {
		return err
	}
	_ = m.local.Set(ctx, key, target, localRefillTTL)
	return nil
}

func (m *MultiLevelCache) Delete(ctx context.Context, key string) error {
	_ = m.local.Delete(ctx, key)
	return m.remote.Delete(ctx, key)
}
