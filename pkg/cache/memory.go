package cache

import (
	"context"
	"encoding/json"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryCache 进程内缓存
// 存的是 JSON 字节, 读写双方互不共享对象, 行为和 Redis 一致
type MemoryCache struct {
	c *gocache.Cache
}

func NewMemoryCache(defaultExpiration, cleanupInterval time.Duration) *MemoryCache {
	return &MemoryCache{
		c: gocache.New(defaultExpiration, cleanupInterval),
	}
}

func (m *MemoryCache) Set(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.c.Set(key, raw, ttl)
	return nil
}

func (m *MemoryCache) Get(_ context.Context, key string, target interface{}) error {
	val, found := m.c.Get(key)
	if !found {
		return ErrCacheMiss
	}
	return json.Unmarshal(val.([]byte), target)
}

func (m *MemoryCache) Delete(_ context.Context, key string) error {
	m.c.Delete(key)
	return nil
}

// ItemCount 当前条目数 (含未清理的过期条目)
func (m *MemoryCache) ItemCount() int {
	return m.c.ItemCount()
}
