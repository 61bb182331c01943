package lock

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"tangle-wallet/pkg/safe_random"
)

// ErrNotHeld 释放时锁已过期或被别人持有
var ErrNotHeld = errors.New("lock not held")

// DistributedLock 分布式锁
type DistributedLock interface {
	// Acquire 尝试获取锁, 成功时返回持有者 token
	// 锁被占用时返回 ("", false, nil)
	Acquire(ctx context.Context, key string, ttl time.Duration) (string, bool, error)

	// Release 只有 token 匹配时才删除
	Release(ctx context.Context, key, token string) error
}

// 校验归属后再删除
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLock 基于 SET NX PX 的实现
type RedisLock struct {
	client redis.UniversalClient
}

func NewRedisLock(client redis.UniversalClient) *RedisLock {
	return &RedisLock{client: client}
}

func lockKey(key string) string {
	return "lock:" + key
}

func (l *RedisLock) Acquire(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	token, err := safe_random.GenerateRandomHexString(16)
	if err != nil {
		return "", false, err
	}
	ok, err := l.client.SetNX(ctx, lockKey(key), token, ttl).Result()
	if err != nil {
		return "", false, err
	}
	if !ok {
		return "", false, nil
	}
	return token, true, nil
}

func (l *RedisLock) Release(ctx context.Context, key, token string) error {
	n, err := releaseScript.Run(ctx, l.client, []string{lockKey(key)}, token).Int()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotHeld
	}
	return nil
}
