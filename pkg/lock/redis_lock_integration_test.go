//go:build integration

package lock

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

func TestRedisLock(t *testing.T) {
	ctx := context.Background()

	container, err := tcredis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	uri, err := container.ConnectionString(ctx)
	require.NoError(t, err)
	opts, err := redis.ParseURL(uri)
	require.NoError(t, err)
	client := redis.NewClient(opts)
	t.Cleanup(func() { _ = client.Close() })

	l := NewRedisLock(client)

	token, ok, err := l.Acquire(ctx, "sync:a", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Len(t, token, 32)

	_, ok, err = l.Acquire(ctx, "sync:a", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "锁被占用时不能再次获取")

	assert.ErrorIs(t, l.Release(ctx, "sync:a", "not-mine"), ErrNotHeld)
	require.NoError(t, l.Release(ctx, "sync:a", token))
	assert.ErrorIs(t, l.Release(ctx, "sync:a", token), ErrNotHeld)

	_, ok, err = l.Acquire(ctx, "sync:a", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}
