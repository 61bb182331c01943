//go:build integration

package mq

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/modules/redpanda"
)

func TestRedisStream_RoundTrip(t *testing.T) {
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

	producer := NewRedisProducer(client)
	require.NoError(t, producer.Publish(ctx, "events", "fp", []byte(`{"index":1}`)))

	consumer := NewRedisConsumer(client, "test-group", "c1")
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var got *Message
	err = consumer.Subscribe(ctx, "events", func(msg *Message) error {
		got = msg
		cancel()
		return nil
	})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "fp", got.Key)
	assert.JSONEq(t, `{"index":1}`, string(got.Payload))
}

func TestKafka_RoundTrip(t *testing.T) {
	ctx := context.Background()

	container, err := redpanda.Run(ctx, "docker.redpanda.com/redpandadata/redpanda:v24.1.7")
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	broker, err := container.KafkaSeedBroker(ctx)
	require.NoError(t, err)

	producer := NewKafkaProducer([]string{broker})
	t.Cleanup(func() { _ = producer.Close() })

	// 自动建 topic 时第一次写入可能失败
	require.Eventually(t, func() bool {
		return producer.Publish(ctx, "wallet_events", "fp", []byte(`{"index":2}`)) == nil
	}, 30*time.Second, time.Second)

	consumer := NewKafkaConsumer([]string{broker}, "test-group")
	t.Cleanup(func() { _ = consumer.Close() })

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	var got *Message
	err = consumer.Subscribe(ctx, "wallet_events", func(msg *Message) error {
		got = msg
		cancel()
		return nil
	})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "fp", got.Key)
}
