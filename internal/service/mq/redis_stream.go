package mq

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"tangle-wallet/pkg/logger"
)

// streamMaxLen 每个 stream 保留的近似条数
const streamMaxLen = 100000

// RedisProducer 基于 Redis Stream 的 Producer
type RedisProducer struct {
	client redis.UniversalClient
}

func NewRedisProducer(client redis.UniversalClient) *RedisProducer {
	return &RedisProducer{
		client: client,
	}
}

// Publish XADD 到以 topic 命名的 stream
func (p *RedisProducer) Publish(ctx context.Context, topic string, key string, payload []byte) error {
	err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: topic,
		MaxLen: streamMaxLen,
		Approx: true,
		Values: map[string]interface{}{
			"key":     key,
			"payload": payload,
		},
	}).Err()
	if err != nil {
		logger.Error("[MQ] 发送消息失败", zap.String("topic", topic), zap.Error(err))
		return fmt.Errorf("redis xadd error: %w", err)
	}
	return nil
}

// Close 连接由调用方管理
func (p *RedisProducer) Close() error {
	return nil
}

// RedisConsumer 基于消费者组读取 stream
type RedisConsumer struct {
	client redis.UniversalClient
	group  string
	name   string
	block  time.Duration
}

func NewRedisConsumer(client redis.UniversalClient, group, name string) *RedisConsumer {
	return &RedisConsumer{
		client: client,
		group:  group,
		name:   name,
		block:  2 * time.Second,
	}
}

// Subscribe 阻塞消费, ctx 结束时返回 nil
func (c *RedisConsumer) Subscribe(ctx context.Context, topic string, handler func(msg *Message) error) error {
	// XGROUP CREATE <stream> <group> 0 MKSTREAM, 新组从头读取
	err := c.client.XGroupCreateMkStream(ctx, topic, c.group, "0").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("创建消费者组失败: %w", err)
	}

	logger.Info("[Redis MQ] 开始监听主题", zap.String("topic", topic), zap.String("group", c.group))

	for {
		if ctx.Err() != nil {
			return nil
		}

		streams, err := c.client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    c.group,
			Consumer: c.name,
			Streams:  []string{topic, ">"},
			Count:    10,
			Block:    c.block,
		}).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			logger.Warn("[Redis MQ] 读取消息错误", zap.Error(err))
			time.Sleep(time.Second)
			continue
		}

		for _, stream := range streams {
			for _, xm := range stream.Messages {
				payload, ok := xm.Values["payload"].(string)
				if !ok {
					logger.Warn("[Redis MQ] 消息格式错误: payload 缺失", zap.String("id", xm.ID))
					c.ack(ctx, topic, xm.ID)
					continue
				}
				key, _ := xm.Values["key"].(string)

				msg := &Message{
					ID:      xm.ID,
					Topic:   topic,
					Key:     key,
					Payload: []byte(payload),
				}
				if err := handler(msg); err != nil {
					logger.Warn("[Redis MQ] 消息处理失败", zap.String("id", xm.ID), zap.Error(err))
					continue
				}
				c.ack(ctx, topic, xm.ID)
			}
		}
	}
}

func (c *RedisConsumer) ack(ctx context.Context, topic, id string) {
	if err := c.client.XAck(ctx, topic, c.group, id).Err(); err != nil {
		logger.Warn("[Redis MQ] ACK 失败", zap.String("id", id), zap.Error(err))
	}
}

// Close 连接由调用方管理
func (c *RedisConsumer) Close() error {
	return nil
}
