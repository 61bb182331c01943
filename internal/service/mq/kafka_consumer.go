package mq

import (
	"context"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"tangle-wallet/pkg/logger"
)

// KafkaConsumer 实现 Consumer 接口
type KafkaConsumer struct {
	brokers []string
	groupID string
	reader  *kafka.Reader
}

func NewKafkaConsumer(brokers []string, groupID string) *KafkaConsumer {
	return &KafkaConsumer{
		brokers: brokers,
		groupID: groupID,
	}
}

// Subscribe 订阅 Kafka 主题, 处理成功后手动提交 offset
func (c *KafkaConsumer) Subscribe(ctx context.Context, topic string, handler func(msg *Message) error) error {
	c.reader = kafka.NewReader(kafka.ReaderConfig{
		Brokers:     c.brokers,
		GroupID:     c.groupID,
		Topic:       topic,
		MinBytes:    1,
		MaxBytes:    10e6,
		StartOffset: kafka.FirstOffset,
	})

	logger.Info("[Kafka MQ] 开始监听主题", zap.String("topic", topic), zap.String("group", c.groupID))

	for {
		m, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			logger.Warn("[Kafka MQ] 读取消息错误", zap.Error(err))
			time.Sleep(time.Second)
			continue
		}

		msg := &Message{
			ID:      fmt.Sprintf("%d/%d", m.Partition, m.Offset),
			Topic:   m.Topic,
			Key:     string(m.Key),
			Payload: m.Value,
		}
		if err := handler(msg); err != nil {
			logger.Warn("[Kafka MQ] 业务处理失败", zap.Error(err))
			continue
		}

		if err := c.reader.CommitMessages(ctx, m); err != nil {
			logger.Warn("[Kafka MQ] 提交 Offset 失败", zap.Error(err))
		}
	}
}

func (c *KafkaConsumer) Close() error {
	if c.reader != nil {
		return c.reader.Close()
	}
	return nil
}
