package mq

import "context"

// Message 代表一条通用的业务消息
type Message struct {
	ID       string            // 消息ID (例如 Redis Stream ID)
	Topic    string            // 主题
	Key      string            // 分区键, 这里使用种子指纹
	Payload  []byte            // 消息体 (JSON)
	Metadata map[string]string // 元数据
}

// Producer 生产者接口
type Producer interface {
	// Publish 发送消息
	// key: 分区键, 同一个种子的事件落在同一分区保证有序. 传空字符串则随机分区.
	Publish(ctx context.Context, topic string, key string, payload []byte) error
	Close() error
}

// Consumer 消费者接口
type Consumer interface {
	// Subscribe 订阅主题, 阻塞直到 ctx 结束
	// handler 返回 error 时消息不确认
	Subscribe(ctx context.Context, topic string, handler func(msg *Message) error) error

	Close() error
}
