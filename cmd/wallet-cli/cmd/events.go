package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"tangle-wallet/internal/service/mq"
	"tangle-wallet/pkg/database"
	"tangle-wallet/pkg/logger"
	"tangle-wallet/pkg/safe_random"
)

var eventsGroup string

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "订阅 address_used 事件并逐行输出",
	Long:  `按配置中的 mq.type 连接 Redis Streams 或 Kafka, 阻塞直到 Ctrl+C.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		consumer, err := newConsumer(ctx)
		if err != nil {
			return err
		}
		defer consumer.Close()

		logger.Info("开始订阅事件", zap.String("type", cfg.MQ.Type), zap.String("topic", cfg.MQ.Topic))
		err = consumer.Subscribe(ctx, cfg.MQ.Topic, func(msg *mq.Message) error {
			event, err := mq.DecodeAddressUsedEvent(msg.Payload)
			if err != nil {
				// 无法解码的消息直接确认, 避免反复投递
				logger.Warn("丢弃无法解码的消息", zap.String("id", msg.ID), zap.Error(err))
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%d\t%s\t%d\n",
				event.OccurredAt.Format("2006-01-02T15:04:05Z"),
				event.SeedFingerprint[:min(len(event.SeedFingerprint), 16)],
				event.Index, event.Address, event.TxCount)
			return nil
		})
		if err != nil && ctx.Err() == nil {
			return err
		}
		return nil
	},
}

func newConsumer(ctx context.Context) (mq.Consumer, error) {
	if cfg.MQ.Type == "kafka" {
		return mq.NewKafkaConsumer(cfg.Kafka.Brokers, eventsGroup), nil
	}

	rdb, err := database.ConnectRedis(ctx, cfg.Redis)
	if err != nil {
		return nil, err
	}
	suffix, err := safe_random.GenerateRandomHexString(4)
	if err != nil {
		return nil, err
	}
	return mq.NewRedisConsumer(rdb, eventsGroup, "cli-"+suffix), nil
}

func init() {
	eventsCmd.Flags().StringVar(&eventsGroup, "group", "wallet-cli", "消费者组")
	rootCmd.AddCommand(eventsCmd)
}
