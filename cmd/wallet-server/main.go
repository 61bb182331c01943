package main

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"tangle-wallet/internal/handler"
	"tangle-wallet/internal/ledger"
	"tangle-wallet/internal/ledger/node"
	"tangle-wallet/internal/model"
	"tangle-wallet/internal/server"
	"tangle-wallet/internal/service/mq"
	"tangle-wallet/internal/service/wallet"
	"tangle-wallet/internal/store"
	"tangle-wallet/pkg/bip39"
	"tangle-wallet/pkg/cache"
	"tangle-wallet/pkg/config"
	"tangle-wallet/pkg/database"
	"tangle-wallet/pkg/lock"
	"tangle-wallet/pkg/logger"
	"tangle-wallet/pkg/monitor"

	_ "tangle-wallet/docs/swagger"
)

// 同步锁超时, 超过后其他实例可以接管
const syncLockTTL = 10 * time.Minute

// @title Tangle Wallet API
// @version 1.0
// @description 地址扫描与 bundle 解析服务
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url http://www.swagger.io/support
// @contact.email support@swagger.io

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:8080
// @BasePath /api/v1
func main() {
	// 0. 初始化 Config
	config.Init()

	// 1. 初始化 Logger
	logger.Init(config.Global.App.Env)
	defer logger.Sync()

	ctx := context.Background()

	// 2. 连接数据库
	db, err := database.ConnectPostgres(database.DSN(config.Global.DB), config.Global.App.Env)
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}
	if config.Global.App.Env == "development" {
		// 生产环境使用 cmd/migrate
		if err := db.AutoMigrate(model.AllModels()...); err != nil {
			logger.Fatal("AutoMigrate 失败", zap.Error(err))
		}
	}

	// 3. 连接 Redis
	rdb, err := database.ConnectRedis(ctx, config.Global.Redis)
	if err != nil {
		logger.Fatal("Redis 连接失败", zap.Error(err))
	}

	// 4. 初始化消息队列
	var producer mq.Producer
	if config.Global.MQ.Type == "kafka" {
		logger.Info("使用 Kafka 作为消息队列...")
		producer = mq.NewKafkaProducer(config.Global.Kafka.Brokers)
	} else {
		logger.Info("使用 Redis Streams 作为消息队列...")
		producer = mq.NewRedisProducer(rdb)
	}

	// 5. 指标
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	ledgerMetrics := monitor.NewLedgerMetrics(reg)

	// 6. 节点客户端: node -> metered -> cached
	nodeClient := node.NewClient(config.Global.Ledger)
	if info, err := nodeClient.GetNodeInfo(ctx); err != nil {
		logger.Warn("节点暂不可用, 请求时重试", zap.String("node", config.Global.Ledger.NodeURL), zap.Error(err))
	} else {
		logger.Info("已连接节点",
			zap.String("app", info.AppName),
			zap.String("version", info.AppVersion),
			zap.Int64("milestone", info.LatestSolidSubtangleMilestoneIndex))
	}

	var client ledger.Client = ledger.NewMeteredLedger(nodeClient, ledgerMetrics)
	if config.Global.Ledger.CacheEnabled {
		// L1: Memory, L2: Redis
		localCache := cache.NewMemoryCache(time.Minute, 5*time.Minute)
		redisCache := cache.NewRedisCache(rdb, "tangle-wallet:")
		client = ledger.NewCachedLedger(client, cache.NewMultiLevelCache(localCache, redisCache), config.Global.Ledger.CacheTTL)
		logger.Info("已启用交易缓存", zap.Duration("ttl", config.Global.Ledger.CacheTTL))
	}

	// 7. 生成 Seed
	if config.Global.Wallet.Mnemonic == "" {
		logger.Fatal("启动失败: 未配置 WALLET_MNEMONIC。可以先运行 'wallet-cli new' 生成助记词。")
	}
	seed, err := bip39.NewMnemonicService().SeedFromMnemonic(config.Global.Wallet.Mnemonic, config.Global.Wallet.Passphrase)
	if err != nil {
		logger.Fatal("助记词无效", zap.Error(err))
	}

	// 8. 钱包服务
	svc := wallet.NewService(seed, client,
		wallet.WithStore(store.NewUsedAddressStore(db)),
		wallet.WithProducer(producer, config.Global.MQ.Topic),
		wallet.WithLocker(lock.NewRedisLock(rdb), syncLockTTL),
		wallet.WithMetrics(ledgerMetrics),
	)
	logger.Info("钱包已加载", zap.String("fingerprint", svc.Fingerprint()))

	// 9. HTTP Router
	r := server.NewHTTPRouter(handler.NewWalletHandler(svc), reg)

	// 10. 启动应用
	app := server.New(server.Config{HttpPort: config.Global.App.HttpPort}, r)

	// 退出后资源清理 (逆序执行)
	app.OnShutdown(func() {
		logger.Info("正在关闭数据库连接...")
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	app.OnShutdown(func() { _ = rdb.Close() })
	app.OnShutdown(func() {
		if err := producer.Close(); err != nil {
			logger.Warn("关闭消息队列失败", zap.Error(err))
		}
	})

	// 运行 (阻塞)
	app.Run()
}
