package config

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App    AppConfig    `mapstructure:"app"`
	DB     DBConfig     `mapstructure:"db"`
	Redis  RedisConfig  `mapstructure:"redis"`
	Kafka  KafkaConfig  `mapstructure:"kafka"`
	MQ     MQConfig     `mapstructure:"mq"`
	Wallet WalletConfig `mapstructure:"wallet"`
	Ledger LedgerConfig `mapstructure:"ledger"`
}

type AppConfig struct {
	Env      string `mapstructure:"env"`
	HttpPort string `mapstructure:"http_port"`
}

type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
}

type MQConfig struct {
	Type  string `mapstructure:"type"` // "redis" or "kafka"
	Topic string `mapstructure:"topic"`
}

type WalletConfig struct {
	Mnemonic      string `mapstructure:"mnemonic"`
	Passphrase    string `mapstructure:"passphrase"` // 通常通过环境变量 WALLET_PASSPHRASE 传入
	SecurityLevel int    `mapstructure:"security_level"`
}

type LedgerConfig struct {
	NodeURL        string        `mapstructure:"node_url"`
	Timeout        time.Duration `mapstructure:"timeout"`
	RetryCount     int           `mapstructure:"retry_count"`
	MaxConcurrency int           `mapstructure:"max_concurrency"`
	CacheEnabled   bool          `mapstructure:"cache_enabled"`
	CacheTTL       time.Duration `mapstructure:"cache_ttl"`
}

var Global Config

// Init 加载全局配置, 失败直接退出 (二进制入口使用)
func Init() {
	cfg, err := Load("")
	if err != nil {
		log.Fatalf("Fatal error config file: %s \n", err)
	}
	Global = *cfg
	log.Printf("Configuration loaded successfully. Env: %s", Global.App.Env)
}

// Load 读取配置文件 + 环境变量
// path 为空时在 . 和 ./config 下查找 config.yaml
func Load(path string) (*Config, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// 环境变量设置: ledger.node_url -> LEDGER_NODE_URL
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
		log.Printf("Warning: Config file not found, using defaults and environment variables")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.env", "development")
	v.SetDefault("app.http_port", "8080")

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", "5432")
	v.SetDefault("db.user", "wallet_user")
	v.SetDefault("db.password", "wallet_password")
	v.SetDefault("db.name", "wallet_db")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)

	v.SetDefault("kafka.brokers", []string{"localhost:9092"})

	v.SetDefault("mq.type", "redis")
	v.SetDefault("mq.topic", "wallet_events_address_used")

	v.SetDefault("wallet.mnemonic", "")
	v.SetDefault("wallet.passphrase", "")
	v.SetDefault("wallet.security_level", 2)

	v.SetDefault("ledger.node_url", "http://localhost:14265")
	v.SetDefault("ledger.timeout", 30*time.Second)
	v.SetDefault("ledger.retry_count", 3)
	v.SetDefault("ledger.max_concurrency", 8)
	v.SetDefault("ledger.cache_enabled", false)
	v.SetDefault("ledger.cache_ttl", time.Hour)
}
