package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"tangle-wallet/internal/ledger"
	"tangle-wallet/internal/ledger/node"
	"tangle-wallet/internal/service/wallet"
	"tangle-wallet/pkg/bip39"
	"tangle-wallet/pkg/cache"
	"tangle-wallet/pkg/config"
	"tangle-wallet/pkg/logger"
)

var (
	cfgFile    string
	nodeURL    string
	mnemonic   string
	passphrase string
	security   int
	verbose    bool

	cfg *config.Config
)

// rootCmd 代表基础命令，没有子命令时直接调用
var rootCmd = &cobra.Command{
	Use:   "wallet-cli",
	Short: "Tangle 钱包命令行工具",
	Long: `从 BIP-39 助记词派生地址序列, 扫描已使用地址并解析相关 bundle.
助记词可以通过 --mnemonic 或环境变量 WALLET_MNEMONIC 传入.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("加载配置失败: %w", err)
		}
		cfg = loaded

		if nodeURL != "" {
			cfg.Ledger.NodeURL = nodeURL
		}
		if mnemonic == "" {
			mnemonic = cfg.Wallet.Mnemonic
		}
		if passphrase == "" {
			passphrase = cfg.Wallet.Passphrase
		}
		if security == 0 {
			security = cfg.Wallet.SecurityLevel
		}

		env := "production"
		if verbose {
			env = "development"
		}
		logger.Init(env)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Sync()
	},
}

// Execute 将所有子命令添加到根命令并设置标志
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "配置文件路径 (默认 ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&nodeURL, "node", "", "节点 API 地址, 覆盖配置中的 ledger.node_url")
	rootCmd.PersistentFlags().StringVar(&mnemonic, "mnemonic", "", "BIP-39 助记词")
	rootCmd.PersistentFlags().StringVar(&passphrase, "passphrase", "", "BIP-39 密码")
	rootCmd.PersistentFlags().IntVar(&security, "security", 0, "安全等级 1-3 (默认 2)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "输出调试日志")
}

// newLedger 按配置组装节点客户端, 开启缓存时用进程内缓存
func newLedger() ledger.Client {
	var client ledger.Client = node.NewClient(cfg.Ledger)
	if cfg.Ledger.CacheEnabled {
		client = ledger.NewCachedLedger(client, cache.NewMemoryCache(cfg.Ledger.CacheTTL, 10*time.Minute), cfg.Ledger.CacheTTL)
	}
	return client
}

func seedFromMnemonic() ([]byte, error) {
	if mnemonic == "" {
		return nil, fmt.Errorf("缺少助记词: 使用 --mnemonic 或 WALLET_MNEMONIC")
	}
	return bip39.NewMnemonicService().SeedFromMnemonic(mnemonic, passphrase)
}

func newWalletService() (*wallet.Service, error) {
	seed, err := seedFromMnemonic()
	if err != nil {
		return nil, err
	}
	return wallet.NewService(seed, newLedger()), nil
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
