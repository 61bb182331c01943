package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"tangle-wallet/pkg/address"
	"tangle-wallet/pkg/bip39"
)

var newCmd = &cobra.Command{
	Use:   "new",
	Short: "创建新钱包, 或为已有助记词获取第一个未使用地址",
	Long: `不带 --mnemonic 时生成新的 24 词助记词并显示索引 0 的地址 (新种子不需要查询节点).
带 --mnemonic (或设置了 WALLET_MNEMONIC) 时查询节点, 返回第一个既没有交易也没被花费的地址.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if mnemonic != "" {
			svc, err := newWalletService()
			if err != nil {
				return err
			}
			addr, err := svc.NewAddress(cmd.Context(), 0, security)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), addr)
		}

		mnemonicService := bip39.NewMnemonicService()
		words, err := mnemonicService.GenerateMnemonic(256)
		if err != nil {
			return fmt.Errorf("生成助记词失败: %w", err)
		}
		seed, err := mnemonicService.SeedFromMnemonic(words, passphrase)
		if err != nil {
			return err
		}

		level := security
		if level == 0 {
			level = address.DefaultSecurityLevel
		}
		seq, err := address.NewHDSequence(seed, level)
		if err != nil {
			return err
		}
		first, err := seq.From(0).Next()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "---------------------------------------------------")
		fmt.Fprintf(out, "助记词 (Mnemonic): \n%s\n", words)
		fmt.Fprintln(out, "---------------------------------------------------")
		fmt.Fprintf(out, "地址 [index=0, security=%d]: %s\n", level, first.Hash)
		fmt.Fprintln(out, "---------------------------------------------------")
		fmt.Fprintln(out, "请妥善保管您的助记词！任何拥有助记词的人都可以控制该钱包的所有资产。")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(newCmd)
}
