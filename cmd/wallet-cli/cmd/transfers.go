package cmd

import (
	"github.com/spf13/cobra"
)

var (
	rangeStart      int
	rangeStop       int
	inclusionStates bool
)

var transfersCmd = &cobra.Command{
	Use:   "transfers",
	Short: "查询钱包相关的 bundle",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newWalletService()
		if err != nil {
			return err
		}
		bundles, err := svc.Transfers(cmd.Context(), rangeStart, rangeStop, security, inclusionStates)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), bundles)
	},
}

var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "查询账户数据: 地址、余额和 bundle",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newWalletService()
		if err != nil {
			return err
		}
		data, err := svc.AccountData(cmd.Context(), rangeStart, rangeStop, security, inclusionStates)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), data)
	},
}

func init() {
	for _, c := range []*cobra.Command{transfersCmd, accountCmd} {
		c.Flags().IntVar(&rangeStart, "start", 0, "起始索引")
		c.Flags().IntVar(&rangeStop, "stop", 0, "结束索引 (不含), 0 表示扫描到第一个未使用地址")
		c.Flags().BoolVar(&inclusionStates, "inclusion-states", false, "查询确认状态")
		rootCmd.AddCommand(c)
	}
}
