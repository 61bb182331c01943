package cmd

import (
	"fmt"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var scanStart int

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "扫描已使用地址",
	Long:  `从 --start 开始逐个检查地址, 每发现一个已使用地址就输出一行, 遇到第一个未使用地址停止.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newWalletService()
		if err != nil {
			return err
		}
		it, err := svc.Scan(scanStart, security)
		if err != nil {
			return err
		}

		bar := progressbar.NewOptions(-1,
			progressbar.OptionSetWriter(cmd.ErrOrStderr()),
			progressbar.OptionSetDescription("扫描地址..."),
			progressbar.OptionSpinnerType(14),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)

		found := 0
		for {
			result, ok, err := it.Next(cmd.Context())
			if err != nil {
				_ = bar.Exit()
				return fmt.Errorf("扫描中断 (已发现 %d 个地址): %w", found, err)
			}
			if !ok {
				break
			}
			found++
			_ = bar.Add(1)
			_ = bar.Clear()
			fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%d\n", result.Address.Index, result.Address.Hash, len(result.Hashes))
		}
		_ = bar.Finish()

		fmt.Fprintf(cmd.ErrOrStderr(), "共发现 %d 个已使用地址\n", found)
		return nil
	},
}

func init() {
	scanCmd.Flags().IntVar(&scanStart, "start", 0, "起始索引")
	rootCmd.AddCommand(scanCmd)
}
