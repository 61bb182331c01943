package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"tangle-wallet/internal/service/resolver"
	"tangle-wallet/pkg/errno"
	"tangle-wallet/pkg/tangle"
)

var bundlesInclusion bool

var bundlesCmd = &cobra.Command{
	Use:   "bundles <hash>...",
	Short: "按交易哈希解析 bundle",
	Long:  `输入任意交易哈希 (tail 或非 tail), 输出它们所属的 bundle, 按 tail 时间戳升序. 不需要助记词.`,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		hashes := make([]tangle.Hash, 0, len(args))
		for _, arg := range args {
			h, err := tangle.NewHash(arg)
			if err != nil {
				return fmt.Errorf("%w: %q", errno.ErrInvalidHash, arg)
			}
			hashes = append(hashes, h)
		}

		bundles, err := resolver.New(newLedger()).Resolve(cmd.Context(), hashes, bundlesInclusion)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), bundles)
	},
}

func init() {
	bundlesCmd.Flags().BoolVar(&bundlesInclusion, "inclusion-states", false, "查询确认状态")
	rootCmd.AddCommand(bundlesCmd)
}
