package ledger

import (
	"context"

	"tangle-wallet/pkg/tangle"
)

// Ledger 账本查询门面
// 每次调用都是无状态的, 并发安全由具体实现保证
type Ledger interface {
	// FindTransactions 返回引用了这些地址的交易哈希
	FindTransactions(ctx context.Context, addresses []tangle.Hash) ([]tangle.Hash, error)

	// WereAddressesSpentFrom 返回与入参一一对应的 spent 状态
	WereAddressesSpentFrom(ctx context.Context, addresses []tangle.Hash) ([]bool, error)

	// GetTransactions 获取并解码交易, 节点不认识的哈希直接跳过
	GetTransactions(ctx context.Context, hashes []tangle.Hash) ([]*tangle.Transaction, error)

	// FindTransactionObjectsByBundle 返回属于这些 bundle 的全部交易
	FindTransactionObjectsByBundle(ctx context.Context, bundles []tangle.Hash) ([]*tangle.Transaction, error)

	// GetLatestInclusionStates 查询交易是否已被最新里程碑确认
	GetLatestInclusionStates(ctx context.Context, hashes []tangle.Hash) (map[tangle.Hash]bool, error)

	// GetBundles 按 tail 哈希获取完整 bundle, 输出顺序与请求顺序一致
	// 数据缺失 (例如被裁剪) 的 bundle 不出现在结果里
	GetBundles(ctx context.Context, tails []tangle.Hash) ([]*tangle.Bundle, error)
}

// BalanceReader 账户数据需要的余额查询
type BalanceReader interface {
	GetBalances(ctx context.Context, addresses []tangle.Hash) ([]int64, error)
}

// Client 节点客户端同时提供两类查询
type Client interface {
	Ledger
	BalanceReader
}
