package service

import (
	"context"

	"tangle-wallet/internal/model"
	"tangle-wallet/internal/service/scanner"
	"tangle-wallet/pkg/tangle"
)

// AddressStore 已使用地址的持久化
type AddressStore interface {
	Save(ctx context.Context, addr *model.UsedAddress) error
	// LastIndex 没有记录时返回 -1
	LastIndex(ctx context.Context, fingerprint string, security int) (int, error)
	List(ctx context.Context, fingerprint string, security int) ([]model.UsedAddress, error)
}

// WalletService HTTP 和 CLI 共用的钱包查询
// security 为 0 时使用默认安全等级
type WalletService interface {
	Scan(start, security int) (*scanner.Iterator, error)
	UsedAddresses(ctx context.Context, start, security int) ([]tangle.ScanResult, error)
	NewAddress(ctx context.Context, start, security int) (tangle.Address, error)
	// Transfers stop 为 0 表示一直扫描到第一个未使用地址
	Transfers(ctx context.Context, start, stop, security int, inclusionStates bool) ([]*tangle.Bundle, error)
	AccountData(ctx context.Context, start, stop, security int, inclusionStates bool) (*AccountData, error)
	ResolveBundles(ctx context.Context, hashes []string, inclusionStates bool) ([]*tangle.Bundle, error)
	Sync(ctx context.Context, security int) (*SyncResult, error)
}

// AccountData 账户汇总
type AccountData struct {
	Addresses []tangle.Address `json:"addresses"`
	Balance   int64            `json:"balance"`    // 单位 i
	BalanceMi string           `json:"balance_mi"` // 1 Mi = 1,000,000 i
	Bundles   []*tangle.Bundle `json:"bundles"`
}

// SyncResult 一次同步的结果
type SyncResult struct {
	StartIndex int                 `json:"start_index"`
	NextIndex  int                 `json:"next_index"`
	Found      []tangle.ScanResult `json:"found"`
}
