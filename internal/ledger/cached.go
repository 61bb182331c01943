package ledger

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"tangle-wallet/pkg/cache"
	"tangle-wallet/pkg/logger"
	"tangle-wallet/pkg/tangle"
)

const (
	txKeyPrefix     = "tangle:tx:"
	bundleKeyPrefix = "tangle:bundle:"
)

// CachedLedger 缓存不可变的数据: 按哈希解码后的交易, 以及按 tail 取得的完整 bundle
// 地址引用、spent 状态、确认状态会随时间变化, 始终直接查询节点
type CachedLedger struct {
	Client
	cache cache.Cache
	ttl   time.Duration
}

func NewCachedLedger(inner Client, c cache.Cache, ttl time.Duration) *CachedLedger {
	return &CachedLedger{Client: inner, cache: c, ttl: ttl}
}

func (l *CachedLedger) GetTransactions(ctx context.Context, hashes []tangle.Hash) ([]*tangle.Transaction, error) {
	found := make(map[tangle.Hash]*tangle.Transaction, len(hashes))
	var missing []tangle.Hash
	for _, h := range hashes {
		var tx tangle.Transaction
		if l.get(ctx, txKeyPrefix+h.String(), &tx) {
			found[h] = &tx
			continue
		}
		missing = append(missing, h)
	}

	if len(missing) > 0 {
		fetched, err := l.Client.GetTransactions(ctx, missing)
		if err != nil {
			return nil, err
		}
		for _, tx := range fetched {
			found[tx.Hash] = tx
			l.set(ctx, txKeyPrefix+tx.Hash.String(), stripConfirmation(tx))
		}
	}

	// 按请求顺序输出, 节点不认识的哈希跳过
	txs := make([]*tangle.Transaction, 0, len(found))
	for _, h := range hashes {
		if tx, ok := found[h]; ok {
			txs = append(txs, tx)
		}
	}
	return txs, nil
}

func (l *CachedLedger) GetBundles(ctx context.Context, tails []tangle.Hash) ([]*tangle.Bundle, error) {
	found := make(map[tangle.Hash]*tangle.Bundle, len(tails))
	var missing []tangle.Hash
	for _, h := range tails {
		var b tangle.Bundle
		if l.get(ctx, bundleKeyPrefix+h.String(), &b) && b.Tail() != nil {
			found[h] = &b
			continue
		}
		missing = append(missing, h)
	}

	if len(missing) > 0 {
		fetched, err := l.Client.GetBundles(ctx, missing)
		if err != nil {
			return nil, err
		}
		for _, b := range fetched {
			tail := b.Tail()
			if tail == nil {
				continue
			}
			found[tail.Hash] = b
			l.set(ctx, bundleKeyPrefix+tail.Hash.String(), stripBundle(b))
		}
	}

	bundles := make([]*tangle.Bundle, 0, len(found))
	for _, h := range tails {
		if b, ok := found[h]; ok {
			bundles = append(bundles, b)
		}
	}
	return bundles, nil
}

func (l *CachedLedger) get(ctx context.Context, key string, target interface{}) bool {
	err := l.cache.Get(ctx, key, target)
	if err == nil {
		return true
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		logger.Warn("读取缓存失败", zap.String("key", key), zap.Error(err))
	}
	return false
}

func (l *CachedLedger) set(ctx context.Context, key string, value interface{}) {
	if err := l.cache.Set(ctx, key, value, l.ttl); err != nil {
		logger.Warn("写入缓存失败", zap.String("key", key), zap.Error(err))
	}
}

func stripConfirmation(tx *tangle.Transaction) tangle.Transaction {
	cp := *tx
	cp.Confirmed = nil
	return cp
}

func stripBundle(b *tangle.Bundle) tangle.Bundle {
	txs := make([]*tangle.Transaction, len(b.Transactions))
	for i, tx := range b.Transactions {
		cp := stripConfirmation(tx)
		txs[i] = &cp
	}
	return tangle.Bundle{Transactions: txs}
}
