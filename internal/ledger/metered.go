package ledger

import (
	"context"
	"time"

	"tangle-wallet/pkg/monitor"
	"tangle-wallet/pkg/tangle"
)

// MeteredLedger 记录每条命令的耗时和失败次数
type MeteredLedger struct {
	inner   Client
	metrics *monitor.LedgerMetrics
}

func NewMeteredLedger(inner Client, metrics *monitor.LedgerMetrics) *MeteredLedger {
	return &MeteredLedger{inner: inner, metrics: metrics}
}

// track 在调用前取时间, 返回的函数在调用结束后记录结果
func (l *MeteredLedger) track(command string) func(err error) {
	start := time.Now()
	return func(err error) {
		l.metrics.RequestDuration.WithLabelValues(command).Observe(time.Since(start).Seconds())
		if err != nil {
			l.metrics.RequestErrors.WithLabelValues(command).Inc()
		}
	}
}

func (l *MeteredLedger) FindTransactions(ctx context.Context, addresses []tangle.Hash) ([]tangle.Hash, error) {
	done := l.track("findTransactions")
	hashes, err := l.inner.FindTransactions(ctx, addresses)
	done(err)
	return hashes, err
}

func (l *MeteredLedger) WereAddressesSpentFrom(ctx context.Context, addresses []tangle.Hash) ([]bool, error) {
	done := l.track("wereAddressesSpentFrom")
	states, err := l.inner.WereAddressesSpentFrom(ctx, addresses)
	done(err)
	return states, err
}

func (l *MeteredLedger) GetTransactions(ctx context.Context, hashes []tangle.Hash) ([]*tangle.Transaction, error) {
	done := l.track("getTransactions")
	txs, err := l.inner.GetTransactions(ctx, hashes)
	done(err)
	return txs, err
}

func (l *MeteredLedger) FindTransactionObjectsByBundle(ctx context.Context, bundles []tangle.Hash) ([]*tangle.Transaction, error) {
	done := l.track("findTransactionObjectsByBundle")
	txs, err := l.inner.FindTransactionObjectsByBundle(ctx, bundles)
	done(err)
	return txs, err
}

func (l *MeteredLedger) GetLatestInclusionStates(ctx context.Context, hashes []tangle.Hash) (map[tangle.Hash]bool, error) {
	done := l.track("getLatestInclusionStates")
	states, err := l.inner.GetLatestInclusionStates(ctx, hashes)
	done(err)
	return states, err
}

func (l *MeteredLedger) GetBundles(ctx context.Context, tails []tangle.Hash) ([]*tangle.Bundle, error) {
	done := l.track("getBundles")
	bundles, err := l.inner.GetBundles(ctx, tails)
	done(err)
	return bundles, err
}

func (l *MeteredLedger) GetBalances(ctx context.Context, addresses []tangle.Hash) ([]int64, error) {
	done := l.track("getBalances")
	balances, err := l.inner.GetBalances(ctx, addresses)
	done(err)
	return balances, err
}
