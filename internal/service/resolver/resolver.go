package resolver

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"tangle-wallet/internal/ledger"
	"tangle-wallet/pkg/logger"
	"tangle-wallet/pkg/monitor"
	"tangle-wallet/pkg/tangle"
)

// Resolver 把一组交易哈希还原成它们所在的 bundle
type Resolver struct {
	ledger  ledger.Ledger
	metrics *monitor.LedgerMetrics
}

type Option func(*Resolver)

func WithMetrics(m *monitor.LedgerMetrics) Option {
	return func(r *Resolver) {
		r.metrics = m
	}
}

func New(l ledger.Ledger, opts ...Option) *Resolver {
	r := &Resolver{ledger: l}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve 返回这些交易所属的 bundle, 按 tail 时间戳升序
// 节点缺失的数据只会让结果变少; 账本错误原样返回, 不返回部分结果
func (r *Resolver) Resolve(ctx context.Context, hashes []tangle.Hash, inclusionStates bool) ([]*tangle.Bundle, error) {
	hashes = dedupe(hashes)
	if len(hashes) == 0 {
		return []*tangle.Bundle{}, nil
	}

	txs, err := r.ledger.GetTransactions(ctx, hashes)
	if err != nil {
		return nil, err
	}

	var (
		tails      []tangle.Hash
		tailSeen   = make(map[tangle.Hash]struct{})
		bundleIDs  []tangle.Hash
		bundleSeen = make(map[tangle.Hash]struct{})
	)
	addTail := func(h tangle.Hash) {
		if _, ok := tailSeen[h]; ok {
			return
		}
		tailSeen[h] = struct{}{}
		tails = append(tails, h)
	}

	for _, tx := range txs {
		if tx.IsTail() {
			addTail(tx.Hash)
			continue
		}
		// 非 tail 交易只记下 bundle 哈希, 再通过 bundle 找 tail
		if _, ok := bundleSeen[tx.Bundle]; !ok {
			bundleSeen[tx.Bundle] = struct{}{}
			bundleIDs = append(bundleIDs, tx.Bundle)
		}
	}

	if len(bundleIDs) > 0 {
		members, err := r.ledger.FindTransactionObjectsByBundle(ctx, bundleIDs)
		if err != nil {
			return nil, err
		}
		for _, tx := range members {
			if tx.IsTail() {
				addTail(tx.Hash)
			}
		}
	}

	logger.Debug("解析 bundle",
		zap.Int("inputs", len(hashes)),
		zap.Int("found", len(txs)),
		zap.Int("bundle_lookups", len(bundleIDs)),
		zap.Int("tails", len(tails)))

	if len(tails) == 0 {
		return []*tangle.Bundle{}, nil
	}

	var states map[tangle.Hash]bool
	if inclusionStates {
		states, err = r.ledger.GetLatestInclusionStates(ctx, tails)
		if err != nil {
			return nil, err
		}
	}

	bundles, err := r.ledger.GetBundles(ctx, tails)
	if err != nil {
		return nil, err
	}

	out := make([]*tangle.Bundle, 0, len(bundles))
	for _, b := range bundles {
		tail := b.Tail()
		if tail == nil {
			continue
		}
		if inclusionStates {
			// 按 tail 哈希配对写到 tail 上, bundle 与 tail 共用同一个值
			// 节点没有返回状态的两者都保持 nil
			if state, ok := states[tail.Hash]; ok {
				confirmed := state
				tail.Confirmed = &confirmed
			} else {
				tail.Confirmed = nil
			}
			b.Confirmed = tail.Confirmed
		}
		out = append(out, b)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Tail().Timestamp < out[j].Tail().Timestamp
	})

	if r.metrics != nil {
		r.metrics.ResolvedBundles.Add(float64(len(out)))
	}
	return out, nil
}

// dedupe 保持首次出现的顺序去重
func dedupe(hashes []tangle.Hash) []tangle.Hash {
	seen := make(map[tangle.Hash]struct{}, len(hashes))
	out := make([]tangle.Hash, 0, len(hashes))
	for _, h := range hashes {
		if _, ok := seen[h]; ok {
			continue
		}
		seen[h] = struct{}{}
		out = append(out, h)
	}
	return out
}
