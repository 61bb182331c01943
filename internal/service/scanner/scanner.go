package scanner

import (
	"context"

	"go.uber.org/zap"

	"tangle-wallet/internal/ledger"
	"tangle-wallet/pkg/address"
	"tangle-wallet/pkg/errno"
	"tangle-wallet/pkg/logger"
	"tangle-wallet/pkg/monitor"
	"tangle-wallet/pkg/tangle"
)

// Scanner 从种子派生的地址序列中找出已使用的地址
// 已使用 = 有交易引用, 或者没有交易引用但曾经被花费过
type Scanner struct {
	ledger   ledger.Ledger
	sequence address.Factory
	metrics  *monitor.LedgerMetrics
}

type Option func(*Scanner)

// WithSequenceFactory 替换地址序列的生成方式, 默认 address.NewHDSequence
func WithSequenceFactory(f address.Factory) Option {
	return func(s *Scanner) {
		s.sequence = f
	}
}

func WithMetrics(m *monitor.LedgerMetrics) Option {
	return func(s *Scanner) {
		s.metrics = m
	}
}

func New(l ledger.Ledger, opts ...Option) *Scanner {
	s := &Scanner{
		ledger:   l,
		sequence: address.NewHDSequence,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scan 校验参数并返回一个惰性迭代器, 这一步不会发出任何账本查询
// security 为 0 时使用 address.DefaultSecurityLevel
func (s *Scanner) Scan(seed []byte, start, security int) (*Iterator, error) {
	if start < 0 {
		return nil, errno.ErrInvalidStartIndex
	}
	if security == 0 {
		security = address.DefaultSecurityLevel
	}
	if !address.ValidSecurityLevel(security) {
		return nil, errno.ErrInvalidSecurityLevel
	}

	seq, err := s.sequence(seed, security)
	if err != nil {
		return nil, err
	}

	return &Iterator{
		ledger:  s.ledger,
		addrs:   seq.From(start),
		metrics: s.metrics,
	}, nil
}

// All 把迭代器读到结束
func (s *Scanner) All(ctx context.Context, seed []byte, start, security int) ([]tangle.ScanResult, error) {
	it, err := s.Scan(seed, start, security)
	if err != nil {
		return nil, err
	}

	var results []tangle.ScanResult
	for {
		result, ok, err := it.Next(ctx)
		if err != nil {
			return nil, err
		}
		if !ok {
			return results, nil
		}
		results = append(results, result)
	}
}

// Iterator 按索引顺序拉取结果, 调用方随时停止调用 Next 即可取消, 无需清理
// 遇到第一个既没有交易又没被花费的地址后序列结束, 之后的地址不再检查
type Iterator struct {
	ledger  ledger.Ledger
	addrs   address.Iterator
	metrics *monitor.LedgerMetrics
	done    bool
}

// Next 返回下一个已使用地址
// ok 为 false 表示序列已结束; 账本错误原样返回, 之后迭代器也视为结束
func (it *Iterator) Next(ctx context.Context) (result tangle.ScanResult, ok bool, err error) {
	if it.done {
		return tangle.ScanResult{}, false, nil
	}
	defer func() {
		if err != nil || !ok {
			it.done = true
		}
	}()

	addr, err := it.addrs.Next()
	if err != nil {
		return tangle.ScanResult{}, false, err
	}

	hashes, err := it.ledger.FindTransactions(ctx, []tangle.Hash{addr.Hash})
	if err != nil {
		return tangle.ScanResult{}, false, err
	}

	// 有交易引用即视为已使用, 不再查询 spent 状态
	if len(hashes) > 0 {
		logger.Debug("地址已使用",
			zap.Int("index", addr.Index),
			zap.Int("transactions", len(hashes)))
		it.observe("used")
		return tangle.ScanResult{Address: addr, Hashes: dedupe(hashes)}, true, nil
	}

	states, err := it.ledger.WereAddressesSpentFrom(ctx, []tangle.Hash{addr.Hash})
	if err != nil {
		return tangle.ScanResult{}, false, err
	}
	if len(states) > 0 && states[0] {
		logger.Debug("地址无交易但已被花费", zap.Int("index", addr.Index))
		it.observe("spent")
		return tangle.ScanResult{Address: addr, Hashes: []tangle.Hash{}}, true, nil
	}

	logger.Debug("遇到未使用地址, 扫描结束", zap.Int("index", addr.Index))
	it.observe("unused")
	return tangle.ScanResult{}, false, nil
}

func (it *Iterator) observe(state string) {
	if it.metrics != nil {
		it.metrics.ScannedAddresses.WithLabelValues(state).Inc()
	}
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
