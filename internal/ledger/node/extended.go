package node

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"tangle-wallet/pkg/logger"
	"tangle-wallet/pkg/tangle"
)

// ErrNotTail GetBundles 只接受 tail 交易
var ErrNotTail = errors.New("transaction is not a tail")

// GetBundles 从每个 tail 沿 trunk 走完整个 bundle
// 各 tail 并发处理 (并发数受 maxConcurrency 限制), 输出保持请求顺序;
// 数据不完整的 bundle 直接丢弃
func (c *Client) GetBundles(ctx context.Context, tails []tangle.Hash) ([]*tangle.Bundle, error) {
	if len(tails) == 0 {
		return []*tangle.Bundle{}, nil
	}

	results := make([]*tangle.Bundle, len(tails))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.maxConcurrency)
	for i, tail := range tails {
		i, tail := i, tail
		g.Go(func() error {
			bundle, err := c.traverseBundle(gctx, tail)
			if err != nil {
				return err
			}
			results[i] = bundle
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	bundles := make([]*tangle.Bundle, 0, len(results))
	for _, b := range results {
		if b != nil {
			bundles = append(bundles, b)
		}
	}
	return bundles, nil
}

// traverseBundle 返回 nil, nil 表示 bundle 数据缺失
func (c *Client) traverseBundle(ctx context.Context, tailHash tangle.Hash) (*tangle.Bundle, error) {
	tail, err := c.getTransaction(ctx, tailHash)
	if err != nil || tail == nil {
		return nil, err
	}
	if !tail.IsTail() {
		return nil, errors.WithMessagef(ErrNotTail, "get bundle %s", tailHash)
	}

	bundle := &tangle.Bundle{Transactions: []*tangle.Transaction{tail}}
	current := tail
	for current.CurrentIndex < current.LastIndex {
		next, err := c.getTransaction(ctx, current.TrunkTransaction)
		if err != nil {
			return nil, err
		}
		if next == nil || next.Bundle != tail.Bundle || next.CurrentIndex != current.CurrentIndex+1 {
			logger.Debug("bundle 数据不完整, 跳过",
				zap.String("tail", tailHash.String()),
				zap.Int64("at_index", current.CurrentIndex+1))
			return nil, nil
		}
		bundle.Transactions = append(bundle.Transactions, next)
		current = next
	}
	return bundle, nil
}

func (c *Client) getTransaction(ctx context.Context, hash tangle.Hash) (*tangle.Transaction, error) {
	txs, err := c.GetTransactions(ctx, []tangle.Hash{hash})
	if err != nil || len(txs) == 0 {
		return nil, err
	}
	return txs[0], nil
}
