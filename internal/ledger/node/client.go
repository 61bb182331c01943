// Package node 通过节点的 JSON HTTP API 实现 ledger.Client
package node

import (
	"context"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"tangle-wallet/internal/ledger"
	"tangle-wallet/pkg/config"
	"tangle-wallet/pkg/logger"
	"tangle-wallet/pkg/tangle"
)

const apiVersionHeader = "X-IOTA-API-Version"

var _ ledger.Client = (*Client)(nil)

// Client 节点客户端
// 重试只针对传输层错误和 5xx, 由 resty 完成
type Client struct {
	http           *resty.Client
	maxConcurrency int
}

func NewClient(cfg config.LedgerConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	concurrency := cfg.MaxConcurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	rc := resty.New().
		SetBaseURL(cfg.NodeURL).
		SetTimeout(timeout).
		SetRetryCount(cfg.RetryCount).
		SetRetryWaitTime(200*time.Millisecond).
		SetRetryMaxWaitTime(2*time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return r != nil && r.StatusCode() >= 500
		}).
		SetHeader("Content-Type", "application/json").
		SetHeader(apiVersionHeader, "1")

	return &Client{http: rc, maxConcurrency: concurrency}
}

// call 发送一条命令, 非 2xx 响应转换为 *APIError
func (c *Client) call(ctx context.Context, command string, req, result interface{}) error {
	apiErr := &APIError{}
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(result).
		SetError(apiErr).
		Post("/")
	if err != nil {
		return errors.WithMessagef(err, "node %s request failed", command)
	}
	if resp.IsError() {
		apiErr.StatusCode = resp.StatusCode()
		apiErr.Command = command
		logger.Warn("节点返回错误",
			zap.String("command", command),
			zap.Int("status", resp.StatusCode()),
			zap.String("body", resp.String()))
		return apiErr
	}
	return nil
}

func (c *Client) findTransactions(ctx context.Context, req findTransactionsRequest) ([]tangle.Hash, error) {
	req.Command = cmdFindTransactions
	var resp findTransactionsResponse
	if err := c.call(ctx, cmdFindTransactions, req, &resp); err != nil {
		return nil, err
	}
	return resp.Hashes, nil
}

func (c *Client) FindTransactions(ctx context.Context, addresses []tangle.Hash) ([]tangle.Hash, error) {
	if len(addresses) == 0 {
		return []tangle.Hash{}, nil
	}
	return c.findTransactions(ctx, findTransactionsRequest{Addresses: addresses})
}

func (c *Client) WereAddressesSpentFrom(ctx context.Context, addresses []tangle.Hash) ([]bool, error) {
	if len(addresses) == 0 {
		return []bool{}, nil
	}

	var resp wereAddressesSpentFromResponse
	req := addressesRequest{Command: cmdWereAddressesSpentFrom, Addresses: addresses}
	if err := c.call(ctx, cmdWereAddressesSpentFrom, req, &resp); err != nil {
		return nil, err
	}
	if len(resp.States) != len(addresses) {
		return nil, errors.Errorf("node %s returned %d states for %d addresses",
			cmdWereAddressesSpentFrom, len(resp.States), len(addresses))
	}
	return resp.States, nil
}

// GetTrytes 返回与 hashes 一一对应的原始 trytes, 未知哈希对应全 9
func (c *Client) GetTrytes(ctx context.Context, hashes []tangle.Hash) ([]string, error) {
	if len(hashes) == 0 {
		return []string{}, nil
	}

	var resp getTrytesResponse
	if err := c.call(ctx, cmdGetTrytes, getTrytesRequest{Command: cmdGetTrytes, Hashes: hashes}, &resp); err != nil {
		return nil, err
	}
	if len(resp.Trytes) != len(hashes) {
		return nil, errors.Errorf("node %s returned %d entries for %d hashes",
			cmdGetTrytes, len(resp.Trytes), len(hashes))
	}
	return resp.Trytes, nil
}

func (c *Client) GetTransactions(ctx context.Context, hashes []tangle.Hash) ([]*tangle.Transaction, error) {
	raw, err := c.GetTrytes(ctx, hashes)
	if err != nil {
		return nil, err
	}

	txs := make([]*tangle.Transaction, 0, len(raw))
	for i, trytes := range raw {
		tx, err := tangle.ParseTransaction(trytes, hashes[i])
		if errors.Is(err, tangle.ErrEmptyTransaction) {
			continue
		}
		if err != nil {
			return nil, errors.WithMessagef(err, "decode transaction %s", hashes[i])
		}
		txs = append(txs, tx)
	}
	return txs, nil
}

func (c *Client) FindTransactionObjectsByBundle(ctx context.Context, bundles []tangle.Hash) ([]*tangle.Transaction, error) {
	if len(bundles) == 0 {
		return []*tangle.Transaction{}, nil
	}

	hashes, err := c.findTransactions(ctx, findTransactionsRequest{Bundles: bundles})
	if err != nil {
		return nil, err
	}
	return c.GetTransactions(ctx, hashes)
}

func (c *Client) GetNodeInfo(ctx context.Context) (*NodeInfo, error) {
	var info NodeInfo
	if err := c.call(ctx, cmdGetNodeInfo, commandRequest{Command: cmdGetNodeInfo}, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// GetInclusionStates 查询交易是否被 tips 引用, 返回与 hashes 一一对应
func (c *Client) GetInclusionStates(ctx context.Context, hashes, tips []tangle.Hash) ([]bool, error) {
	var resp getInclusionStatesResponse
	req := getInclusionStatesRequest{Command: cmdGetInclusionStates, Transactions: hashes, Tips: tips}
	if err := c.call(ctx, cmdGetInclusionStates, req, &resp); err != nil {
		return nil, err
	}
	if len(resp.States) != len(hashes) {
		return nil, errors.Errorf("node %s returned %d states for %d transactions",
			cmdGetInclusionStates, len(resp.States), len(hashes))
	}
	return resp.States, nil
}

// GetLatestInclusionStates 以最新的 solid 里程碑作为 tip 查询确认状态
func (c *Client) GetLatestInclusionStates(ctx context.Context, hashes []tangle.Hash) (map[tangle.Hash]bool, error) {
	if len(hashes) == 0 {
		return map[tangle.Hash]bool{}, nil
	}

	info, err := c.GetNodeInfo(ctx)
	if err != nil {
		return nil, err
	}

	states, err := c.GetInclusionStates(ctx, hashes, []tangle.Hash{info.LatestSolidSubtangleMilestone})
	if err != nil {
		return nil, err
	}

	out := make(map[tangle.Hash]bool, len(hashes))
	for i, h := range hashes {
		out[h] = states[i]
	}
	return out, nil
}

func (c *Client) GetBalances(ctx context.Context, addresses []tangle.Hash) ([]int64, error) {
	if len(addresses) == 0 {
		return []int64{}, nil
	}

	var resp getBalancesResponse
	req := getBalancesRequest{Command: cmdGetBalances, Addresses: addresses, Threshold: balanceThreshold}
	if err := c.call(ctx, cmdGetBalances, req, &resp); err != nil {
		return nil, err
	}
	if len(resp.Balances) != len(addresses) {
		return nil, errors.Errorf("node %s returned %d balances for %d addresses",
			cmdGetBalances, len(resp.Balances), len(addresses))
	}

	balances := make([]int64, len(resp.Balances))
	for i, s := range resp.Balances {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, errors.WithMessagef(err, "parse balance of %s", addresses[i])
		}
		balances[i] = v
	}
	return balances, nil
}
