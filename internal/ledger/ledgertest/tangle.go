// Package ledgertest 提供内存版的账本, 用于扫描器、解析器和服务层测试
package ledgertest

import (
	"context"
	"fmt"
	"sync"

	"tangle-wallet/pkg/tangle"
)

// 操作名, 用于调用计数和错误注入
const (
	OpFindTransactions         = "findTransactions"
	OpWereAddressesSpentFrom   = "wereAddressesSpentFrom"
	OpGetTransactions          = "getTransactions"
	OpFindTransactionsByBundle = "findTransactionObjectsByBundle"
	OpGetLatestInclusionStates = "getLatestInclusionStates"
	OpGetBundles               = "getBundles"
	OpGetBalances              = "getBalances"
)

// H 把短名字补齐成 81 tryte 哈希, 名字只能包含 A-Z 和 9
func H(name string) tangle.Hash {
	return tangle.Hash(tangle.Pad(name, tangle.HashTrytesSize))
}

// Tangle 内存账本
type Tangle struct {
	mu sync.Mutex

	order     []tangle.Hash
	txs       map[tangle.Hash]tangle.Transaction
	spent     map[tangle.Hash]bool
	confirmed map[tangle.Hash]bool
	balances  map[tangle.Hash]int64

	calls        map[string]int
	spentQueries []tangle.Hash
	errs         map[string]error
}

func New() *Tangle {
	return &Tangle{
		txs:       make(map[tangle.Hash]tangle.Transaction),
		spent:     make(map[tangle.Hash]bool),
		confirmed: make(map[tangle.Hash]bool),
		balances:  make(map[tangle.Hash]int64),
		calls:     make(map[string]int),
		errs:      make(map[string]error),
	}
}

// AddTransaction 写入一笔交易
func (t *Tangle) AddTransaction(tx tangle.Transaction) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.txs[tx.Hash]; !ok {
		t.order = append(t.order, tx.Hash)
	}
	tx.Confirmed = nil
	t.txs[tx.Hash] = tx
}

// AddBundle 生成并写入一个 size 笔交易的 bundle, 返回按 current index 排列的交易
// 交易通过 trunk 串联: tx[i].trunk = tx[i+1]
func (t *Tangle) AddBundle(name string, timestamp int64, size int, address tangle.Hash) []tangle.Transaction {
	bundleHash := H(name + "BUNDLE")
	txs := make([]tangle.Transaction, size)
	for i := 0; i < size; i++ {
		txs[i] = tangle.Transaction{
			Hash:         H(fmt.Sprintf("%sTX%c", name, 'A'+i)),
			Address:      address,
			Timestamp:    timestamp,
			CurrentIndex: int64(i),
			LastIndex:    int64(size - 1),
			Bundle:       bundleHash,
		}
	}
	for i := range txs {
		if i+1 < size {
			txs[i].TrunkTransaction = txs[i+1].Hash
		} else {
			txs[i].TrunkTransaction = H("TRUNK")
		}
		t.AddTransaction(txs[i])
	}
	return txs
}

// Remove 模拟节点裁剪
func (t *Tangle) Remove(hash tangle.Hash) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.txs, hash)
}

func (t *Tangle) SetSpent(address tangle.Hash, spent bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.spent[address] = spent
}

func (t *Tangle) SetConfirmed(hash tangle.Hash, confirmed bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.confirmed[hash] = confirmed
}

func (t *Tangle) SetBalance(address tangle.Hash, balance int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.balances[address] = balance
}

// FailOn 让指定操作返回 err, err 为 nil 时取消
func (t *Tangle) FailOn(op string, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err == nil {
		delete(t.errs, op)
		return
	}
	t.errs[op] = err
}

// Calls 返回某个操作被调用的次数
func (t *Tangle) Calls(op string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.calls[op]
}

// TotalCalls 所有操作的调用次数之和
func (t *Tangle) TotalCalls() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	total := 0
	for _, n := range t.calls {
		total += n
	}
	return total
}

// SpentQueries 按顺序返回被查询过 spent 状态的地址
func (t *Tangle) SpentQueries() []tangle.Hash {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]tangle.Hash(nil), t.spentQueries...)
}

// enter 计数并返回注入的错误, 调用方需持有锁
func (t *Tangle) enter(op string) error {
	t.calls[op]++
	return t.errs[op]
}

func (t *Tangle) FindTransactions(_ context.Context, addresses []tangle.Hash) ([]tangle.Hash, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.enter(OpFindTransactions); err != nil {
		return nil, err
	}

	wanted := toSet(addresses)
	var hashes []tangle.Hash
	for _, h := range t.order {
		tx, ok := t.txs[h]
		if ok && wanted[tx.Address] {
			hashes = append(hashes, h)
		}
	}
	return hashes, nil
}

func (t *Tangle) WereAddressesSpentFrom(_ context.Context, addresses []tangle.Hash) ([]bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.enter(OpWereAddressesSpentFrom); err != nil {
		return nil, err
	}

	states := make([]bool, len(addresses))
	for i, addr := range addresses {
		t.spentQueries = append(t.spentQueries, addr)
		states[i] = t.spent[addr]
	}
	return states, nil
}

func (t *Tangle) GetTransactions(_ context.Context, hashes []tangle.Hash) ([]*tangle.Transaction, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.enter(OpGetTransactions); err != nil {
		return nil, err
	}

	txs := make([]*tangle.Transaction, 0, len(hashes))
	for _, h := range hashes {
		if tx, ok := t.txs[h]; ok {
			txs = append(txs, &tx)
		}
	}
	return txs, nil
}

func (t *Tangle) FindTransactionObjectsByBundle(_ context.Context, bundles []tangle.Hash) ([]*tangle.Transaction, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.enter(OpFindTransactionsByBundle); err != nil {
		return nil, err
	}

	wanted := toSet(bundles)
	var txs []*tangle.Transaction
	for _, h := range t.order {
		tx, ok := t.txs[h]
		if ok && wanted[tx.Bundle] {
			txs = append(txs, &tx)
		}
	}
	return txs, nil
}

func (t *Tangle) GetLatestInclusionStates(_ context.Context, hashes []tangle.Hash) (map[tangle.Hash]bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.enter(OpGetLatestInclusionStates); err != nil {
		return nil, err
	}

	states := make(map[tangle.Hash]bool, len(hashes))
	for _, h := range hashes {
		if state, ok := t.confirmed[h]; ok {
			states[h] = state
		}
	}
	return states, nil
}

func (t *Tangle) GetBundles(_ context.Context, tails []tangle.Hash) ([]*tangle.Bundle, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.enter(OpGetBundles); err != nil {
		return nil, err
	}

	bundles := make([]*tangle.Bundle, 0, len(tails))
	for _, tailHash := range tails {
		tail, ok := t.txs[tailHash]
		if !ok {
			continue
		}
		if !tail.IsTail() {
			return nil, fmt.Errorf("transaction %s is not a tail", tailHash)
		}

		bundle := &tangle.Bundle{Transactions: []*tangle.Transaction{&tail}}
		current := tail
		complete := true
		for current.CurrentIndex < current.LastIndex {
			next, ok := t.txs[current.TrunkTransaction]
			if !ok || next.Bundle != tail.Bundle {
				complete = false
				break
			}
			bundle.Transactions = append(bundle.Transactions, &next)
			current = next
		}
		if complete {
			bundles = append(bundles, bundle)
		}
	}
	return bundles, nil
}

func (t *Tangle) GetBalances(_ context.Context, addresses []tangle.Hash) ([]int64, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.enter(OpGetBalances); err != nil {
		return nil, err
	}

	balances := make([]int64, len(addresses))
	for i, addr := range addresses {
		balances[i] = t.balances[addr]
	}
	return balances, nil
}

func toSet(hashes []tangle.Hash) map[tangle.Hash]bool {
	set := make(map[tangle.Hash]bool, len(hashes))
	for _, h := range hashes {
		set[h] = true
	}
	return set
}
