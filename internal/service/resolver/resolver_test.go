package resolver

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"tangle-wallet/internal/ledger/ledgertest"
	"tangle-wallet/pkg/monitor"
	"tangle-wallet/pkg/tangle"
)

var testAddress = ledgertest.H("WALLET")

func bundleHashes(bundles []*tangle.Bundle) []tangle.Hash {
	out := make([]tangle.Hash, 0, len(bundles))
	for _, b := range bundles {
		out = append(out, b.Hash())
	}
	return out
}

func TestResolve_EmptyInput(t *testing.T) {
	tg := ledgertest.New()

	bundles, err := New(tg).Resolve(context.Background(), nil, true)
	require.NoError(t, err)
	assert.Empty(t, bundles)
	assert.Zero(t, tg.TotalCalls())
}

func TestResolve_SortedByTailTimestamp(t *testing.T) {
	tg := ledgertest.New()
	late := tg.AddBundle("LATE", 300, 2, testAddress)
	early := tg.AddBundle("EARLY", 100, 3, testAddress)
	middle := tg.AddBundle("MIDDLE", 200, 1, testAddress)

	bundles, err := New(tg).Resolve(context.Background(),
		[]tangle.Hash{late[0].Hash, early[0].Hash, middle[0].Hash}, false)
	require.NoError(t, err)

	assert.Equal(t, []tangle.Hash{early[0].Bundle, middle[0].Bundle, late[0].Bundle}, bundleHashes(bundles))
	assert.Len(t, bundles[0].Transactions, 3)
	for _, b := range bundles {
		assert.Nil(t, b.Confirmed)
	}
	assert.Zero(t, tg.Calls(ledgertest.OpGetLatestInclusionStates))
	assert.Zero(t, tg.Calls(ledgertest.OpFindTransactionsByBundle))
}

func TestResolve_NonTailAndTailOfSameBundle(t *testing.T) {
	tg := ledgertest.New()
	txs := tg.AddBundle("SAME", 100, 3, testAddress)

	// tail 和两笔非 tail 交易同时作为输入, 只产生一个 bundle
	bundles, err := New(tg).Resolve(context.Background(),
		[]tangle.Hash{txs[2].Hash, txs[0].Hash, txs[1].Hash, txs[2].Hash}, false)
	require.NoError(t, err)

	require.Len(t, bundles, 1)
	assert.Equal(t, txs[0].Hash, bundles[0].Tail().Hash)
	assert.Equal(t, 1, tg.Calls(ledgertest.OpFindTransactionsByBundle))
	assert.Equal(t, 1, tg.Calls(ledgertest.OpGetBundles))
}

func TestResolve_NonTailOnly(t *testing.T) {
	tg := ledgertest.New()
	txs := tg.AddBundle("SPEND", 100, 4, testAddress)

	bundles, err := New(tg).Resolve(context.Background(), []tangle.Hash{txs[3].Hash}, false)
	require.NoError(t, err)

	require.Len(t, bundles, 1)
	require.Len(t, bundles[0].Transactions, 4)
	for i, tx := range bundles[0].Transactions {
		assert.Equal(t, txs[i].Hash, tx.Hash)
	}
}

func TestResolve_InclusionStates(t *testing.T) {
	tg := ledgertest.New()
	confirmed := tg.AddBundle("CONF", 100, 2, testAddress)
	pending := tg.AddBundle("PEND", 200, 2, testAddress)
	unknown := tg.AddBundle("UNKN", 300, 1, testAddress)
	tg.SetConfirmed(confirmed[0].Hash, true)
	tg.SetConfirmed(pending[0].Hash, false)

	bundles, err := New(tg).Resolve(context.Background(),
		[]tangle.Hash{unknown[0].Hash, pending[1].Hash, confirmed[0].Hash}, true)
	require.NoError(t, err)
	require.Len(t, bundles, 3)

	require.NotNil(t, bundles[0].Confirmed)
	assert.True(t, *bundles[0].Confirmed)
	require.NotNil(t, bundles[1].Confirmed)
	assert.False(t, *bundles[1].Confirmed)
	// 节点没有给出状态
	assert.Nil(t, bundles[2].Confirmed)

	// tail 交易带着同样的确认状态
	for _, b := range bundles {
		assert.Equal(t, b.Confirmed, b.Tail().Confirmed)
	}
	assert.True(t, *bundles[0].Tail().Confirmed)
	assert.Nil(t, bundles[1].Transactions[1].Confirmed, "非 tail 交易不写确认状态")

	assert.Equal(t, 1, tg.Calls(ledgertest.OpGetLatestInclusionStates))
}

func TestResolve_SingleConfirmedTail(t *testing.T) {
	tg := ledgertest.New()
	solo := tg.AddBundle("SOLO", 100, 1, testAddress)
	tg.SetConfirmed(solo[0].Hash, true)

	bundles, err := New(tg).Resolve(context.Background(), []tangle.Hash{solo[0].Hash}, true)
	require.NoError(t, err)
	require.Len(t, bundles, 1)

	tail := bundles[0].Tail()
	require.NotNil(t, tail.Confirmed)
	assert.True(t, *tail.Confirmed)
	assert.Same(t, tail.Confirmed, bundles[0].Confirmed)
}

func TestResolve_PrunedData(t *testing.T) {
	tg := ledgertest.New()
	kept := tg.AddBundle("KEPT", 100, 2, testAddress)
	broken := tg.AddBundle("BROKEN", 200, 3, testAddress)
	tg.Remove(broken[1].Hash)

	bundles, err := New(tg).Resolve(context.Background(),
		[]tangle.Hash{kept[0].Hash, broken[0].Hash, ledgertest.H("MISSING")}, false)
	require.NoError(t, err)

	assert.Equal(t, []tangle.Hash{kept[0].Bundle}, bundleHashes(bundles))
}

func TestResolve_NothingFound(t *testing.T) {
	tg := ledgertest.New()

	bundles, err := New(tg).Resolve(context.Background(), []tangle.Hash{ledgertest.H("GONE")}, true)
	require.NoError(t, err)
	assert.Empty(t, bundles)
	assert.Equal(t, 1, tg.Calls(ledgertest.OpGetTransactions))
	assert.Zero(t, tg.Calls(ledgertest.OpGetBundles))
}

func TestResolve_LedgerErrorPropagates(t *testing.T) {
	boom := errors.New("connection reset")

	for _, op := range []string{
		ledgertest.OpGetTransactions,
		ledgertest.OpFindTransactionsByBundle,
		ledgertest.OpGetLatestInclusionStates,
		ledgertest.OpGetBundles,
	} {
		t.Run(op, func(t *testing.T) {
			tg := ledgertest.New()
			txs := tg.AddBundle("ERR", 100, 2, testAddress)
			tg.FailOn(op, boom)

			bundles, err := New(tg).Resolve(context.Background(), []tangle.Hash{txs[1].Hash}, true)
			assert.Same(t, boom, err)
			assert.Nil(t, bundles)
		})
	}
}

func TestResolve_Metrics(t *testing.T) {
	tg := ledgertest.New()
	a := tg.AddBundle("AAA", 100, 1, testAddress)
	b := tg.AddBundle("BBB", 200, 1, testAddress)

	metrics := monitor.NewLedgerMetrics(prometheus.NewRegistry())
	_, err := New(tg, WithMetrics(metrics)).Resolve(context.Background(), []tangle.Hash{a[0].Hash, b[0].Hash}, false)
	require.NoError(t, err)
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.ResolvedBundles))
}

// 性质: 任意输入组合下输出按 tail 时间戳升序, 且每个 bundle 只出现一次
func TestResolve_Properties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		tg := ledgertest.New()
		n := rapid.IntRange(1, 6).Draw(t, "bundles")

		var pool []tangle.Hash
		for i := 0; i < n; i++ {
			ts := rapid.Int64Range(0, 5).Draw(t, fmt.Sprintf("ts%d", i))
			size := rapid.IntRange(1, 4).Draw(t, fmt.Sprintf("size%d", i))
			for _, tx := range tg.AddBundle(fmt.Sprintf("P%c", 'A'+i), ts, size, testAddress) {
				pool = append(pool, tx.Hash)
			}
		}
		input := rapid.SliceOf(rapid.SampledFrom(pool)).Draw(t, "input")

		bundles, err := New(tg).Resolve(context.Background(), input, false)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		seen := make(map[tangle.Hash]bool)
		for i, b := range bundles {
			if seen[b.Hash()] {
				t.Fatalf("bundle %s returned twice", b.Hash())
			}
			seen[b.Hash()] = true
			if i > 0 && bundles[i-1].Tail().Timestamp > b.Tail().Timestamp {
				t.Fatalf("bundles out of order at %d", i)
			}
		}
		if len(input) > 0 && len(bundles) == 0 {
			t.Fatalf("no bundles resolved for %d inputs", len(input))
		}
	})
}
