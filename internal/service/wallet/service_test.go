package wallet

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tangle-wallet/internal/ledger/ledgertest"
	"tangle-wallet/internal/model"
	"tangle-wallet/internal/service/mq"
	"tangle-wallet/pkg/address"
	"tangle-wallet/pkg/errno"
	"tangle-wallet/pkg/tangle"
)

var seed = []byte("0123456789abcdef0123456789abcdef")

type fakeSequence struct{ security int }

type fakeIterator struct{ next, security int }

func addrHash(i int) tangle.Hash {
	return ledgertest.H("ADDR" + tangle.IntToTrytes(int64(i), 4))
}

func fakeFactory(_ []byte, security int) (address.Sequence, error) {
	return fakeSequence{security: security}, nil
}

func (s fakeSequence) From(start int) address.Iterator {
	return &fakeIterator{next: start, security: s.security}
}

func (it *fakeIterator) Next() (tangle.Address, error) {
	a := tangle.Address{Hash: addrHash(it.next), Index: it.next, SecurityLevel: it.security}
	it.next++
	return a, nil
}

type memoryStore struct {
	mu   sync.Mutex
	rows map[int]model.UsedAddress
	err  error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{rows: make(map[int]model.UsedAddress)}
}

func (m *memoryStore) Save(_ context.Context, addr *model.UsedAddress) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.rows[addr.AddressIndex] = *addr
	return nil
}

func (m *memoryStore) LastIndex(_ context.Context, _ string, _ int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	last := -1
	for idx := range m.rows {
		if idx > last {
			last = idx
		}
	}
	return last, nil
}

func (m *memoryStore) List(_ context.Context, _ string, _ int) ([]model.UsedAddress, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.UsedAddress, 0, len(m.rows))
	for _, r := range m.rows {
		out = append(out, r)
	}
	return out, nil
}

type recordingProducer struct {
	mu       sync.Mutex
	messages []mq.Message
	err      error
}

func (p *recordingProducer) Publish(_ context.Context, topic, key string, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.messages = append(p.messages, mq.Message{Topic: topic, Key: key, Payload: payload})
	return nil
}

func (p *recordingProducer) Close() error { return nil }

// useAddress 在地址 index 上挂一个 bundle
func useAddress(tg *ledgertest.Tangle, index int, name string, timestamp int64, size int) []tangle.Transaction {
	return tg.AddBundle(name, timestamp, size, addrHash(index))
}

func newTestService(tg *ledgertest.Tangle, opts ...Option) *Service {
	opts = append([]Option{WithSequenceFactory(fakeFactory)}, opts...)
	return NewService(seed, tg, opts...)
}

func TestService_UsedAddresses(t *testing.T) {
	tg := ledgertest.New()
	useAddress(tg, 0, "ZERO", 100, 1)
	tg.SetSpent(addrHash(1), true)

	results, err := newTestService(tg).UsedAddresses(context.Background(), 0, 0)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, address.DefaultSecurityLevel, results[0].Address.SecurityLevel)
	assert.Empty(t, results[1].Hashes)
}

func TestService_UsedAddressesNone(t *testing.T) {
	results, err := newTestService(ledgertest.New()).UsedAddresses(context.Background(), 0, 2)
	require.NoError(t, err)
	assert.NotNil(t, results)
	assert.Empty(t, results)
}

func TestService_NewAddress(t *testing.T) {
	tg := ledgertest.New()
	useAddress(tg, 0, "ZERO", 100, 1)
	useAddress(tg, 1, "ONE", 100, 1)
	tg.SetSpent(addrHash(2), true)
	svc := newTestService(tg)

	addr, err := svc.NewAddress(context.Background(), 0, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, addr.Index)
	assert.Equal(t, addrHash(3), addr.Hash)

	// 起始位置已经是未使用地址
	addr, err = svc.NewAddress(context.Background(), 10, 2)
	require.NoError(t, err)
	assert.Equal(t, 10, addr.Index)

	_, err = svc.NewAddress(context.Background(), -1, 2)
	assert.ErrorIs(t, err, errno.ErrInvalidStartIndex)
}

func TestService_Transfers(t *testing.T) {
	tg := ledgertest.New()
	late := useAddress(tg, 0, "LATE", 300, 2)
	early := useAddress(tg, 1, "EARLY", 100, 1)
	tg.SetConfirmed(early[0].Hash, true)
	svc := newTestService(tg)

	bundles, err := svc.Transfers(context.Background(), 0, 0, 2, true)
	require.NoError(t, err)
	require.Len(t, bundles, 2)
	assert.Equal(t, early[0].Bundle, bundles[0].Hash())
	assert.Equal(t, late[0].Bundle, bundles[1].Hash())
	require.NotNil(t, bundles[0].Confirmed)
	assert.True(t, *bundles[0].Confirmed)
	assert.Nil(t, bundles[1].Confirmed)
}

func TestService_TransfersRange(t *testing.T) {
	tg := ledgertest.New()
	// 索引 1 未使用, 区间模式仍然会查到索引 2
	useAddress(tg, 0, "FIRST", 100, 1)
	third := useAddress(tg, 2, "THIRD", 200, 1)
	useAddress(tg, 5, "OUTSIDE", 300, 1)
	svc := newTestService(tg)

	bundles, err := svc.Transfers(context.Background(), 0, 3, 2, false)
	require.NoError(t, err)
	require.Len(t, bundles, 2)
	assert.Equal(t, third[0].Bundle, bundles[1].Hash())
	assert.Equal(t, 1, tg.Calls(ledgertest.OpFindTransactions))
	assert.Zero(t, tg.Calls(ledgertest.OpWereAddressesSpentFrom))

	_, err = svc.Transfers(context.Background(), 5, 5, 2, false)
	assert.ErrorIs(t, err, errno.ErrInvalidRange)
}

func TestService_RangeTooLarge(t *testing.T) {
	tg := ledgertest.New()
	svc := newTestService(tg)
	ctx := context.Background()

	_, err := svc.Transfers(ctx, 0, 1<<40, 2, false)
	assert.ErrorIs(t, err, errno.ErrInvalidRange)
	_, err = svc.AccountData(ctx, 10, 11+MaxRangeSpan, 2, false)
	assert.ErrorIs(t, err, errno.ErrInvalidRange)
	assert.Zero(t, tg.TotalCalls())

	// 正好等于上限是允许的
	_, err = svc.Transfers(ctx, 10, 10+MaxRangeSpan, 2, false)
	require.NoError(t, err)
	assert.Equal(t, 1, tg.Calls(ledgertest.OpFindTransactions))
}

func TestService_AccountData(t *testing.T) {
	tg := ledgertest.New()
	useAddress(tg, 0, "ACC", 100, 2)
	tg.SetSpent(addrHash(1), true)
	tg.SetBalance(addrHash(0), 1500000)
	tg.SetBalance(addrHash(1), 250)

	data, err := newTestService(tg).AccountData(context.Background(), 0, 0, 2, false)
	require.NoError(t, err)
	assert.Len(t, data.Addresses, 2)
	assert.Equal(t, int64(1500250), data.Balance)
	assert.Equal(t, "1.50025", data.BalanceMi)
	assert.Len(t, data.Bundles, 1)
}

func TestService_AccountDataEmpty(t *testing.T) {
	tg := ledgertest.New()

	data, err := newTestService(tg).AccountData(context.Background(), 0, 0, 2, false)
	require.NoError(t, err)
	assert.Empty(t, data.Addresses)
	assert.Zero(t, data.Balance)
	assert.Equal(t, "0", data.BalanceMi)
	assert.Zero(t, tg.Calls(ledgertest.OpGetBalances))
}

func TestService_ResolveBundles(t *testing.T) {
	tg := ledgertest.New()
	txs := tg.AddBundle("DIRECT", 100, 2, ledgertest.H("SOMEONE"))
	svc := newTestService(tg)

	bundles, err := svc.ResolveBundles(context.Background(), []string{txs[1].Hash.String()}, false)
	require.NoError(t, err)
	require.Len(t, bundles, 1)

	_, err = svc.ResolveBundles(context.Background(), []string{"not-a-hash"}, false)
	assert.ErrorIs(t, err, errno.ErrInvalidHash)
	code, _ := errno.Decode(err)
	assert.Equal(t, errno.ErrInvalidHash.Code, code)
}

func TestService_Sync(t *testing.T) {
	tg := ledgertest.New()
	useAddress(tg, 0, "SYNCA", 100, 1)
	tg.SetSpent(addrHash(1), true)

	store := newMemoryStore()
	producer := &recordingProducer{}
	svc := newTestService(tg, WithStore(store), WithProducer(producer, "events"))
	ctx := context.Background()

	res, err := svc.Sync(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 0, res.StartIndex)
	assert.Equal(t, 2, res.NextIndex)
	assert.Len(t, res.Found, 2)
	assert.Equal(t, 1, store.rows[0].TxCount)
	assert.Equal(t, 0, store.rows[1].TxCount)
	assert.Equal(t, svc.Fingerprint(), store.rows[0].SeedFingerprint)

	require.Len(t, producer.messages, 2)
	assert.Equal(t, "events", producer.messages[0].Topic)
	assert.Equal(t, svc.Fingerprint(), producer.messages[0].Key)
	event, err := mq.DecodeAddressUsedEvent(producer.messages[1].Payload)
	require.NoError(t, err)
	assert.Equal(t, 1, event.Index)

	// 新地址被使用后, 下次同步从断点继续
	useAddress(tg, 2, "SYNCC", 200, 1)
	before := tg.Calls(ledgertest.OpFindTransactions)
	res, err = svc.Sync(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, res.StartIndex)
	assert.Equal(t, 3, res.NextIndex)
	require.Len(t, res.Found, 1)
	assert.Equal(t, 2, tg.Calls(ledgertest.OpFindTransactions)-before)
	assert.Len(t, producer.messages, 3)
}

func TestService_SyncErrors(t *testing.T) {
	tg := ledgertest.New()
	useAddress(tg, 0, "ERRA", 100, 1)

	_, err := newTestService(tg).Sync(context.Background(), 2)
	assert.ErrorIs(t, err, errno.ErrStoreNotConfigured)

	store := newMemoryStore()
	store.err = errors.New("disk full")
	_, err = newTestService(tg, WithStore(store)).Sync(context.Background(), 2)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "disk full"))
	assert.ErrorIs(t, err, errno.ErrDatabase)

	// 事件发送失败不影响同步
	producer := &recordingProducer{err: errors.New("broker down")}
	res, err := newTestService(tg, WithStore(newMemoryStore()), WithProducer(producer, "events")).Sync(context.Background(), 2)
	require.NoError(t, err)
	assert.Len(t, res.Found, 1)
}

type fakeLock struct {
	held     map[string]string
	acquired []string
	released []string
}

func (l *fakeLock) Acquire(_ context.Context, key string, _ time.Duration) (string, bool, error) {
	if _, ok := l.held[key]; ok {
		return "", false, nil
	}
	l.held[key] = "token-" + key
	l.acquired = append(l.acquired, key)
	return l.held[key], true, nil
}

func (l *fakeLock) Release(_ context.Context, key, token string) error {
	if l.held[key] != token {
		return errors.New("not held")
	}
	delete(l.held, key)
	l.released = append(l.released, key)
	return nil
}

func TestService_SyncLock(t *testing.T) {
	tg := ledgertest.New()
	useAddress(tg, 0, "LOCKA", 100, 1)

	locker := &fakeLock{held: map[string]string{}}
	svc := newTestService(tg, WithStore(newMemoryStore()), WithLocker(locker, time.Minute))
	key := "sync:" + svc.Fingerprint() + ":2"

	_, err := svc.Sync(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, []string{key}, locker.acquired)
	assert.Equal(t, []string{key}, locker.released)

	// 另一个实例持有锁
	locker.held[key] = "other"
	before := tg.TotalCalls()
	_, err = svc.Sync(context.Background(), 2)
	assert.ErrorIs(t, err, errno.ErrSyncInProgress)
	assert.Equal(t, before, tg.TotalCalls())
}

func TestService_InvalidSecurity(t *testing.T) {
	tg := ledgertest.New()
	svc := newTestService(tg, WithStore(newMemoryStore()))
	ctx := context.Background()

	_, err := svc.Transfers(ctx, 0, 0, 7, false)
	assert.ErrorIs(t, err, errno.ErrInvalidSecurityLevel)
	_, err = svc.AccountData(ctx, 0, 10, -1, false)
	assert.ErrorIs(t, err, errno.ErrInvalidSecurityLevel)
	_, err = svc.Sync(ctx, 4)
	assert.ErrorIs(t, err, errno.ErrInvalidSecurityLevel)
	assert.Zero(t, tg.TotalCalls())
}
