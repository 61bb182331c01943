package wallet

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"tangle-wallet/internal/ledger"
	"tangle-wallet/internal/model"
	"tangle-wallet/internal/service"
	"tangle-wallet/internal/service/mq"
	"tangle-wallet/internal/service/resolver"
	"tangle-wallet/internal/service/scanner"
	"tangle-wallet/pkg/address"
	"tangle-wallet/pkg/crypto_util"
	"tangle-wallet/pkg/errno"
	"tangle-wallet/pkg/lock"
	"tangle-wallet/pkg/logger"
	"tangle-wallet/pkg/monitor"
	"tangle-wallet/pkg/tangle"
)

var _ service.WalletService = (*Service)(nil)

// MaxRangeSpan 区间模式下一次最多查询的地址数, 与 bundles 请求的上限一致
const MaxRangeSpan = 1000

// Service 绑定一个种子的钱包服务
type Service struct {
	seed        []byte
	fingerprint string

	client   ledger.Client
	sequence address.Factory
	metrics  *monitor.LedgerMetrics
	scanner  *scanner.Scanner
	resolver *resolver.Resolver

	store    service.AddressStore // 可选, Sync 需要
	producer mq.Producer          // 可选, 发送 address_used 事件
	topic    string
	locker   lock.DistributedLock // 可选, 多实例下串行化同一种子的 Sync
	lockTTL  time.Duration
	now      func() time.Time
}

type Option func(*Service)

func WithStore(store service.AddressStore) Option {
	return func(s *Service) {
		s.store = store
	}
}

func WithProducer(p mq.Producer, topic string) Option {
	return func(s *Service) {
		s.producer = p
		s.topic = topic
	}
}

// WithLocker 同一种子同一安全等级同时只允许一个 Sync
func WithLocker(l lock.DistributedLock, ttl time.Duration) Option {
	return func(s *Service) {
		s.locker = l
		s.lockTTL = ttl
	}
}

func WithSequenceFactory(f address.Factory) Option {
	return func(s *Service) {
		s.sequence = f
	}
}

func WithMetrics(m *monitor.LedgerMetrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func NewService(seed []byte, client ledger.Client, opts ...Option) *Service {
	s := &Service{
		seed:        seed,
		fingerprint: crypto_util.SeedFingerprint(seed),
		client:      client,
		sequence:    address.NewHDSequence,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.scanner = scanner.New(client, scanner.WithSequenceFactory(s.sequence), scanner.WithMetrics(s.metrics))
	s.resolver = resolver.New(client, resolver.WithMetrics(s.metrics))
	return s
}

// Fingerprint 种子指纹
func (s *Service) Fingerprint() string {
	return s.fingerprint
}

func (s *Service) Scan(start, security int) (*scanner.Iterator, error) {
	return s.scanner.Scan(s.seed, start, security)
}

func (s *Service) UsedAddresses(ctx context.Context, start, security int) ([]tangle.ScanResult, error) {
	results, err := s.scanner.All(ctx, s.seed, start, security)
	if err != nil {
		return nil, err
	}
	if results == nil {
		results = []tangle.ScanResult{}
	}
	return results, nil
}

// NewAddress 返回 start 之后第一个既没有交易也没被花费的地址
func (s *Service) NewAddress(ctx context.Context, start, security int) (tangle.Address, error) {
	security, err := normalize(start, security)
	if err != nil {
		return tangle.Address{}, err
	}

	next := start
	it, err := s.scanner.Scan(s.seed, start, security)
	if err != nil {
		return tangle.Address{}, err
	}
	for {
		result, ok, err := it.Next(ctx)
		if err != nil {
			return tangle.Address{}, err
		}
		if !ok {
			break
		}
		next = result.Address.Index + 1
	}

	return s.addressAt(next, security)
}

func (s *Service) Transfers(ctx context.Context, start, stop, security int, inclusionStates bool) ([]*tangle.Bundle, error) {
	_, hashes, err := s.collect(ctx, start, stop, security)
	if err != nil {
		return nil, err
	}
	return s.resolver.Resolve(ctx, hashes, inclusionStates)
}

func (s *Service) AccountData(ctx context.Context, start, stop, security int, inclusionStates bool) (*service.AccountData, error) {
	addrs, hashes, err := s.collect(ctx, start, stop, security)
	if err != nil {
		return nil, err
	}

	var balance int64
	if len(addrs) > 0 {
		ids := make([]tangle.Hash, len(addrs))
		for i, a := range addrs {
			ids[i] = a.Hash
		}
		balances, err := s.client.GetBalances(ctx, ids)
		if err != nil {
			return nil, err
		}
		for _, b := range balances {
			balance += b
		}
	}

	bundles, err := s.resolver.Resolve(ctx, hashes, inclusionStates)
	if err != nil {
		return nil, err
	}

	if addrs == nil {
		addrs = []tangle.Address{}
	}
	return &service.AccountData{
		Addresses: addrs,
		Balance:   balance,
		BalanceMi: decimal.NewFromInt(balance).Shift(-6).String(),
		Bundles:   bundles,
	}, nil
}

func (s *Service) ResolveBundles(ctx context.Context, hashes []string, inclusionStates bool) ([]*tangle.Bundle, error) {
	parsed := make([]tangle.Hash, 0, len(hashes))
	for _, raw := range hashes {
		h, err := tangle.NewHash(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", errno.ErrInvalidHash, raw)
		}
		parsed = append(parsed, h)
	}
	return s.resolver.Resolve(ctx, parsed, inclusionStates)
}

// Sync 从上次保存的位置继续扫描, 新发现的地址落库并发送事件
func (s *Service) Sync(ctx context.Context, security int) (*service.SyncResult, error) {
	if s.store == nil {
		return nil, errno.ErrStoreNotConfigured
	}
	security, err := normalize(0, security)
	if err != nil {
		return nil, err
	}

	if s.locker != nil {
		key := fmt.Sprintf("sync:%s:%d", s.fingerprint, security)
		token, ok, err := s.locker.Acquire(ctx, key, s.lockTTL)
		if err != nil {
			return nil, fmt.Errorf("%w: 获取同步锁失败: %w", errno.ErrDatabase, err)
		}
		if !ok {
			return nil, errno.ErrSyncInProgress
		}
		defer func() {
			if err := s.locker.Release(context.WithoutCancel(ctx), key, token); err != nil {
				logger.Warn("释放同步锁失败", zap.String("key", key), zap.Error(err))
			}
		}()
	}

	last, err := s.store.LastIndex(ctx, s.fingerprint, security)
	if err != nil {
		return nil, fmt.Errorf("%w: 读取同步断点失败: %w", errno.ErrDatabase, err)
	}
	start := last + 1

	it, err := s.scanner.Scan(s.seed, start, security)
	if err != nil {
		return nil, err
	}

	result := &service.SyncResult{StartIndex: start, NextIndex: start, Found: []tangle.ScanResult{}}
	for {
		found, ok, err := it.Next(ctx)
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}

		if err := s.store.Save(ctx, &model.UsedAddress{
			SeedFingerprint: s.fingerprint,
			SecurityLevel:   security,
			AddressIndex:    found.Address.Index,
			Address:         found.Address.Hash.String(),
			TxCount:         len(found.Hashes),
		}); err != nil {
			return nil, fmt.Errorf("%w: 保存地址 %d 失败: %w", errno.ErrDatabase, found.Address.Index, err)
		}
		s.publish(ctx, found)

		result.Found = append(result.Found, found)
		result.NextIndex = found.Address.Index + 1
	}

	logger.Info("地址同步完成",
		zap.String("fingerprint", s.fingerprint),
		zap.Int("security", security),
		zap.Int("start", result.StartIndex),
		zap.Int("found", len(result.Found)))
	return result, nil
}

// publish 事件发送失败只记录日志, 数据已经落库
func (s *Service) publish(ctx context.Context, found tangle.ScanResult) {
	if s.producer == nil {
		return
	}
	payload, err := mq.NewAddressUsedEvent(s.fingerprint, found, s.now()).Marshal()
	if err != nil {
		logger.Error("事件序列化失败", zap.Error(err))
		return
	}
	if err := s.producer.Publish(ctx, s.topic, s.fingerprint, payload); err != nil {
		logger.Error("发送 address_used 事件失败",
			zap.Int("index", found.Address.Index),
			zap.Error(err))
	}
}

// collect 收集地址和交易哈希
// stop 为 0 时使用扫描器; 否则一次性查询 [start, stop) 区间内的所有地址
func (s *Service) collect(ctx context.Context, start, stop, security int) ([]tangle.Address, []tangle.Hash, error) {
	security, err := normalize(start, security)
	if err != nil {
		return nil, nil, err
	}

	if stop == 0 {
		results, err := s.scanner.All(ctx, s.seed, start, security)
		if err != nil {
			return nil, nil, err
		}
		var (
			addrs  []tangle.Address
			hashes []tangle.Hash
		)
		for _, r := range results {
			addrs = append(addrs, r.Address)
			hashes = append(hashes, r.Hashes...)
		}
		return addrs, hashes, nil
	}

	if stop <= start || stop-start > MaxRangeSpan {
		return nil, nil, fmt.Errorf("%w: [%d, %d)", errno.ErrInvalidRange, start, stop)
	}

	seq, err := s.sequence(s.seed, security)
	if err != nil {
		return nil, nil, err
	}
	it := seq.From(start)
	addrs := make([]tangle.Address, 0, stop-start)
	ids := make([]tangle.Hash, 0, stop-start)
	for i := start; i < stop; i++ {
		a, err := it.Next()
		if err != nil {
			return nil, nil, err
		}
		addrs = append(addrs, a)
		ids = append(ids, a.Hash)
	}

	hashes, err := s.client.FindTransactions(ctx, ids)
	if err != nil {
		return nil, nil, err
	}
	return addrs, hashes, nil
}

func (s *Service) addressAt(index, security int) (tangle.Address, error) {
	seq, err := s.sequence(s.seed, security)
	if err != nil {
		return tangle.Address{}, err
	}
	return seq.From(index).Next()
}

func normalize(start, security int) (int, error) {
	if start < 0 {
		return 0, errno.ErrInvalidStartIndex
	}
	if security == 0 {
		security = address.DefaultSecurityLevel
	}
	if !address.ValidSecurityLevel(security) {
		return 0, errno.ErrInvalidSecurityLevel
	}
	return security, nil
}
