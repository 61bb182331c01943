package address

import (
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	"golang.org/x/crypto/sha3"

	"tangle-wallet/pkg/bip32"
	"tangle-wallet/pkg/tangle"
)

const (
	// DefaultSecurityLevel 未指定安全等级时使用
	DefaultSecurityLevel = 2
	MinSecurityLevel     = 1
	MaxSecurityLevel     = 3

	// CoinType SLIP-44 中 IOTA 的 coin type
	CoinType = 4218
)

var (
	ErrInvalidSecurityLevel = errors.New("invalid security level")
	ErrIndexOutOfRange      = errors.New("address index out of range")
)

// ValidSecurityLevel 检查安全等级是否在 1..3
func ValidSecurityLevel(level int) bool {
	return level >= MinSecurityLevel && level <= MaxSecurityLevel
}

// Sequence 地址序列生产者: 同一个 (seed, security) 下按索引递增产生地址
type Sequence interface {
	// From 返回从 start 开始的惰性迭代器
	From(start int) Iterator
}

// Iterator 惰性、无界的地址迭代器
type Iterator interface {
	Next() (tangle.Address, error)
}

// Factory 根据种子和安全等级构造地址序列, scanner 通过它拿到 Sequence
type Factory func(seed []byte, security int) (Sequence, error)

// HDSequence 基于 BIP-32 的地址序列
// 地址 i = SHA3-384(m/44'/4218'/(security-1)'/0/i 的压缩公钥), 取前 81 tryte
type HDSequence struct {
	chainKey bip32.ExtendedKey
	security int
}

// NewHDSequence 实现 Factory
func NewHDSequence(seed []byte, security int) (Sequence, error) {
	if !ValidSecurityLevel(security) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSecurityLevel, security)
	}

	wallet, err := bip32.NewMasterKeyFromSeed(seed, &chaincfg.MainNetParams)
	if err != nil {
		return nil, err
	}

	// 账户层用 hardened 派生, 之后的 external chain 只需要公钥
	chainKey, err := wallet.DerivePath(bip32.ChainPath(CoinType, uint32(security-1)))
	if err != nil {
		return nil, err
	}
	chainPub, err := chainKey.Neuter()
	if err != nil {
		return nil, err
	}

	return &HDSequence{chainKey: chainPub, security: security}, nil
}

// Address 派生单个地址
func (s *HDSequence) Address(index int) (tangle.Address, error) {
	if index < 0 || uint64(index) >= hdkeychain.HardenedKeyStart {
		return tangle.Address{}, fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}

	child, err := s.chainKey.Derive(uint32(index))
	if err != nil {
		return tangle.Address{}, err
	}
	pub, err := child.ECPubKey()
	if err != nil {
		return tangle.Address{}, fmt.Errorf("获取 EC 公钥失败: %w", err)
	}

	return tangle.Address{
		Hash:          tangle.Hash(PubKeyToTrytes(pub.SerializeCompressed())),
		Index:         index,
		SecurityLevel: s.security,
	}, nil
}

// From 实现 Sequence
func (s *HDSequence) From(start int) Iterator {
	return &hdIterator{seq: s, next: start}
}

type hdIterator struct {
	seq  *HDSequence
	next int
}

func (it *hdIterator) Next() (tangle.Address, error) {
	addr, err := it.seq.Address(it.next)
	if err != nil {
		return tangle.Address{}, err
	}
	it.next++
	return addr, nil
}

// PubKeyToTrytes 公钥 -> 81 tryte 地址标识
func PubKeyToTrytes(pubKey []byte) string {
	h := sha3.New384()
	h.Write(pubKey)
	return tangle.BytesToTrytes(h.Sum(nil))[:tangle.HashTrytesSize]
}
