package bip32

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
)

// Keychain 实现了 ExtendedKey 接口，封装了 hdkeychain.ExtendedKey
type Keychain struct {
	key *hdkeychain.ExtendedKey
}

func (k *Keychain) String() string {
	return k.key.String()
}

func (k *Keychain) ECPubKey() (*btcec.PublicKey, error) {
	return k.key.ECPubKey()
}

func (k *Keychain) Derive(index uint32) (ExtendedKey, error) {
	childKey, err := k.key.Derive(index)
	if err != nil {
		return nil, fmt.Errorf("派生子密钥失败: %w", err)
	}
	return &Keychain{key: childKey}, nil
}

func (k *Keychain) IsPrivate() bool {
	return k.key.IsPrivate()
}

func (k *Keychain) Neuter() (ExtendedKey, error) {
	neuterKey, err := k.key.Neuter()
	if err != nil {
		return nil, fmt.Errorf("转换公钥失败: %w", err)
	}
	return &Keychain{key: neuterKey}, nil
}

// Wallet 实现 HDWallet 接口
type Wallet struct {
	masterKey *Keychain
}

// NewMasterKeyFromSeed 使用 BIP-39 种子生成主密钥
// network 只影响 xprv/xpub 的版本前缀, 为 nil 时使用 MainNetParams
func NewMasterKeyFromSeed(seed []byte, network *chaincfg.Params) (*Wallet, error) {
	if len(seed) < hdkeychain.MinSeedBytes || len(seed) > hdkeychain.MaxSeedBytes {
		return nil, ErrInvalidSeed
	}

	if network == nil {
		network = &chaincfg.MainNetParams
	}

	masterKey, err := hdkeychain.NewMaster(seed, network)
	if err != nil {
		return nil, fmt.Errorf("生成主密钥失败: %w", err)
	}

	return &Wallet{masterKey: &Keychain{key: masterKey}}, nil
}

func (w *Wallet) MasterKey() ExtendedKey {
	return w.masterKey
}

// DerivePath 解析路径并派生密钥
// 支持格式: m/44'/4218'/0'/0/0 或 m/44h/4218h/0h/0/0
func (w *Wallet) DerivePath(path string) (ExtendedKey, error) {
	indexes, err := ParsePath(path)
	if err != nil {
		return nil, err
	}

	var current ExtendedKey = w.masterKey
	for _, index := range indexes {
		current, err = current.Derive(index)
		if err != nil {
			return nil, err
		}
	}
	return current, nil
}

// ParsePath 把路径字符串解析为索引列表, hardened 段已加上 HardenedKeyStart
func ParsePath(path string) ([]uint32, error) {
	path = strings.TrimSpace(path)
	path = strings.TrimPrefix(path, "m")
	path = strings.TrimPrefix(path, "/")
	if path == "" {
		return nil, nil
	}

	segments := strings.Split(path, "/")
	indexes := make([]uint32, 0, len(segments))
	for _, segment := range segments {
		isHardened := false
		if strings.HasSuffix(segment, "'") || strings.HasSuffix(segment, "h") {
			isHardened = true
			segment = segment[:len(segment)-1]
		}

		val, err := strconv.ParseUint(segment, 10, 32)
		if err != nil || val >= hdkeychain.HardenedKeyStart {
			return nil, fmt.Errorf("%w: '%s'", ErrInvalidPath, segment)
		}

		index := uint32(val)
		if isHardened {
			index += hdkeychain.HardenedKeyStart
		}
		indexes = append(indexes, index)
	}
	return indexes, nil
}
