package bip32

import (
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
)

// ExtendedKey 地址派生用到的扩展密钥操作
// 地址序列只在 external chain 的公钥上做非 hardened 派生
type ExtendedKey interface {
	// String xprv / xpub, 测试里用来比较派生结果
	String() string
	// ECPubKey 压缩后作为地址摘要的输入
	ECPubKey() (*btcec.PublicKey, error)
	Derive(index uint32) (ExtendedKey, error)
	IsPrivate() bool
	// Neuter 去掉私钥, 扫描期间只保留 chain 公钥
	Neuter() (ExtendedKey, error)
}

// HDWallet 种子对应的主密钥
type HDWallet interface {
	MasterKey() ExtendedKey
	// DerivePath 派生到 ChainPath 给出的 external chain
	DerivePath(path string) (ExtendedKey, error)
}

var (
	ErrInvalidSeed = errors.New("无效的种子")
	ErrInvalidPath = errors.New("无效的派生路径")
)

// ChainPath external chain 路径 m/44'/coin'/account'/0
// 每个安全等级占一个 account (security-1), 地址索引挂在这条 chain 下
func ChainPath(coinType, account uint32) string {
	return fmt.Sprintf("m/44'/%d'/%d'/0", coinType, account)
}
