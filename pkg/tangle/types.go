package tangle

import "fmt"

// Hash 81 tryte 标识, 交易哈希、地址和 bundle 哈希共用
type Hash string

// NewHash 校验并构造 Hash
func NewHash(s string) (Hash, error) {
	if len(s) != HashTrytesSize || !ValidTrytes(s) {
		return "", fmt.Errorf("%w: %q", ErrInvalidHash, s)
	}
	return Hash(s), nil
}

func (h Hash) String() string {
	return string(h)
}

// Address 由种子派生出的地址
type Address struct {
	Hash          Hash `json:"address"`
	Index         int  `json:"index"`
	SecurityLevel int  `json:"security_level"`
}

// Transaction 解码后的交易
// Confirmed 只有在显式查询 inclusion state 后才会被赋值
type Transaction struct {
	Hash                     Hash   `json:"hash"`
	SignatureMessageFragment string `json:"signature_message_fragment"`
	Address                  Hash   `json:"address"`
	Value                    int64  `json:"value"`
	ObsoleteTag              string `json:"obsolete_tag"`
	Timestamp                int64  `json:"timestamp"`
	CurrentIndex             int64  `json:"current_index"`
	LastIndex                int64  `json:"last_index"`
	Bundle                   Hash   `json:"bundle"`
	TrunkTransaction         Hash   `json:"trunk_transaction"`
	BranchTransaction        Hash   `json:"branch_transaction"`
	Tag                      string `json:"tag"`
	AttachmentTimestamp      int64  `json:"attachment_timestamp"`
	AttachmentTimestampLower int64  `json:"attachment_timestamp_lower_bound"`
	AttachmentTimestampUpper int64  `json:"attachment_timestamp_upper_bound"`
	Nonce                    string `json:"nonce"`

	Confirmed *bool `json:"confirmed,omitempty"`
}

// IsTail bundle 中的第一笔交易
func (t *Transaction) IsTail() bool {
	return t.CurrentIndex == 0
}

// Bundle 同一 bundle 哈希下按 current index 排列的交易
type Bundle struct {
	Transactions []*Transaction `json:"transactions"`
	Confirmed    *bool          `json:"confirmed,omitempty"`
}

// Tail 返回 tail 交易, 空 bundle 返回 nil
func (b *Bundle) Tail() *Transaction {
	if len(b.Transactions) == 0 {
		return nil
	}
	return b.Transactions[0]
}

// Hash 返回 bundle 哈希
func (b *Bundle) Hash() Hash {
	if tail := b.Tail(); tail != nil {
		return tail.Bundle
	}
	return ""
}

// ScanResult 地址扫描的输出单元
type ScanResult struct {
	Address Address `json:"address"`
	Hashes  []Hash  `json:"hashes"`
}
