package tangle

import (
	"errors"
	"fmt"
)

// TransactionTrytesSize 一笔交易编码后的 tryte 长度
const TransactionTrytesSize = 2673

// ErrEmptyTransaction 节点对未知哈希返回全 9 的 trytes
var ErrEmptyTransaction = errors.New("empty transaction trytes")

type field struct {
	start, end int
}

// 交易字段在 trytes 中的偏移
var (
	fieldSignature   = field{0, 2187}
	fieldAddress     = field{2187, 2268}
	fieldValue       = field{2268, 2295}
	fieldObsoleteTag = field{2295, 2322}
	fieldTimestamp   = field{2322, 2331}
	fieldCurrentIdx  = field{2331, 2340}
	fieldLastIdx     = field{2340, 2349}
	fieldBundle      = field{2349, 2430}
	fieldTrunk       = field{2430, 2511}
	fieldBranch      = field{2511, 2592}
	fieldTag         = field{2592, 2619}
	fieldAttachTs    = field{2619, 2628}
	fieldAttachLower = field{2628, 2637}
	fieldAttachUpper = field{2637, 2646}
	fieldNonce       = field{2646, 2673}
)

func (f field) of(s string) string {
	return s[f.start:f.end]
}

func (f field) size() int {
	return f.end - f.start
}

// ParseTransaction 解码交易 trytes
// hash 由调用方提供 (查询时的请求哈希), 这里不计算 Curl 哈希
func ParseTransaction(trytes string, hash Hash) (*Transaction, error) {
	if len(trytes) != TransactionTrytesSize {
		return nil, fmt.Errorf("%w: length %d", ErrInvalidTrytes, len(trytes))
	}
	if !ValidTrytes(trytes) {
		return nil, ErrInvalidTrytes
	}
	if isNull(trytes) {
		return nil, ErrEmptyTransaction
	}

	ints := make(map[field]int64, 7)
	for _, f := range []field{fieldValue, fieldTimestamp, fieldCurrentIdx, fieldLastIdx, fieldAttachTs, fieldAttachLower, fieldAttachUpper} {
		v, err := TrytesToInt(f.of(trytes))
		if err != nil {
			return nil, err
		}
		ints[f] = v
	}

	return &Transaction{
		Hash:                     hash,
		SignatureMessageFragment: fieldSignature.of(trytes),
		Address:                  Hash(fieldAddress.of(trytes)),
		Value:                    ints[fieldValue],
		ObsoleteTag:              fieldObsoleteTag.of(trytes),
		Timestamp:                ints[fieldTimestamp],
		CurrentIndex:             ints[fieldCurrentIdx],
		LastIndex:                ints[fieldLastIdx],
		Bundle:                   Hash(fieldBundle.of(trytes)),
		TrunkTransaction:         Hash(fieldTrunk.of(trytes)),
		BranchTransaction:        Hash(fieldBranch.of(trytes)),
		Tag:                      fieldTag.of(trytes),
		AttachmentTimestamp:      ints[fieldAttachTs],
		AttachmentTimestampLower: ints[fieldAttachLower],
		AttachmentTimestampUpper: ints[fieldAttachUpper],
		Nonce:                    fieldNonce.of(trytes),
	}, nil
}

// Trytes 编码为 2673 tryte
func (t *Transaction) Trytes() string {
	buf := make([]byte, 0, TransactionTrytesSize)
	put := func(f field, s string) {
		buf = append(buf, Pad(s, f.size())[:f.size()]...)
	}

	put(fieldSignature, t.SignatureMessageFragment)
	put(fieldAddress, string(t.Address))
	put(fieldValue, IntToTrytes(t.Value, fieldValue.size()))
	put(fieldObsoleteTag, t.ObsoleteTag)
	put(fieldTimestamp, IntToTrytes(t.Timestamp, fieldTimestamp.size()))
	put(fieldCurrentIdx, IntToTrytes(t.CurrentIndex, fieldCurrentIdx.size()))
	put(fieldLastIdx, IntToTrytes(t.LastIndex, fieldLastIdx.size()))
	put(fieldBundle, string(t.Bundle))
	put(fieldTrunk, string(t.TrunkTransaction))
	put(fieldBranch, string(t.BranchTransaction))
	put(fieldTag, t.Tag)
	put(fieldAttachTs, IntToTrytes(t.AttachmentTimestamp, fieldAttachTs.size()))
	put(fieldAttachLower, IntToTrytes(t.AttachmentTimestampLower, fieldAttachLower.size()))
	put(fieldAttachUpper, IntToTrytes(t.AttachmentTimestampUpper, fieldAttachUpper.size()))
	put(fieldNonce, t.Nonce)

	return string(buf)
}
