package tangle

import (
	"errors"
	"fmt"
	"strings"
)

// TryteAlphabet 三进制字符表, 下标即 tryte 的无符号值 (0..26)
const TryteAlphabet = "9ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// HashTrytesSize 交易哈希 / 地址 / bundle 哈希的 tryte 长度
const HashTrytesSize = 81

var (
	ErrInvalidTrytes = errors.New("invalid trytes")
	ErrInvalidHash   = errors.New("invalid hash")
)

// tryteValue 返回平衡三进制下的值 (-13..13)
func tryteValue(c byte) (int64, bool) {
	idx := strings.IndexByte(TryteAlphabet, c)
	if idx < 0 {
		return 0, false
	}
	if idx > 13 {
		return int64(idx - 27), true
	}
	return int64(idx), true
}

// ValidTrytes 检查字符串是否只包含合法 tryte 字符
func ValidTrytes(s string) bool {
	for i := 0; i < len(s); i++ {
		if strings.IndexByte(TryteAlphabet, s[i]) < 0 {
			return false
		}
	}
	return true
}

// TrytesToInt 小端序平衡三进制 -> int64
func TrytesToInt(s string) (int64, error) {
	var (
		value int64
		base  int64 = 1
	)
	for i := 0; i < len(s); i++ {
		v, ok := tryteValue(s[i])
		if !ok {
			return 0, fmt.Errorf("%w: %q", ErrInvalidTrytes, s)
		}
		value += v * base
		base *= 27
	}
	return value, nil
}

// IntToTrytes int64 -> 定长 tryte 字符串 (不足补 9)
func IntToTrytes(n int64, length int) string {
	var sb strings.Builder
	sb.Grow(length)
	for i := 0; i < length; i++ {
		r := n % 27
		n /= 27
		if r > 13 {
			r -= 27
			n++
		} else if r < -13 {
			r += 27
			n--
		}
		if r < 0 {
			r += 27
		}
		sb.WriteByte(TryteAlphabet[r])
	}
	return sb.String()
}

// BytesToTrytes 每个字节编码为两个 tryte
func BytesToTrytes(b []byte) string {
	var sb strings.Builder
	sb.Grow(len(b) * 2)
	for _, c := range b {
		sb.WriteByte(TryteAlphabet[int(c)%27])
		sb.WriteByte(TryteAlphabet[int(c)/27])
	}
	return sb.String()
}

// Pad 右侧补 9 到指定长度
func Pad(s string, length int) string {
	if len(s) >= length {
		return s
	}
	return s + strings.Repeat("9", length-len(s))
}

func isNull(s string) bool {
	return strings.Trim(s, "9") == ""
}
