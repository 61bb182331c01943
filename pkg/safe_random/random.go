package safe_random

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// GenerateRandomBytes 生成指定长度的安全随机字节切片
func GenerateRandomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("生成随机字节失败: %w", err)
	}
	return b, nil
}

// GenerateRandomHexString 返回 n 字节随机数的 hex 编码, 长度为 2n
// 用于锁持有者 token 和消费者名
func GenerateRandomHexString(n int) (string, error) {
	b, err := GenerateRandomBytes(n)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
