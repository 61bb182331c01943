package crypto_util

import (
	"encoding/hex"

	"lukechampine.com/blake3"
)

// fingerprintDomain 让指纹和其他用途的 blake3 结果区分开
const fingerprintDomain = "tangle-wallet/seed-fingerprint/v1"

// CalculateBlake3 计算输入的 Blake3 哈希值 (hex)
func CalculateBlake3(data []byte) string {
	hash := blake3.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// SeedFingerprint 种子的不可逆指纹, 数据库和消息里用它代替种子本身
func SeedFingerprint(seed []byte) string {
	h := blake3.New(32, nil)
	_, _ = h.Write([]byte(fingerprintDomain))
	_, _ = h.Write(seed)
	return hex.EncodeToString(h.Sum(nil))
}
