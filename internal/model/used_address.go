package model

import "time"

// UsedAddress 扫描得到的已使用地址
// 不保存种子, 只保存指纹 (pkg/crypto_util.SeedFingerprint)
type UsedAddress struct {
	ID              uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	SeedFingerprint string    `gorm:"type:char(64);not null;uniqueIndex:idx_seed_security_index,priority:1" json:"seed_fingerprint"`
	SecurityLevel   int       `gorm:"not null;uniqueIndex:idx_seed_security_index,priority:2" json:"security_level"`
	AddressIndex    int       `gorm:"not null;uniqueIndex:idx_seed_security_index,priority:3" json:"address_index"`
	Address         string    `gorm:"type:char(81);not null;index" json:"address"`
	TxCount         int       `gorm:"not null;default:0" json:"tx_count"` // 0 表示没有交易但已被花费
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (UsedAddress) TableName() string {
	return "used_addresses"
}
