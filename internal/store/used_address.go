package store

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"tangle-wallet/internal/model"
)

// UsedAddressStore 已使用地址的持久化, 作为同步的断点
type UsedAddressStore struct {
	db *gorm.DB
}

func NewUsedAddressStore(db *gorm.DB) *UsedAddressStore {
	return &UsedAddressStore{db: db}
}

// Save 按 (指纹, 安全等级, 索引) upsert
func (s *UsedAddressStore) Save(ctx context.Context, addr *model.UsedAddress) error {
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "seed_fingerprint"},
				{Name: "security_level"},
				{Name: "address_index"},
			},
			DoUpdates: clause.AssignmentColumns([]string{"address", "tx_count", "updated_at"}),
		}).
		Create(addr).Error
}

// LastIndex 返回已保存的最大索引, 没有记录时返回 -1
func (s *UsedAddressStore) LastIndex(ctx context.Context, fingerprint string, security int) (int, error) {
	var last int
	row := s.db.WithContext(ctx).
		Model(&model.UsedAddress{}).
		Select("COALESCE(MAX(address_index), -1)").
		Where("seed_fingerprint = ? AND security_level = ?", fingerprint, security).
		Row()
	if err := row.Scan(&last); err != nil {
		return 0, err
	}
	return last, nil
}

// List 按索引升序返回
func (s *UsedAddressStore) List(ctx context.Context, fingerprint string, security int) ([]model.UsedAddress, error) {
	var rows []model.UsedAddress
	err := s.db.WithContext(ctx).
		Where("seed_fingerprint = ? AND security_level = ?", fingerprint, security).
		Order("address_index ASC").
		Find(&rows).Error
	return rows, err
}
