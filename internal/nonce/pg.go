package nonce

import (
	"context"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ConsumedNonce is the persistence row for one consumed (swapper, nonce).
type ConsumedNonce struct {
	Swapper string `gorm:"primaryKey;size:42"`
	Nonce   string `gorm:"primaryKey;size:80"`
}

func (ConsumedNonce) TableName() string { return "consumed_nonces" }

// PostgresStore consumes nonces with INSERT ... ON CONFLICT DO NOTHING, so a
// lost race surfaces as zero affected rows rather than an error.
type PostgresStore struct {
	db *gorm.DB
}

func NewPostgresStore(db *gorm.DB) (*PostgresStore, error) {
	if err := db.AutoMigrate(&ConsumedNonce{}); err != nil {
		return nil, err
	}
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Use(ctx context.Context, swapper common.Address, nonce *big.Int) error {
	row := ConsumedNonce{Swapper: swapper.Hex(), Nonce: nonce.String()}
	res := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&row)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNonceUsed
	}
	return nil
}

func (s *PostgresStore) Release(ctx context.Context, swapper common.Address, nonce *big.Int) error {
	return s.db.WithContext(ctx).
		Delete(&ConsumedNonce{Swapper: swapper.Hex(), Nonce: nonce.String()}).Error
}

func (s *PostgresStore) Used(ctx context.Context, swapper common.Address, nonce *big.Int) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&ConsumedNonce{}).
		Where("swapper = ? AND nonce = ?", swapper.Hex(), nonce.String()).
		Count(&count).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}
	return count > 0, nil
}
