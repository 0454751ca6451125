package repository

import (
	"context"
	"errors"

	"github.com/ethereum/go-ethereum/common"
	"gorm.io/gorm"
)

// FeePairRow stores the protocol fee rate for one ordered token pair.
type FeePairRow struct {
	TokenIn  string `gorm:"primaryKey;size:42"`
	TokenOut string `gorm:"primaryKey;size:42"`
	Bps      uint64
}

func (FeePairRow) TableName() string { return "fee_pairs" }

// PostgresFeeController implements fees.Controller from the fee_pairs table.
// Unknown pairs are free; the injector enforces the cap.
type PostgresFeeController struct {
	db *gorm.DB
}

func NewPostgresFeeController(db *gorm.DB) (*PostgresFeeController, error) {
	if err := db.AutoMigrate(&FeePairRow{}); err != nil {
		return nil, err
	}
	return &PostgresFeeController{db: db}, nil
}

func (c *PostgresFeeController) FeeBps(ctx context.Context, tokenIn, tokenOut common.Address) (uint64, error) {
	var row FeePairRow
	err := c.db.WithContext(ctx).
		Where("token_in = ? AND token_out = ?", tokenIn.Hex(), tokenOut.Hex()).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return row.Bps, nil
}

func (c *PostgresFeeController) SetFee(ctx context.Context, tokenIn, tokenOut common.Address, bps uint64) error {
	row := FeePairRow{TokenIn: tokenIn.Hex(), TokenOut: tokenOut.Hex(), Bps: bps}
	return c.db.WithContext(ctx).Save(&row).Error
}
