package repository

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/openfill/fillgate/internal/types"
)

// FillRow is the persistence shape of one settled order.
type FillRow struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	OrderHash   string    `gorm:"uniqueIndex;size:66" json:"order_hash"`
	Filler      string    `gorm:"index;size:42" json:"filler"`
	Swapper     string    `gorm:"index;size:42" json:"swapper"`
	Nonce       string    `gorm:"size:80" json:"nonce"`
	BlockNumber uint64    `json:"block_number"`
	Timestamp   uint64    `json:"timestamp"`
	CreatedAt   time.Time `json:"created_at"`
}

func (FillRow) TableName() string { return "fills" }

// FillQuery filters the fill listing; zero values match everything.
type FillQuery struct {
	Swapper   string
	Filler    string
	OrderHash string
	Limit     int
	Offset    int
}

type FillRepository struct {
	db *gorm.DB
}

func NewFillRepository(db *gorm.DB) (*FillRepository, error) {
	if err := db.AutoMigrate(&FillRow{}); err != nil {
		return nil, err
	}
	return &FillRepository{db: db}, nil
}

// SaveBatch persists one row per fill record. Order hashes are unique, so a
// replayed batch (idempotent retry) upserts rather than erroring.
func (r *FillRepository) SaveBatch(ctx context.Context, records []types.FillRecord) error {
	if len(records) == 0 {
		return nil
	}
	rows := make([]FillRow, len(records))
	for i, rec := range records {
		rows[i] = FillRow{
			ID:          uuid.NewString(),
			OrderHash:   rec.OrderHash.Hex(),
			Filler:      rec.Filler.Hex(),
			Swapper:     rec.Swapper.Hex(),
			Nonce:       rec.Nonce.Big().String(),
			BlockNumber: rec.BlockNumber,
			Timestamp:   rec.Timestamp,
		}
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "order_hash"}}, DoNothing: true}).
		Create(&rows).Error
}

func (r *FillRepository) List(ctx context.Context, q FillQuery) ([]FillRow, error) {
	tx := r.db.WithContext(ctx).Model(&FillRow{}).Order("created_at DESC")
	if q.Swapper != "" {
		tx = tx.Where("swapper = ?", common.HexToAddress(q.Swapper).Hex())
	}
	if q.Filler != "" {
		tx = tx.Where("filler = ?", common.HexToAddress(q.Filler).Hex())
	}
	if q.OrderHash != "" {
		tx = tx.Where("order_hash = ?", q.OrderHash)
	}
	limit := q.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	tx = tx.Limit(limit).Offset(q.Offset)

	var rows []FillRow
	if err := tx.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *FillRepository) GetByOrderHash(ctx context.Context, hash string) (*FillRow, error) {
	var row FillRow
	err := r.db.WithContext(ctx).Where("order_hash = ?", hash).First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}
