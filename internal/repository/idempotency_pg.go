package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/openfill/fillgate/internal/middleware"
)

type IdempotencyKeyRow struct {
	Key        string `gorm:"primaryKey"`
	StatusCode int
	Body       []byte
	Processing bool
	CreatedAt  time.Time
}

func (IdempotencyKeyRow) TableName() string { return "idempotency_keys" }

type PostgresIdempotencyStore struct {
	db *gorm.DB
}

func NewPostgresIdempotencyStore(db *gorm.DB) (*PostgresIdempotencyStore, error) {
	if err := db.AutoMigrate(&IdempotencyKeyRow{}); err != nil {
		return nil, err
	}
	return &PostgresIdempotencyStore{db: db}, nil
}

func (s *PostgresIdempotencyStore) GetOrLock(key string) (*middleware.IdempotencyRecord, bool) {
	ctx := context.Background()
	row := IdempotencyKeyRow{Key: key, Processing: true, CreatedAt: time.Now().UTC()}
	res := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&row)
	if res.Error == nil && res.RowsAffected > 0 {
		return nil, false
	}

	var existing IdempotencyKeyRow
	if err := s.db.WithContext(ctx).First(&existing, "key = ?", key).Error; err != nil {
		return nil, false
	}
	return &middleware.IdempotencyRecord{
		Status:     existing.StatusCode,
		Body:       existing.Body,
		CreatedAt:  existing.CreatedAt,
		Processing: existing.Processing,
	}, true
}

func (s *PostgresIdempotencyStore) Save(key string, status int, body []byte) {
	_ = s.db.Model(&IdempotencyKeyRow{}).Where("key = ?", key).Updates(map[string]interface{}{
		"status_code": status,
		"body":        body,
		"processing":  false,
	}).Error
}

func (s *PostgresIdempotencyStore) Unlock(key string) {
	_ = s.db.Delete(&IdempotencyKeyRow{}, "key = ?", key).Error
}

func (s *PostgresIdempotencyStore) Cleanup(ctx context.Context, olderThan time.Duration) error {
	if olderThan <= 0 {
		return nil
	}
	cutoff := time.Now().UTC().Add(-olderThan)
	return s.db.WithContext(ctx).Delete(&IdempotencyKeyRow{}, "created_at < ?", cutoff).Error
}
