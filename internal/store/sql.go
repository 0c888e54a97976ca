package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Record is one collection blob in the records table.
type Record struct {
	Key       string    `gorm:"primaryKey;size:191"`
	Blob      []byte    `gorm:"not null"`
	Version   int64     `gorm:"not null;default:1"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName specifies the table name for GORM
func (Record) TableName() string {
	return "records"
}

// SQL stores collections as rows of the records table through GORM.
type SQL struct {
	db *gorm.DB
}

// NewSQL wraps a GORM connection. The records table must already be migrated.
func NewSQL(db *gorm.DB) *SQL {
	return &SQL{db: db}
}

func (s *SQL) Load(ctx context.Context, key string) ([]byte, bool, error) {
	var rec Record
	err := s.db.WithContext(ctx).Where("key = ?", key).Take(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("sql load %s: %w", key, err)
	}
	return rec.Blob, true, nil
}

func (s *SQL) Save(ctx context.Context, key string, blob []byte) error {
	now := time.Now().UTC()
	rec := Record{Key: key, Blob: blob, Version: 1, UpdatedAt: now}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "key"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"blob":       blob,
			"updated_at": now,
			"version":    gorm.Expr("version + 1"),
		}),
	}).Create(&rec).Error
	if err != nil {
		return fmt.Errorf("sql save %s: %w", key, err)
	}
	return nil
}

// Version returns how many times key has been written, or 0 if it was never saved.
func (s *SQL) Version(ctx context.Context, key string) (int64, error) {
	var rec Record
	err := s.db.WithContext(ctx).Select("version").Where("key = ?", key).Take(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("sql version %s: %w", key, err)
	}
	return rec.Version, nil
}

func (s *SQL) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
