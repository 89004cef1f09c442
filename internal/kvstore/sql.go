package kvstore

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"fittrack/internal/models"
)

// SQL is a Store persisted in the kv_entries table.
type SQL struct {
	db *gorm.DB
}

// NewSQL creates a store over db. The kv_entries table must exist.
func NewSQL(db *gorm.DB) *SQL {
	return &SQL{db: db}
}

// Get implements Store.
func (s *SQL) Get(ctx context.Context, key string) (string, error) {
	var entry models.KVEntry
	err := s.db.WithContext(ctx).Where("entry_key = ?", key).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to read kv entry %q: %w", key, err)
	}
	return entry.Value, nil
}

// Set implements Store.
func (s *SQL) Set(ctx context.Context, key, value string) error {
	entry := models.KVEntry{Key: key, Value: value}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "entry_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
	if err != nil {
		return fmt.Errorf("failed to write kv entry %q: %w", key, err)
	}
	return nil
}

// Remove implements Store.
func (s *SQL) Remove(ctx context.Context, key string) error {
	if err := s.db.WithContext(ctx).Where("entry_key = ?", key).Delete(&models.KVEntry{}).Error; err != nil {
		return fmt.Errorf("failed to remove kv entry %q: %w", key, err)
	}
	return nil
}
