package models

import "time"

// KVEntry is one row of the SQL-backed key-value store.
type KVEntry struct {
	Key       string `gorm:"column:entry_key;primaryKey;size:191"`
	Value     string `gorm:"type:text;not null"`
	UpdatedAt time.Time
}

// TableName overrides the default pluralized name.
func (KVEntry) TableName() string { return "kv_entries" }
