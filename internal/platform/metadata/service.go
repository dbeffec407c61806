package metadata

import (
	"errors"
	"strconv"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// --- Generic Accessors ---

// GetValue retrieves a value for a given key from the metadata table.
func GetValue(db *gorm.DB, key string) (string, error) {
	var meta Metadata
	err := db.Where("key = ?", key).First(&meta).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// If the key doesn't exist, return an empty string, which is a valid default.
			return "", nil
		}
		return "", err
	}
	return meta.Value, nil
}

// SetValue creates or updates a value for a given key.
func SetValue(db *gorm.DB, key, value string) error {
	// Use GORM's OnConflict clause for an efficient and atomic "upsert" operation.
	meta := Metadata{
		Key:   key,
		Value: value,
	}
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&meta).Error
}

// --- Specific Helpers for Type Conversion ---

// GetLastArchiveTime retrieves and parses the epoch-ms time of the last archive run.
func GetLastArchiveTime(db *gorm.DB) (int64, error) {
	valueStr, err := GetValue(db, LastArchiveTimeKey)
	if err != nil {
		return 0, err
	}
	if valueStr == "" {
		return 0, nil
	}
	return strconv.ParseInt(valueStr, 10, 64)
}

// SetLastArchiveTime stores the epoch-ms time of the last archive run.
func SetLastArchiveTime(db *gorm.DB, epochMs int64) error {
	return SetValue(db, LastArchiveTimeKey, strconv.FormatInt(epochMs, 10))
}

// GetLastPurgeDay retrieves the day key of the last retention purge.
func GetLastPurgeDay(db *gorm.DB) (string, error) {
	return GetValue(db, LastPurgeDayKey)
}

// SetLastPurgeDay stores the day key of the last retention purge.
func SetLastPurgeDay(db *gorm.DB, day string) error {
	return SetValue(db, LastPurgeDayKey, day)
}
