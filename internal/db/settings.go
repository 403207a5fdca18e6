package db

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/nebari-dev/userhub/internal/models"
	"gorm.io/gorm"
)

// ErrSettingNotFound is returned when a setting key has never been written.
var ErrSettingNotFound = errors.New("setting not found")

// GetSetting returns the value stored under key.
func GetSetting(db *gorm.DB, key string) (string, error) {
	var s models.Setting
	// Struct condition so GORM quotes the column; "key" is reserved in MySQL.
	err := db.Where(&models.Setting{Key: key}).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrSettingNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to query setting %s: %w", key, err)
	}
	return s.Value, nil
}

// EnsureInstanceID returns the persistent instance ID, generating one on
// first start. Call after Migrate.
func EnsureInstanceID(db *gorm.DB) (string, error) {
	id, err := GetSetting(db, models.SettingInstanceID)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, ErrSettingNotFound) {
		return "", err
	}

	id = uuid.New().String()
	if err := db.Create(&models.Setting{Key: models.SettingInstanceID, Value: id}).Error; err != nil {
		return "", fmt.Errorf("failed to store instance ID: %w", err)
	}

	slog.Info("Generated new instance ID", "instance_id", id)
	return id, nil
}
