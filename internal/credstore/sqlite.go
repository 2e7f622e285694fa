package credstore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// Entry is a single persisted key-value row
type Entry struct {
	Name      string    `gorm:"primaryKey;type:varchar(64)"`
	Value     string    `gorm:"type:text;not null"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (Entry) TableName() string {
	return "local_storage"
}

// SQLiteStore persists the credential in a local SQLite database
type SQLiteStore struct {
	db *gorm.DB
}

// OpenSQLiteStore opens (creating if needed) the database at path.
// Use ":memory:" for an ephemeral database.
func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	// A single connection keeps ":memory:" databases shared and avoids SQLITE_BUSY
	sqlDB.SetMaxOpenConns(1)

	if err := db.Exec("PRAGMA busy_timeout=5000").Error; err != nil {
		return nil, fmt.Errorf("failed to apply pragma: %w", err)
	}

	if err := db.AutoMigrate(&Entry{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Save(token string) error {
	entry := Entry{Name: ReservedKey, Value: token}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
	if err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Load() (string, error) {
	var entry Entry
	if err := s.db.Where("name = ?", ReservedKey).First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to load token: %w", err)
	}
	if entry.Value == "" {
		return "", ErrNotFound
	}
	return entry.Value, nil
}

func (s *SQLiteStore) Clear() error {
	if err := s.db.Where("name = ?", ReservedKey).Delete(&Entry{}).Error; err != nil {
		return fmt.Errorf("failed to delete token: %w", err)
	}
	return nil
}

// Close releases the underlying database connection
func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
