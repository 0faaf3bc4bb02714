package database

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"catalogsync/internal/models"
)

const SQLitePrefix = "sqlite://"

type Database struct {
	DB *gorm.DB
}

// IsURL reports whether a destination string names a database rather than
// a file.
func IsURL(dest string) bool {
	return strings.HasPrefix(dest, SQLitePrefix) ||
		strings.HasPrefix(dest, "postgres://") ||
		strings.HasPrefix(dest, "postgresql://")
}

// New opens sqlite:// paths (creating the parent directory) or a postgres
// URL, and migrates the export table.
func New(databaseURL string) (*Database, error) {
	var db *gorm.DB
	var err error

	cfg := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}

	if strings.HasPrefix(databaseURL, SQLitePrefix) {
		dbPath := strings.TrimPrefix(databaseURL, SQLitePrefix)
		if dir := filepath.Dir(dbPath); dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
		db, err = gorm.Open(sqlite.Open(dbPath), cfg)
	} else {
		db, err = gorm.Open(postgres.Open(databaseURL), cfg)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&models.ExportRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate tables: %w", err)
	}

	return &Database{DB: db}, nil
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Redact hides the password of a postgres URL for logging.
func Redact(databaseURL string) string {
	if strings.HasPrefix(databaseURL, SQLitePrefix) {
		return databaseURL
	}
	schemeEnd := strings.Index(databaseURL, "://")
	at := strings.LastIndex(databaseURL, "@")
	if schemeEnd < 0 || at < schemeEnd {
		return databaseURL
	}
	creds := databaseURL[schemeEnd+3 : at]
	if colon := strings.Index(creds, ":"); colon >= 0 {
		creds = creds[:colon] + ":***"
	}
	return databaseURL[:schemeEnd+3] + creds + databaseURL[at:]
}
