// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file contains database bootstrapping helpers for
// SQLite (pure Go driver), schema migrations, and periodic TTL housekeeping.
package repo

import (
	"os"
	"path/filepath"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/plugin/opentelemetry/tracing"

	"github.com/vestiq/go-wardrobe-backend/internal/domain"
)

// OpenSQLite opens (or creates) a SQLite database and applies PRAGMAs.
func OpenSQLite(path string) (*gorm.DB, error) {
	// Fail early if parent directory does not exist (instead of sqlite "out of memory (14)" on Windows).
	if dir := filepath.Dir(path); dir != "." {
		if _, err := os.Stat(dir); err != nil {
			return nil, err
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	// DB spans alongside HTTP spans; metrics are covered by Prometheus already.
	if err := db.Use(tracing.NewPlugin(tracing.WithoutMetrics())); err != nil {
		return nil, err
	}

	// PRAGMAs
	db.Exec("PRAGMA journal_mode=WAL;")
	db.Exec("PRAGMA synchronous=NORMAL;")
	db.Exec("PRAGMA foreign_keys=ON;")
	db.Exec("PRAGMA busy_timeout=5000;")

	// Pool
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(10)
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetConnMaxIdleTime(5 * time.Minute)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}

	return db, nil
}

// AutoMigrate creates or updates the schema for all persisted models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.WorkflowSession{},
		&domain.GeneratedArtifact{},
		&domain.InventoryItem{},
		&domain.ResponseCache{},
		&domain.Idempotency{},
		&domain.CreditUsage{},
	)
}

// PurgeExpired deletes cache and idempotency rows whose TTL has passed and
// hard-deletes sessions that expired more than the grace window ago. Expiry
// is enforced lazily at the top of each turn; this only bounds table growth.
func PurgeExpired(db *gorm.DB, now time.Time, sessionGrace time.Duration) error {
	if err := db.Where("expires_at <= ?", now).Delete(&domain.ResponseCache{}).Error; err != nil {
		return err
	}
	if err := db.Where("expires_at <= ?", now).Delete(&domain.Idempotency{}).Error; err != nil {
		return err
	}
	cutoff := now.Add(-sessionGrace)
	return db.Unscoped().
		Where("expires_at <= ?", cutoff).
		Delete(&domain.WorkflowSession{}).Error
}
