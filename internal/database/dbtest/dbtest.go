// Package dbtest opens throwaway SQLite stores for package tests.
package dbtest

import (
	"path/filepath"
	"testing"

	"github.com/ahmetcoskunkizilkaya/agency-portal/internal/config"
	"github.com/ahmetcoskunkizilkaya/agency-portal/internal/database"
	"gorm.io/gorm"
)

// Open returns a migrated SQLite database that lives in t.TempDir.
func Open(t *testing.T) *gorm.DB {
	t.Helper()

	cfg := &config.Config{
		DBDriver:   "sqlite",
		SQLitePath: filepath.Join(t.TempDir(), "portal.db"),
	}
	db, err := database.Open(cfg)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}
