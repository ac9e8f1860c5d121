// Package dbtest opens a migrated, file-backed sqlite database for tests.
package dbtest

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"askly/internal/platform/config"
	"askly/internal/platform/database"
)

func New(t testing.TB) *sql.DB {
	t.Helper()

	db, err := database.Open(config.DatabaseConfig{
		URL:            filepath.Join(t.TempDir(), "test.db"),
		MaxConnections: 8,
		ConnectTimeout: time.Second,
		BusyTimeout:    5 * time.Second,
	})
	if err != nil {
		t.Fatalf("Failed to open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := database.Migrate(db, "up"); err != nil {
		t.Fatalf("Failed to migrate db: %v", err)
	}
	return db
}
