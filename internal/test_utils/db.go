package test_utils

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/klokku/calbar/internal/config"
	"github.com/klokku/calbar/internal/database"
)

// NewTestDBPath returns a fresh database file location inside the test's temp dir.
// Not :memory:, every pooled connection would get its own empty database.
func NewTestDBPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "cal.db")
}

// SetupTestDB opens a new database with all migrations applied and closes it on cleanup.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	return OpenTestDB(t, NewTestDBPath(t))
}

// OpenTestDB opens (or reopens) the database at path with all migrations applied.
func OpenTestDB(t *testing.T, path string) *sql.DB {
	t.Helper()

	db, err := database.Open(config.Database{Path: path})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
	})

	return db
}
