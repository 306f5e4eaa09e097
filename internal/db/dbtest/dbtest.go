// Package dbtest provides a migrated SQLite database for tests.
package dbtest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/mentorconnect/goaltracker/internal/db"
)

// New opens a migrated SQLite database in a temp directory. The
// database is closed when the test finishes.
func New(t testing.TB) *sqlx.DB {
	t.Helper()

	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "test.db") + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"

	database, err := db.Init(ctx, "sqlite", dsn)
	if err != nil {
		t.Fatalf("db.Init() error = %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })

	err = db.RunMigrations(ctx, database.DB, "sqlite")
	if err != nil {
		t.Fatalf("RunMigrations() error = %v", err)
	}

	return database
}
