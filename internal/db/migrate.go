package db

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"log/slog"
	"sync"

	"github.com/pressly/goose/v3"
)

// dialectMap maps database/sql driver names to goose dialects
var dialectMap = map[string]string{
	"sqlite": "sqlite3",
	"pgx":    "postgres",
}

// goose keeps dialect and base FS in package globals
var gooseMu sync.Mutex

func dialect(driver string) string {
	d, ok := dialectMap[driver]
	if ok {
		return d
	}
	return driver
}

func setupGoose(driver string) error {
	err := goose.SetDialect(dialect(driver))
	if err != nil {
		return fmt.Errorf("failed to set dialect: %w", err)
	}

	migrationsDir, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to get migrations directory: %w", err)
	}

	goose.SetBaseFS(migrationsDir)
	goose.SetLogger(goose.NopLogger())
	return nil
}

func RunMigrations(ctx context.Context, db *sql.DB, driver string) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	err := setupGoose(driver)
	if err != nil {
		return err
	}

	err = goose.UpContext(ctx, db, ".")
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	version, err := goose.GetDBVersionContext(ctx, db)
	if err == nil {
		slog.Info("migrations completed", "version", version)
	}
	return nil
}

func MigrateDown(ctx context.Context, db *sql.DB, driver string) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	err := setupGoose(driver)
	if err != nil {
		return err
	}

	err = goose.DownContext(ctx, db, ".")
	if err != nil {
		return fmt.Errorf("failed to rollback migration: %w", err)
	}

	slog.Info("rolled back one migration")
	return nil
}

// Version returns the current schema version.
func Version(ctx context.Context, db *sql.DB, driver string) (int64, error) {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	err := setupGoose(driver)
	if err != nil {
		return 0, err
	}
	return goose.GetDBVersionContext(ctx, db)
}
