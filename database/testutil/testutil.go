// Package testutil opens migrated in-memory SQLite databases for tests.
package testutil

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/kbukum/sessionkit/database"
	"github.com/kbukum/sessionkit/logger"
)

// Config returns an in-memory SQLite configuration unique to name. A
// single connection keeps the in-memory database alive and shared.
func Config(name string) database.Config {
	name = strings.NewReplacer("/", "_", " ", "_").Replace(name)
	return database.Config{
		Enabled:      true,
		Driver:       database.DriverSQLite,
		DSN:          fmt.Sprintf("file:%s?mode=memory&cache=shared", name),
		MaxOpenConns: 1,
		MaxIdleConns: 1,
		MaxRetries:   1,
		LogLevel:     "silent",
	}
}

// NewDB opens a migrated database that is closed when t finishes.
func NewDB(t testing.TB) *database.DB {
	t.Helper()

	db, err := database.Open(context.Background(), Config(t.Name()), logger.NewNop())
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := db.MigrateUp(); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	return db
}
