package database_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/kbukum/sessionkit/component"
	"github.com/kbukum/sessionkit/database"
	"github.com/kbukum/sessionkit/database/testutil"
	apperrors "github.com/kbukum/sessionkit/errors"
	"github.com/kbukum/sessionkit/logger"
)

func TestConfigDefaultsAndValidate(t *testing.T) {
	cfg := database.Config{Enabled: true, DSN: "file::memory:"}
	cfg.ApplyDefaults()
	if cfg.Driver != database.DriverSQLite || cfg.MaxOpenConns != 25 || cfg.LogLevel != "warn" {
		t.Errorf("unexpected defaults %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}

	tests := []struct {
		name    string
		mutate  func(*database.Config)
		wantErr string
	}{
		{"bad driver", func(c *database.Config) { c.Driver = "oracle" }, "unsupported driver"},
		{"missing dsn", func(c *database.Config) { c.DSN = "" }, "dsn is required"},
		{"idle above open", func(c *database.Config) { c.MaxIdleConns = 100 }, "max_idle_conns"},
		{"bad duration", func(c *database.Config) { c.ConnMaxLifetime = "forever" }, "conn_max_lifetime"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := cfg
			tt.mutate(&c)
			err := c.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}

	disabled := database.Config{}
	if err := disabled.Validate(); err != nil {
		t.Errorf("disabled config should skip validation: %v", err)
	}
}

func TestMigrateUpIsIdempotent(t *testing.T) {
	db := testutil.NewDB(t)

	if err := db.MigrateUp(); err != nil {
		t.Fatalf("second MigrateUp: %v", err)
	}
	version, dirty, err := db.MigrateVersion()
	if err != nil {
		t.Fatalf("MigrateVersion: %v", err)
	}
	if version != 1 || dirty {
		t.Errorf("version = %d dirty = %v", version, dirty)
	}
}

func TestMigrateDown(t *testing.T) {
	db := testutil.NewDB(t)
	if err := db.MigrateDown(); err != nil {
		t.Fatalf("MigrateDown: %v", err)
	}
	if db.GormDB.Migrator().HasTable("users") {
		t.Error("users table should be dropped")
	}
	version, _, err := db.MigrateVersion()
	if err != nil || version != 0 {
		t.Errorf("version = %d, err = %v", version, err)
	}
}

func insertUser(tx *gorm.DB, id, username, email string) error {
	return tx.Exec(
		"INSERT INTO users (id, username, email, password, role, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		id, username, email, "hash", "user", time.Now(),
	).Error
}

func TestUniqueViolationNamesColumn(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()

	if err := insertUser(db.WithContext(ctx), "1", "alice", "alice@example.com"); err != nil {
		t.Fatalf("insert: %v", err)
	}

	tests := []struct {
		name     string
		username string
		email    string
		want     string
	}{
		{"username case-insensitive", "ALICE", "other@example.com", "username"},
		{"email case-insensitive", "bob", "Alice@Example.com", "email"},
	}
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := insertUser(db.WithContext(ctx), string(rune('2'+i)), tt.username, tt.email)
			detail, ok := database.UniqueViolation(err)
			if !ok {
				t.Fatalf("expected unique violation, got %v", err)
			}
			if !strings.Contains(detail, tt.want) {
				t.Errorf("detail %q should mention %q", detail, tt.want)
			}
		})
	}
}

func TestUniqueViolationNegative(t *testing.T) {
	if _, ok := database.UniqueViolation(nil); ok {
		t.Error("nil is not a violation")
	}
	if _, ok := database.UniqueViolation(errors.New("syntax error")); ok {
		t.Error("unrelated error is not a violation")
	}
	if _, ok := database.UniqueViolation(gorm.ErrDuplicatedKey); !ok {
		t.Error("gorm.ErrDuplicatedKey is a violation")
	}
}

func TestWithTransactionRollsBack(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := db.WithTransaction(ctx, func(tx *gorm.DB) error {
		if err := insertUser(tx, "1", "carol", "carol@example.com"); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	var count int64
	db.WithContext(ctx).Table("users").Count(&count)
	if count != 0 {
		t.Errorf("expected rollback, found %d rows", count)
	}
}

func TestFromDatabase(t *testing.T) {
	if database.FromDatabase(nil) != nil {
		t.Error("nil should map to nil")
	}

	cause := errors.New("disk I/O error")
	appErr := database.FromDatabase(cause)
	if appErr.Code != apperrors.ErrCodeInternal || !errors.Is(appErr, cause) {
		t.Errorf("unexpected mapping %+v", appErr)
	}

	passthrough := apperrors.UserNotFound()
	if database.FromDatabase(passthrough) != passthrough {
		t.Error("AppError should pass through")
	}
}

func TestIsConnectionError(t *testing.T) {
	if !database.IsConnectionError(errors.New("dial tcp: connection refused")) {
		t.Error("expected connection error")
	}
	if database.IsConnectionError(errors.New("syntax error")) {
		t.Error("unexpected connection error")
	}
	if !database.IsNotFoundError(gorm.ErrRecordNotFound) {
		t.Error("expected not found")
	}
}

func TestComponentLifecycle(t *testing.T) {
	cfg := testutil.Config(t.Name())
	cfg.Migrate = true
	c := database.NewComponent(cfg, logger.NewNop())
	ctx := context.Background()

	if h := c.Health(ctx); h.Status != component.StatusUnhealthy {
		t.Errorf("expected unhealthy before start, got %s", h.Status)
	}
	if err := c.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if h := c.Health(ctx); h.Status != component.StatusHealthy {
		t.Errorf("expected healthy, got %s: %s", h.Status, h.Message)
	}
	if !c.DB().GormDB.Migrator().HasTable("users") {
		t.Error("expected migrations to run on start")
	}
	if !strings.Contains(c.Describe().Details, "migrate=on") {
		t.Errorf("unexpected description %+v", c.Describe())
	}
	if err := c.Stop(ctx); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if err := c.Stop(ctx); err != nil {
		t.Fatalf("second Stop: %v", err)
	}
}

func TestComponentDisabled(t *testing.T) {
	c := database.NewComponent(database.Config{}, logger.NewNop())
	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if c.DB() != nil {
		t.Error("disabled component should not connect")
	}
}
