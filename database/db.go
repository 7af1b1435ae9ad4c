package database

import (
	"context"
	"fmt"
	"sync"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/kbukum/sessionkit/logger"
	"github.com/kbukum/sessionkit/resilience"
)

// DB wraps a GORM database with the service logger.
type DB struct {
	GormDB *gorm.DB
	log    *logger.Logger
	cfg    Config
	closed bool
	mu     sync.Mutex
}

// Dialector returns the GORM dialector for cfg.Driver.
func Dialector(cfg Config) (gorm.Dialector, error) {
	switch cfg.Driver {
	case DriverSQLite, "":
		return sqlite.Open(cfg.DSN), nil
	case DriverPostgres:
		return postgres.Open(cfg.DSN), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// Open connects using the dialector selected by cfg.Driver.
func Open(ctx context.Context, cfg Config, log *logger.Logger) (*DB, error) {
	cfg.ApplyDefaults()
	d, err := Dialector(cfg)
	if err != nil {
		return nil, err
	}
	return NewWithContext(ctx, d, cfg, log)
}

// NewWithContext opens a connection, retrying with backoff up to
// cfg.MaxRetries attempts, and applies the pool settings.
func NewWithContext(ctx context.Context, dialector gorm.Dialector, cfg Config, log *logger.Logger) (*DB, error) {
	cfg.ApplyDefaults()

	slowThreshold, _ := time.ParseDuration(cfg.SlowQueryThreshold)
	gormCfg := &gorm.Config{
		Logger: newGormLogger(log, slowThreshold, parseLogLevel(cfg.LogLevel)),
	}

	attempt := 0
	db, err := resilience.Retry(ctx, resilience.Policy{
		Attempts: cfg.MaxRetries,
		Initial:  time.Second,
		Max:      10 * time.Second,
		Jitter:   0.1,
		OnRetry: func(n int, err error, wait time.Duration) {
			log.Warn("Database connection attempt failed, retrying", map[string]interface{}{
				"attempt": n,
				"error":   err.Error(),
				"backoff": wait.String(),
			})
		},
	}, func() (*gorm.DB, error) {
		attempt++
		return connect(ctx, dialector, gormCfg, cfg)
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("database connection canceled: %w", err)
		}
		return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", attempt, err)
	}

	log.Info("Database connection established", map[string]interface{}{
		"driver":  cfg.Driver,
		"attempt": attempt,
	})
	return &DB{GormDB: db, log: log, cfg: cfg}, nil
}

func connect(ctx context.Context, dialector gorm.Dialector, gormCfg *gorm.Config, cfg Config) (*gorm.DB, error) {
	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	if lifetime, err := time.ParseDuration(cfg.ConnMaxLifetime); err == nil {
		sqlDB.SetConnMaxLifetime(lifetime)
	}
	if idle, err := time.ParseDuration(cfg.ConnMaxIdleTime); err == nil {
		sqlDB.SetConnMaxIdleTime(idle)
	}
	return db, nil
}

// Driver returns the configured driver name.
func (d *DB) Driver() string { return d.cfg.Driver }

// Close closes the underlying pool. Safe to call multiple times.
func (d *DB) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil
	}
	sqlDB, err := d.GormDB.DB()
	if err != nil {
		return err
	}
	d.log.Info("Closing database connection")
	d.closed = true
	return sqlDB.Close()
}

// PingContext verifies the connection is alive.
func (d *DB) PingContext(ctx context.Context) error {
	sqlDB, err := d.GormDB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// WithContext returns a GORM session scoped to ctx.
func (d *DB) WithContext(ctx context.Context) *gorm.DB {
	return d.GormDB.WithContext(ctx)
}

// WithTransaction runs fn in a transaction, rolling back on error or panic.
func (d *DB) WithTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	tx := d.GormDB.WithContext(ctx).Begin()
	if tx.Error != nil {
		return fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			d.log.Error("Transaction rolled back due to panic", map[string]interface{}{
				"panic": fmt.Sprintf("%v", r),
			})
			panic(r)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback().Error; rbErr != nil {
			return fmt.Errorf("transaction failed: %w, rollback failed: %v", err, rbErr)
		}
		return err
	}
	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Stats reports pool statistics and round-trip latency.
type Stats struct {
	Latency    time.Duration `json:"latency"`
	OpenConns  int           `json:"open_connections"`
	InUseConns int           `json:"in_use_connections"`
	IdleConns  int           `json:"idle_connections"`
}

// CheckHealth pings the database and returns pool statistics.
func (d *DB) CheckHealth(ctx context.Context) (Stats, error) {
	start := time.Now()
	sqlDB, err := d.GormDB.DB()
	if err != nil {
		return Stats{}, err
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return Stats{Latency: time.Since(start)}, err
	}
	s := sqlDB.Stats()
	return Stats{
		Latency:    time.Since(start),
		OpenConns:  s.OpenConnections,
		InUseConns: s.InUse,
		IdleConns:  s.Idle,
	}, nil
}
