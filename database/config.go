package database

import (
	"fmt"
	"time"
)

// Supported drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds database connection configuration.
type Config struct {
	// Enabled controls whether the database component is active.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`

	// Driver selects the dialect: "sqlite" or "postgres" (default: sqlite).
	Driver string `yaml:"driver" mapstructure:"driver"`

	// DSN is the driver-specific connection string.
	DSN string `yaml:"dsn" mapstructure:"dsn"`

	MaxOpenConns int `yaml:"max_open_conns" mapstructure:"max_open_conns"`
	MaxIdleConns int `yaml:"max_idle_conns" mapstructure:"max_idle_conns"`

	// ConnMaxLifetime is the maximum time a connection may be reused (e.g. "1h").
	ConnMaxLifetime string `yaml:"conn_max_lifetime" mapstructure:"conn_max_lifetime"`

	// ConnMaxIdleTime is the maximum time a connection may sit idle (e.g. "5m").
	ConnMaxIdleTime string `yaml:"conn_max_idle_time" mapstructure:"conn_max_idle_time"`

	// MaxRetries is the number of connection attempts before giving up.
	MaxRetries int `yaml:"max_retries" mapstructure:"max_retries"`

	// Migrate runs pending SQL migrations when the component starts.
	Migrate bool `yaml:"migrate" mapstructure:"migrate"`

	// SlowQueryThreshold is the duration above which queries are logged as slow.
	SlowQueryThreshold string `yaml:"slow_query_threshold" mapstructure:"slow_query_threshold"`

	// LogLevel is the GORM log level: silent, error, warn or info (default: warn).
	LogLevel string `yaml:"log_level" mapstructure:"log_level"`
}

// ApplyDefaults sets defaults for zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.Driver == "" {
		c.Driver = DriverSQLite
	}
	if c.MaxOpenConns <= 0 {
		c.MaxOpenConns = 25
	}
	if c.MaxIdleConns <= 0 {
		c.MaxIdleConns = 5
	}
	if c.ConnMaxLifetime == "" {
		c.ConnMaxLifetime = "1h"
	}
	if c.ConnMaxIdleTime == "" {
		c.ConnMaxIdleTime = "5m"
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = 5
	}
	if c.SlowQueryThreshold == "" {
		c.SlowQueryThreshold = "200ms"
	}
	if c.LogLevel == "" {
		c.LogLevel = "warn"
	}
}

// Validate checks that required fields are present and parseable.
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	switch c.Driver {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("unsupported driver %q (use %s or %s)", c.Driver, DriverSQLite, DriverPostgres)
	}
	if c.DSN == "" {
		return fmt.Errorf("dsn is required")
	}
	if c.MaxIdleConns > c.MaxOpenConns {
		return fmt.Errorf("max_idle_conns (%d) must be <= max_open_conns (%d)", c.MaxIdleConns, c.MaxOpenConns)
	}
	for name, v := range map[string]string{
		"conn_max_lifetime":    c.ConnMaxLifetime,
		"conn_max_idle_time":   c.ConnMaxIdleTime,
		"slow_query_threshold": c.SlowQueryThreshold,
	} {
		if _, err := time.ParseDuration(v); err != nil {
			return fmt.Errorf("invalid %s %q: %w", name, v, err)
		}
	}
	return nil
}
