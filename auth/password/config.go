package password

import (
	"fmt"
	"runtime"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Algorithm names the scheme used for new password hashes.
type Algorithm string

const (
	AlgorithmArgon2id Algorithm = "argon2id"
	AlgorithmBcrypt   Algorithm = "bcrypt"
)

// Config configures hashing of new passwords and the hashing pool.
// Verification accepts every supported scheme regardless of Algorithm.
type Config struct {
	// Algorithm selects the scheme for new hashes (default: "argon2id").
	Algorithm Algorithm `yaml:"algorithm" mapstructure:"algorithm"`

	// Argon2Time is the number of argon2id passes (default: 3).
	Argon2Time uint32 `yaml:"argon2_time" mapstructure:"argon2_time"`

	// Argon2Memory is the argon2id memory cost in KiB (default: 65536).
	Argon2Memory uint32 `yaml:"argon2_memory" mapstructure:"argon2_memory"`

	// Argon2Threads is the argon2id parallelism (default: 2).
	Argon2Threads uint8 `yaml:"argon2_threads" mapstructure:"argon2_threads"`

	// BcryptCost is used when Algorithm is "bcrypt" (default: 12).
	BcryptCost int `yaml:"bcrypt_cost" mapstructure:"bcrypt_cost"`

	// Workers is the number of hashing goroutines (default: GOMAXPROCS).
	Workers int `yaml:"workers" mapstructure:"workers"`

	// QueueSize bounds the jobs waiting for a worker (default: 4 * Workers).
	QueueSize int `yaml:"queue_size" mapstructure:"queue_size"`

	// MaxWait bounds how long a caller waits for queue space (default: 5s).
	MaxWait time.Duration `yaml:"max_wait" mapstructure:"max_wait"`
}

// ApplyDefaults sets defaults for zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.Algorithm == "" {
		c.Algorithm = AlgorithmArgon2id
	}
	if c.Argon2Time == 0 {
		c.Argon2Time = 3
	}
	if c.Argon2Memory == 0 {
		c.Argon2Memory = 64 * 1024
	}
	if c.Argon2Threads == 0 {
		c.Argon2Threads = 2
	}
	if c.BcryptCost == 0 {
		c.BcryptCost = 12
	}
	if c.Workers <= 0 {
		c.Workers = runtime.GOMAXPROCS(0)
	}
	if c.QueueSize <= 0 {
		c.QueueSize = 4 * c.Workers
	}
	if c.MaxWait == 0 {
		c.MaxWait = 5 * time.Second
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	switch c.Algorithm {
	case AlgorithmArgon2id, AlgorithmBcrypt:
	default:
		return fmt.Errorf("unsupported algorithm: %s (use argon2id or bcrypt)", c.Algorithm)
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("bcrypt_cost must be between %d and %d (got: %d)", bcrypt.MinCost, bcrypt.MaxCost, c.BcryptCost)
	}
	if c.Argon2Memory < 8*uint32(c.Argon2Threads) {
		return fmt.Errorf("argon2_memory must be at least 8 KiB per thread (got: %d)", c.Argon2Memory)
	}
	if c.Argon2Memory > MaxArgon2Memory {
		return fmt.Errorf("argon2_memory must be at most %d KiB (got: %d)", MaxArgon2Memory, c.Argon2Memory)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be >= 1 (got: %d)", c.Workers)
	}
	return nil
}

// NewHasher creates the Hasher selected by cfg.Algorithm.
func NewHasher(cfg Config) Hasher {
	cfg.ApplyDefaults()
	switch cfg.Algorithm {
	case AlgorithmBcrypt:
		return NewBcryptHasher(WithCost(cfg.BcryptCost))
	default:
		return NewArgon2Hasher(
			WithArgon2Time(cfg.Argon2Time),
			WithArgon2Memory(cfg.Argon2Memory),
			WithArgon2Threads(cfg.Argon2Threads),
		)
	}
}
