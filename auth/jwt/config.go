package jwt

import (
	"errors"
	"fmt"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
)

// SigningMethod names a supported HMAC signing algorithm.
type SigningMethod string

const (
	HS256 SigningMethod = "HS256"
	HS384 SigningMethod = "HS384"
	HS512 SigningMethod = "HS512"
)

// MinSecretLength is the shortest accepted signing secret, in bytes.
const MinSecretLength = 32

// Config configures the token codec.
type Config struct {
	// Secret is the shared HMAC signing key.
	Secret string `yaml:"secret" mapstructure:"secret"`

	// Method is the signing algorithm (default: HS256).
	Method SigningMethod `yaml:"method" mapstructure:"method"`

	// AccessTokenTTL is the lifetime of access tokens (default: 15m).
	AccessTokenTTL time.Duration `yaml:"access_token_ttl" mapstructure:"access_token_ttl"`

	// RefreshTokenTTL is the lifetime of refresh tokens (default: 7d).
	RefreshTokenTTL time.Duration `yaml:"refresh_token_ttl" mapstructure:"refresh_token_ttl"`
}

// ApplyDefaults fills in zero-value fields.
func (c *Config) ApplyDefaults() {
	if c.Method == "" {
		c.Method = HS256
	}
	if c.AccessTokenTTL == 0 {
		c.AccessTokenTTL = 15 * time.Minute
	}
	if c.RefreshTokenTTL == 0 {
		c.RefreshTokenTTL = 7 * 24 * time.Hour
	}
}

// Validate checks the secret, the method and the lifetime ordering.
func (c *Config) Validate() error {
	switch c.Method {
	case HS256, HS384, HS512:
	default:
		return fmt.Errorf("unsupported signing method: %s", c.Method)
	}
	if c.Secret == "" {
		return errors.New("secret is required")
	}
	if len(c.Secret) < MinSecretLength {
		return fmt.Errorf("secret must be at least %d bytes (got: %d)", MinSecretLength, len(c.Secret))
	}
	if c.AccessTokenTTL < time.Second {
		return fmt.Errorf("access_token_ttl must be at least 1s (got: %s)", c.AccessTokenTTL)
	}
	if c.RefreshTokenTTL <= c.AccessTokenTTL {
		return fmt.Errorf("refresh_token_ttl (%s) must be greater than access_token_ttl (%s)",
			c.RefreshTokenTTL, c.AccessTokenTTL)
	}
	return nil
}

func (c *Config) signingMethod() gojwt.SigningMethod {
	switch c.Method {
	case HS384:
		return gojwt.SigningMethodHS384
	case HS512:
		return gojwt.SigningMethodHS512
	default:
		return gojwt.SigningMethodHS256
	}
}
