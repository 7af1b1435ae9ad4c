package config

import (
	"fmt"

	"github.com/kbukum/sessionkit/auth/jwt"
	"github.com/kbukum/sessionkit/auth/password"
	"github.com/kbukum/sessionkit/database"
	"github.com/kbukum/sessionkit/observability"
	"github.com/kbukum/sessionkit/server"
	"github.com/kbukum/sessionkit/server/endpoint"
)

// AuthConfig groups token, password and cookie settings.
type AuthConfig struct {
	JWT      jwt.Config            `yaml:"jwt" mapstructure:"jwt"`
	Password password.Config       `yaml:"password" mapstructure:"password"`
	Cookie   endpoint.CookieConfig `yaml:"cookie" mapstructure:"cookie"`
}

// AppConfig is the full configuration of the session service.
type AppConfig struct {
	ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Server        server.Config        `yaml:"server" mapstructure:"server"`
	Database      database.Config      `yaml:"database" mapstructure:"database"`
	Auth          AuthConfig           `yaml:"auth" mapstructure:"auth"`
	Observability observability.Config `yaml:"observability" mapstructure:"observability"`
}

// ApplyDefaults fills every section with its defaults.
func (c *AppConfig) ApplyDefaults() {
	c.ServiceConfig.ApplyDefaults()
	c.Server.ApplyDefaults()
	c.Database.ApplyDefaults()
	c.Auth.JWT.ApplyDefaults()
	c.Auth.Password.ApplyDefaults()
	c.Auth.Cookie.ApplyDefaults()
	if c.Observability.ServiceName == "" {
		c.Observability.ServiceName = c.Name
	}
	if c.Observability.ServiceVersion == "" {
		c.Observability.ServiceVersion = c.Version
	}
	if c.Observability.Environment == "" {
		c.Observability.Environment = c.Environment
	}
	c.Observability.ApplyDefaults()
}

// Validate validates every section, prefixing errors with the section key.
func (c *AppConfig) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	checks := []struct {
		key string
		fn  func() error
	}{
		{"server", c.Server.Validate},
		{"database", c.Database.Validate},
		{"auth.jwt", c.Auth.JWT.Validate},
		{"auth.password", c.Auth.Password.Validate},
		{"auth.cookie", c.Auth.Cookie.Validate},
		{"observability", c.Observability.Validate},
	}
	for _, ch := range checks {
		if err := ch.fn(); err != nil {
			return fmt.Errorf("%s: %w", ch.key, err)
		}
	}
	return nil
}

// Load reads the service configuration and applies defaults. It does not
// validate; bootstrap does that before any component starts.
func Load(serviceName string, opts ...LoaderOption) (*AppConfig, error) {
	cfg := &AppConfig{}
	if err := LoadConfig(serviceName, cfg, opts...); err != nil {
		return nil, err
	}
	if cfg.Name == "" {
		cfg.Name = serviceName
	}
	cfg.ApplyDefaults()
	return cfg, nil
}
