// Package config loads service configuration with Viper.
//
// A YAML file (./cmd/<service>/config.yml by default) provides the base
// values, an optional .env file is loaded through godotenv, and every
// environment variable is bound under its nested key variants so that
// AUTH_JWT_SECRET overrides auth.jwt.secret.
//
// # Usage
//
//	cfg, err := config.Load("sessiond")
//	if err != nil { ... }
//	if err := cfg.Validate(); err != nil { ... }
package config
