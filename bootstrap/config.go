package bootstrap

import (
	"github.com/kbukum/sessionkit/config"
)

// Config is the constraint for application configuration types. Any
// struct embedding config.ServiceConfig gets GetServiceConfig promoted.
type Config interface {
	GetServiceConfig() *config.ServiceConfig
	ApplyDefaults()
	Validate() error
}
