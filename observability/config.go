package observability

import (
	"fmt"
	"time"
)

// Config configures the OTLP exporters.
type Config struct {
	// Enabled turns on the OTLP exporters.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`

	// Endpoint is the OTLP HTTP endpoint host:port (default: localhost:4318).
	Endpoint string `yaml:"endpoint" mapstructure:"endpoint"`

	// Insecure disables TLS towards the collector.
	Insecure bool `yaml:"insecure" mapstructure:"insecure"`

	// SampleRate is the trace sampling ratio in [0, 1] (default: 1).
	SampleRate *float64 `yaml:"sample_rate" mapstructure:"sample_rate"`

	// MetricInterval is the metric export interval (default: 15s).
	MetricInterval time.Duration `yaml:"metric_interval" mapstructure:"metric_interval"`

	// Resource attributes, filled from the service config.
	ServiceName    string `yaml:"-" mapstructure:"-"`
	ServiceVersion string `yaml:"-" mapstructure:"-"`
	Environment    string `yaml:"-" mapstructure:"-"`
}

// ApplyDefaults sets defaults for zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.Endpoint == "" {
		c.Endpoint = "localhost:4318"
	}
	if c.SampleRate == nil {
		rate := 1.0
		c.SampleRate = &rate
	}
	if c.MetricInterval == 0 {
		c.MetricInterval = 15 * time.Second
	}
	if c.ServiceVersion == "" {
		c.ServiceVersion = "dev"
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.ServiceName == "" {
		return fmt.Errorf("service name is required")
	}
	if c.SampleRate != nil && (*c.SampleRate < 0 || *c.SampleRate > 1) {
		return fmt.Errorf("sample_rate must be between 0 and 1 (got: %v)", *c.SampleRate)
	}
	if c.MetricInterval < 0 {
		return fmt.Errorf("metric_interval must be non-negative (got: %s)", c.MetricInterval)
	}
	return nil
}

func (c *Config) sampleRate() float64 {
	if c.SampleRate == nil {
		return 1
	}
	return *c.SampleRate
}
