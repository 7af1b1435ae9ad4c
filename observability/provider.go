package observability

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/kbukum/sessionkit/component"
	"github.com/kbukum/sessionkit/logger"
)

// Providers holds the SDK providers installed by Init.
type Providers struct {
	tracer *sdktrace.TracerProvider
	meter  *sdkmetric.MeterProvider
}

// Init installs OTLP tracer and meter providers as the otel globals.
// When cfg.Enabled is false nothing is installed and the no-op globals
// remain in place.
func Init(ctx context.Context, cfg Config) (*Providers, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("observability config: %w", err)
	}
	if !cfg.Enabled {
		return &Providers{}, nil
	}

	res, err := newResource(&cfg)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	tp, err := newTracerProvider(ctx, &cfg, res)
	if err != nil {
		return nil, err
	}
	mp, err := newMeterProvider(ctx, &cfg, res)
	if err != nil {
		_ = tp.Shutdown(ctx)
		return nil, err
	}

	setGlobalTracer(tp)
	otel.SetMeterProvider(mp)
	return &Providers{tracer: tp, meter: mp}, nil
}

// Enabled reports whether exporters were installed.
func (p *Providers) Enabled() bool {
	return p != nil && p.tracer != nil
}

// Shutdown flushes and stops both providers.
func (p *Providers) Shutdown(ctx context.Context) error {
	if !p.Enabled() {
		return nil
	}
	return errors.Join(p.tracer.Shutdown(ctx), p.meter.Shutdown(ctx))
}

// Component runs Init on Start and flushes on Stop.
type Component struct {
	cfg       Config
	log       *logger.Logger
	providers *Providers
}

var (
	_ component.Component   = (*Component)(nil)
	_ component.Describable = (*Component)(nil)
)

// NewComponent creates the telemetry component.
func NewComponent(cfg Config, log *logger.Logger) *Component {
	cfg.ApplyDefaults()
	return &Component{cfg: cfg, log: log.WithComponent("observability")}
}

func (c *Component) Name() string { return "observability" }

// Start installs the providers.
func (c *Component) Start(ctx context.Context) error {
	p, err := Init(ctx, c.cfg)
	if err != nil {
		return err
	}
	c.providers = p
	if p.Enabled() {
		c.log.Info("Telemetry exporters started", logger.Fields("endpoint", c.cfg.Endpoint))
	} else {
		c.log.Debug("Telemetry disabled, using no-op providers")
	}
	return nil
}

// Stop flushes pending spans and metrics.
func (c *Component) Stop(ctx context.Context) error {
	return c.providers.Shutdown(ctx)
}

// Health is always healthy; export failures are reported by the SDK.
func (c *Component) Health(_ context.Context) component.Health {
	return component.Health{Name: c.Name(), Status: component.StatusHealthy}
}

// Describe returns the startup summary line.
func (c *Component) Describe() component.Description {
	details := "disabled"
	if c.cfg.Enabled {
		details = fmt.Sprintf("otlp/http %s sample=%.2f", c.cfg.Endpoint, c.cfg.sampleRate())
	}
	return component.Description{Name: "Telemetry", Type: "telemetry", Details: details}
}
