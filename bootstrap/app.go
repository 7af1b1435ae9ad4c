package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kbukum/sessionkit/component"
	"github.com/kbukum/sessionkit/logger"
)

// App is a service with uniform lifecycle management. C is the config
// type, usually a pointer to a struct embedding config.ServiceConfig.
type App[C Config] struct {
	Name       string
	Version    string
	Cfg        C
	Components *component.Registry
	Logger     *logger.Logger
	Summary    *Summary

	gracefulTimeout time.Duration
	onConfigure     []func(ctx context.Context, app *App[C]) error

	onStart []Hook
	onReady []Hook
	onStop  []Hook
}

// NewApp applies defaults to cfg, validates it and initializes the logger.
func NewApp[C Config](cfg C, opts ...Option) (*App[C], error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	base := cfg.GetServiceConfig()
	o := resolveOptions(opts)

	app := &App[C]{
		Name:            base.Name,
		Version:         base.Version,
		Cfg:             cfg,
		gracefulTimeout: 15 * time.Second,
	}
	if o.gracefulTimeout != nil {
		app.gracefulTimeout = *o.gracefulTimeout
	}

	if o.logger != nil {
		app.Logger = o.logger
	} else {
		logger.Init(base.Logging)
		app.Logger = logger.GetGlobalLogger()
	}

	app.Components = component.NewRegistryWithLogger(app.Logger)
	app.Summary = NewSummary(base.Name, base.Version)
	if o.summaryOut != nil {
		app.Summary.SetOutput(o.summaryOut)
	}
	return app, nil
}

// RegisterComponent adds a component. Register dependencies first.
func (a *App[C]) RegisterComponent(c component.Component) error {
	return a.Components.Register(c)
}

// OnConfigure registers a callback that runs after components have
// started, to wire the business layer (store, session service, routes).
func (a *App[C]) OnConfigure(fn func(ctx context.Context, app *App[C]) error) {
	a.onConfigure = append(a.onConfigure, fn)
}

// ReadyCheck reports an error naming every component that is not healthy.
func (a *App[C]) ReadyCheck(ctx context.Context) error {
	var unhealthy []string
	for _, h := range a.Components.HealthAll(ctx) {
		if h.Status != component.StatusHealthy {
			detail := h.Name + "=" + string(h.Status)
			if h.Message != "" {
				detail += "(" + h.Message + ")"
			}
			unhealthy = append(unhealthy, detail)
		}
	}
	if len(unhealthy) > 0 {
		return fmt.Errorf("unhealthy components: %v", unhealthy)
	}
	return nil
}

// Run starts the service, blocks until SIGINT/SIGTERM or ctx is done,
// then shuts down gracefully.
func (a *App[C]) Run(ctx context.Context) error {
	if err := a.startup(ctx); err != nil {
		return err
	}

	a.Logger.Info("Application ready, waiting for shutdown signal")
	a.WaitForSignal(ctx)

	return a.stop()
}

// RunTask runs task with the full lifecycle and shuts down when it
// returns. SIGINT/SIGTERM cancel the task context.
func (a *App[C]) RunTask(ctx context.Context, task func(ctx context.Context) error) error {
	if err := a.startup(ctx); err != nil {
		return err
	}

	taskCtx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	taskErr := task(taskCtx)

	if stopErr := a.stop(); stopErr != nil && taskErr == nil {
		return stopErr
	}
	return taskErr
}

// startup starts components, runs hooks and configure callbacks, and
// prints the summary. On failure, whatever was started is stopped again.
func (a *App[C]) startup(ctx context.Context) error {
	start := time.Now()

	a.Logger.Info("Starting application", logger.Fields("name", a.Name, "version", a.Version))

	steps := []struct {
		name string
		fn   func(context.Context) error
	}{
		{"initialization", a.Components.StartAll},
		{"onStart hook", func(ctx context.Context) error { return runHooks(ctx, a.onStart) }},
		{"configuration", a.configure},
	}
	for _, step := range steps {
		if err := step.fn(ctx); err != nil {
			a.abort()
			return fmt.Errorf("%s failed: %w", step.name, err)
		}
	}

	if err := a.ReadyCheck(ctx); err != nil {
		a.Logger.Warn("Ready check reported issues", logger.Fields("error", err.Error()))
	}

	if err := runHooks(ctx, a.onReady); err != nil {
		a.abort()
		return fmt.Errorf("onReady hook failed: %w", err)
	}

	a.Summary.SetStartupDuration(time.Since(start))
	a.DisplaySummary(ctx)
	return nil
}

func (a *App[C]) configure(ctx context.Context) error {
	for _, fn := range a.onConfigure {
		if err := fn(ctx, a); err != nil {
			return err
		}
	}
	return nil
}

// abort stops components after a failed startup. The startup error is
// what the caller sees; stop errors are only logged.
func (a *App[C]) abort() {
	ctx, cancel := context.WithTimeout(context.Background(), a.gracefulTimeout)
	defer cancel()
	if err := a.Components.StopAll(ctx); err != nil {
		a.Logger.Error("Cleanup after failed startup", logger.Fields("error", err.Error()))
	}
}

// DisplaySummary prints the startup summary with live component health.
func (a *App[C]) DisplaySummary(ctx context.Context) {
	a.Summary.Display(ctx, a.Components)
}

// WaitForSignal blocks until SIGINT/SIGTERM or ctx is done.
func (a *App[C]) WaitForSignal(ctx context.Context) os.Signal {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		a.Logger.Info("Received shutdown signal", logger.Fields("signal", sig.String()))
		return sig
	case <-ctx.Done():
		a.Logger.Info("Context canceled, shutting down")
		return nil
	}
}

// Shutdown stops the application. Use it when managing the lifecycle
// yourself.
func (a *App[C]) Shutdown(_ context.Context) error {
	return a.stop()
}

func (a *App[C]) stop() error {
	a.Logger.Info("Shutting down application", logger.Fields("timeout", a.gracefulTimeout.String()))

	ctx, cancel := context.WithTimeout(context.Background(), a.gracefulTimeout)
	defer cancel()

	var errs []error
	if err := runHooks(ctx, a.onStop); err != nil {
		a.Logger.Error("OnStop hook error", logger.Fields("error", err.Error()))
		errs = append(errs, err)
	}
	if err := a.Components.StopAll(ctx); err != nil {
		a.Logger.Error("Shutdown completed with errors", logger.Fields("error", err.Error()))
		errs = append(errs, err)
	}

	a.Logger.Info("Application shutdown complete")
	return errors.Join(errs...)
}
