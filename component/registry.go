package component

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/kbukum/sessionkit/logger"
)

// DefaultStopTimeout bounds each component's Stop call.
const DefaultStopTimeout = 10 * time.Second

type componentEntry struct {
	component Component
	started   bool
}

// Registry manages component lifecycle with deterministic ordering.
// Components are started in registration order and stopped in reverse order.
type Registry struct {
	entries     []*componentEntry
	lookup      map[string]*componentEntry
	log         *logger.Logger
	stopTimeout time.Duration
	mu          sync.RWMutex
}

// NewRegistry creates a registry that logs through the global logger.
func NewRegistry() *Registry {
	return NewRegistryWithLogger(logger.GetGlobalLogger())
}

// NewRegistryWithLogger creates a registry that logs through log.
func NewRegistryWithLogger(log *logger.Logger) *Registry {
	return &Registry{
		entries:     make([]*componentEntry, 0),
		lookup:      make(map[string]*componentEntry),
		log:         log.WithComponent("components"),
		stopTimeout: DefaultStopTimeout,
	}
}

// Register adds a component. Register dependencies first.
func (r *Registry) Register(c Component) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := c.Name()
	if _, exists := r.lookup[name]; exists {
		return fmt.Errorf("component %s already registered", name)
	}

	entry := &componentEntry{component: c}
	r.entries = append(r.entries, entry)
	r.lookup[name] = entry

	r.log.Debug("Component registered", logger.Fields("component", name))
	return nil
}

// StartAll starts all components in registration order and stops at
// the first failure. Components started before the failure stay marked
// as started so StopAll can release them.
func (r *Registry) StartAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.log.Info("Starting components", logger.Fields("count", len(r.entries)))

	for _, entry := range r.entries {
		name := entry.component.Name()

		r.log.Debug("Starting component", logger.Fields("component", name))
		if err := entry.component.Start(ctx); err != nil {
			r.log.Error("Component start failed", logger.Fields("component", name, "error", err.Error()))
			return fmt.Errorf("failed to start %s: %w", name, err)
		}

		entry.started = true
		r.log.Debug("Component started", logger.Fields("component", name))
	}

	r.log.Info("All components started")
	return nil
}

// StopAll stops started components in reverse registration order. All
// components are attempted; errors are joined.
func (r *Registry) StopAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.log.Info("Stopping components")

	var errs []error
	for i := len(r.entries) - 1; i >= 0; i-- {
		entry := r.entries[i]
		if !entry.started {
			continue
		}

		name := entry.component.Name()
		stopCtx, cancel := context.WithTimeout(ctx, r.stopTimeout)
		if err := entry.component.Stop(stopCtx); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop %s: %w", name, err))
			r.log.Error("Component stop failed", logger.Fields("component", name, "error", err.Error()))
		} else {
			r.log.Info("Component stopped", logger.Fields("component", name))
		}
		entry.started = false
		cancel()
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// HealthAll returns the health of every registered component.
func (r *Registry) HealthAll(ctx context.Context) []Health {
	r.mu.RLock()
	defer r.mu.RUnlock()

	results := make([]Health, 0, len(r.entries))
	for _, entry := range r.entries {
		results = append(results, entry.component.Health(ctx))
	}
	return results
}

// Get returns a registered component by name, or nil.
func (r *Registry) Get(name string) Component {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if entry, exists := r.lookup[name]; exists {
		return entry.component
	}
	return nil
}

// All returns all registered components in registration order.
func (r *Registry) All() []Component {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Component, 0, len(r.entries))
	for _, entry := range r.entries {
		result = append(result, entry.component)
	}
	return result
}
