package bootstrap

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/kbukum/sessionkit/component"
	"github.com/kbukum/sessionkit/config"
	"github.com/kbukum/sessionkit/logger"
)

// testConfig is a minimal config satisfying the Config interface.
type testConfig struct {
	config.ServiceConfig
}

// mockComponent implements component.Component and records calls in a
// shared journal so ordering can be asserted.
type mockComponent struct {
	name     string
	startErr error
	stopErr  error
	health   component.Health
	journal  *journal
	started  bool
	stopped  bool
}

func (m *mockComponent) Name() string { return m.name }
func (m *mockComponent) Start(ctx context.Context) error {
	m.started = true
	m.journal.add("start:" + m.name)
	return m.startErr
}
func (m *mockComponent) Stop(ctx context.Context) error {
	m.stopped = true
	m.journal.add("stop:" + m.name)
	return m.stopErr
}
func (m *mockComponent) Health(ctx context.Context) component.Health {
	if m.health.Name == "" {
		return component.Health{Name: m.name, Status: component.StatusHealthy}
	}
	return m.health
}

// describedComponent adds summary information to mockComponent.
type describedComponent struct {
	mockComponent
	desc   component.Description
	routes []component.Route
}

func (d *describedComponent) Describe() component.Description { return d.desc }
func (d *describedComponent) Routes() []component.Route        { return d.routes }

type journal struct {
	mu      sync.Mutex
	entries []string
}

func (j *journal) add(e string) {
	if j == nil {
		return
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = append(j.entries, e)
}

func (j *journal) String() string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return strings.Join(j.entries, ",")
}

func newTestConfig(name, version string) *testConfig {
	return &testConfig{
		ServiceConfig: config.ServiceConfig{
			Name:        name,
			Version:     version,
			Environment: "development",
		},
	}
}

func newTestApp(t *testing.T, opts ...Option) *App[*testConfig] {
	t.Helper()
	opts = append([]Option{WithLogger(logger.NewNop()), WithSummaryOutput(io.Discard)}, opts...)
	app, err := NewApp(newTestConfig("test-svc", "1.0.0"), opts...)
	if err != nil {
		t.Fatalf("NewApp failed: %v", err)
	}
	return app
}

func TestNewApp(t *testing.T) {
	app := newTestApp(t)
	if app.Name != "test-svc" {
		t.Errorf("expected name 'test-svc', got %q", app.Name)
	}
	if app.Version != "1.0.0" {
		t.Errorf("expected version '1.0.0', got %q", app.Version)
	}
	if app.Components == nil {
		t.Error("expected non-nil components registry")
	}
	if app.Logger == nil {
		t.Error("expected non-nil logger")
	}
	if app.Cfg.Name != "test-svc" {
		t.Errorf("expected cfg.Name 'test-svc', got %q", app.Cfg.Name)
	}
	if app.gracefulTimeout != 15*time.Second {
		t.Errorf("expected default graceful timeout 15s, got %v", app.gracefulTimeout)
	}
}

func TestNewAppAppliesDefaults(t *testing.T) {
	cfg := &testConfig{ServiceConfig: config.ServiceConfig{Name: "svc"}}
	app, err := NewApp(cfg, WithLogger(logger.NewNop()))
	if err != nil {
		t.Fatalf("NewApp failed: %v", err)
	}
	if app.Cfg.Environment != "development" {
		t.Errorf("expected environment default, got %q", app.Cfg.Environment)
	}
	if app.Cfg.Logging.ServiceName != "svc" {
		t.Errorf("expected logging service name to follow name, got %q", app.Cfg.Logging.ServiceName)
	}
}

func TestNewAppValidation(t *testing.T) {
	tests := []struct {
		name string
		cfg  *testConfig
	}{
		{"missing name", &testConfig{ServiceConfig: config.ServiceConfig{Environment: "development"}}},
		{"bad environment", &testConfig{ServiceConfig: config.ServiceConfig{Name: "svc", Environment: "qa"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewApp(tt.cfg, WithLogger(logger.NewNop())); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestNewAppInitializesGlobalLogger(t *testing.T) {
	app, err := NewApp(newTestConfig("global-svc", "1.0"), WithSummaryOutput(io.Discard))
	if err != nil {
		t.Fatalf("NewApp failed: %v", err)
	}
	if app.Logger != logger.GetGlobalLogger() {
		t.Error("expected app logger to be the global logger")
	}
}

func TestNewAppWithOptions(t *testing.T) {
	app := newTestApp(t, WithGracefulTimeout(30*time.Second))
	if app.gracefulTimeout != 30*time.Second {
		t.Errorf("expected 30s timeout, got %v", app.gracefulTimeout)
	}
}

func TestRegisterComponent(t *testing.T) {
	app := newTestApp(t)
	if err := app.RegisterComponent(&mockComponent{name: "db"}); err != nil {
		t.Fatalf("RegisterComponent failed: %v", err)
	}
	if app.Components.Get("db") == nil {
		t.Error("expected component to be registered")
	}
	if err := app.RegisterComponent(&mockComponent{name: "db"}); err == nil {
		t.Error("expected error for duplicate component registration")
	}
}

func TestRunHooksStopsAtFirstError(t *testing.T) {
	var calls []int
	hooks := []Hook{
		func(ctx context.Context) error { calls = append(calls, 0); return nil },
		func(ctx context.Context) error { calls = append(calls, 1); return errors.New("boom") },
		func(ctx context.Context) error { calls = append(calls, 2); return nil },
	}
	err := runHooks(context.Background(), hooks)
	if err == nil || !strings.Contains(err.Error(), "hook 1") {
		t.Fatalf("expected hook 1 error, got %v", err)
	}
	if len(calls) != 2 {
		t.Errorf("expected 2 hooks to run, got %v", calls)
	}
}

func TestReadyCheck(t *testing.T) {
	tests := []struct {
		name    string
		health  component.Health
		wantErr bool
	}{
		{"healthy", component.Health{Name: "db", Status: component.StatusHealthy}, false},
		{"degraded", component.Health{Name: "db", Status: component.StatusDegraded}, true},
		{"unhealthy", component.Health{Name: "db", Status: component.StatusUnhealthy, Message: "ping failed"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(t)
			_ = app.RegisterComponent(&mockComponent{name: "db", health: tt.health})
			err := app.ReadyCheck(context.Background())
			if (err != nil) != tt.wantErr {
				t.Fatalf("ReadyCheck() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && tt.health.Message != "" && !strings.Contains(err.Error(), tt.health.Message) {
				t.Errorf("expected message in error, got %v", err)
			}
		})
	}
}

func TestRunTaskLifecycleOrder(t *testing.T) {
	app := newTestApp(t)
	j := &journal{}
	_ = app.RegisterComponent(&mockComponent{name: "db", journal: j})
	_ = app.RegisterComponent(&mockComponent{name: "http", journal: j})

	app.OnStart(func(ctx context.Context) error { j.add("onStart"); return nil })
	app.OnConfigure(func(ctx context.Context, a *App[*testConfig]) error {
		if a != app {
			t.Error("configure received a different app")
		}
		j.add("configure")
		return nil
	})
	app.OnReady(func(ctx context.Context) error { j.add("onReady"); return nil })
	app.OnStop(func(ctx context.Context) error { j.add("onStop"); return nil })

	err := app.RunTask(context.Background(), func(ctx context.Context) error {
		j.add("task")
		return nil
	})
	if err != nil {
		t.Fatalf("RunTask failed: %v", err)
	}

	want := "start:db,start:http,onStart,configure,onReady,task,onStop,stop:http,stop:db"
	if got := j.String(); got != want {
		t.Errorf("lifecycle order:\n got  %s\n want %s", got, want)
	}
}

func TestRunTaskReturnsTaskError(t *testing.T) {
	app := newTestApp(t)
	db := &mockComponent{name: "db"}
	_ = app.RegisterComponent(db)

	taskErr := errors.New("migration failed")
	err := app.RunTask(context.Background(), func(ctx context.Context) error { return taskErr })
	if !errors.Is(err, taskErr) {
		t.Fatalf("expected task error, got %v", err)
	}
	if !db.stopped {
		t.Error("expected components to be stopped after a failed task")
	}
}

func TestRunTaskReturnsStopError(t *testing.T) {
	app := newTestApp(t)
	stopErr := errors.New("close failed")
	_ = app.RegisterComponent(&mockComponent{name: "db", stopErr: stopErr})

	err := app.RunTask(context.Background(), func(ctx context.Context) error { return nil })
	if !errors.Is(err, stopErr) {
		t.Fatalf("expected stop error, got %v", err)
	}
}

func TestStartupFailureStopsStartedComponents(t *testing.T) {
	tests := []struct {
		name  string
		setup func(app *App[*testConfig], j *journal)
		want  string
	}{
		{
			name: "component start",
			setup: func(app *App[*testConfig], j *journal) {
				_ = app.RegisterComponent(&mockComponent{name: "db", journal: j})
				_ = app.RegisterComponent(&mockComponent{name: "http", journal: j, startErr: errors.New("bind")})
			},
			want: "initialization failed",
		},
		{
			name: "configure",
			setup: func(app *App[*testConfig], j *journal) {
				_ = app.RegisterComponent(&mockComponent{name: "db", journal: j})
				app.OnConfigure(func(ctx context.Context, _ *App[*testConfig]) error { return errors.New("wire") })
			},
			want: "configuration failed",
		},
		{
			name: "onReady",
			setup: func(app *App[*testConfig], j *journal) {
				_ = app.RegisterComponent(&mockComponent{name: "db", journal: j})
				app.OnReady(func(ctx context.Context) error { return errors.New("not ready") })
			},
			want: "onReady hook failed",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(t)
			j := &journal{}
			tt.setup(app, j)

			taskRan := false
			err := app.RunTask(context.Background(), func(ctx context.Context) error {
				taskRan = true
				return nil
			})
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected %q error, got %v", tt.want, err)
			}
			if taskRan {
				t.Error("task must not run after a failed startup")
			}
			if !strings.Contains(j.String(), "stop:db") {
				t.Errorf("expected db to be stopped, journal: %s", j)
			}
		})
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	app := newTestApp(t)
	db := &mockComponent{name: "db"}
	_ = app.RegisterComponent(db)

	ctx, cancel := context.WithCancel(context.Background())
	app.OnReady(func(context.Context) error {
		cancel()
		return nil
	})

	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after context cancel")
	}
	if !db.started || !db.stopped {
		t.Errorf("expected component started and stopped, got started=%v stopped=%v", db.started, db.stopped)
	}
}

func TestShutdownRunsStopHooks(t *testing.T) {
	app := newTestApp(t)
	called := false
	app.OnStop(func(ctx context.Context) error {
		called = true
		return errors.New("flush failed")
	})
	err := app.Shutdown(context.Background())
	if !called {
		t.Error("expected onStop hook to be called")
	}
	if err == nil || !strings.Contains(err.Error(), "flush failed") {
		t.Errorf("expected hook error in shutdown result, got %v", err)
	}
}

func TestSummaryDisplay(t *testing.T) {
	var buf bytes.Buffer
	app := newTestApp(t, WithSummaryOutput(&buf))

	_ = app.RegisterComponent(&describedComponent{
		mockComponent: mockComponent{name: "database"},
		desc:          component.Description{Type: "database", Details: "driver=sqlite"},
	})
	_ = app.RegisterComponent(&describedComponent{
		mockComponent: mockComponent{name: "http-server"},
		desc:          component.Description{Name: "HTTP", Type: "server", Details: ":8080"},
		routes: []component.Route{
			{Method: "POST", Path: "/auth/login", Handler: "endpoint.(*AuthHandler).Login"},
			{Method: "GET", Path: "/health", Handler: "endpoint.Health"},
		},
	})
	_ = app.RegisterComponent(&mockComponent{
		name:   "cache",
		health: component.Health{Name: "cache", Status: component.StatusUnhealthy, Message: "down"},
	})

	app.Summary.SetStartupDuration(1500 * time.Millisecond)
	app.DisplaySummary(context.Background())

	out := buf.String()
	for _, want := range []string{
		"test-svc 1.0.0 started in 1.50s",
		"database [database]: driver=sqlite",
		"HTTP [server]: :8080",
		"Routes (2)",
		"/auth/login",
		"cache: unhealthy (down)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestSummaryNilRegistry(t *testing.T) {
	var buf bytes.Buffer
	s := NewSummary("svc", "")
	s.SetOutput(&buf)
	s.Display(context.Background(), nil)

	out := buf.String()
	if !strings.Contains(out, "svc dev") {
		t.Errorf("expected dev version fallback, got %q", out)
	}
	if !strings.Contains(out, "No components registered") {
		t.Errorf("expected empty notice, got %q", out)
	}
}
