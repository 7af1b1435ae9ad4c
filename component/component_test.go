package component

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/kbukum/sessionkit/logger"
)

// fakeComponent records lifecycle calls into a shared log.
type fakeComponent struct {
	name     string
	startErr error
	stopErr  error
	status   HealthStatus
	calls    *[]string
	sawStop  func(ctx context.Context)
}

func (f *fakeComponent) Name() string { return f.name }

func (f *fakeComponent) Start(context.Context) error {
	f.record("start:" + f.name)
	return f.startErr
}

func (f *fakeComponent) Stop(ctx context.Context) error {
	f.record("stop:" + f.name)
	if f.sawStop != nil {
		f.sawStop(ctx)
	}
	return f.stopErr
}

func (f *fakeComponent) Health(context.Context) Health {
	status := f.status
	if status == "" {
		status = StatusHealthy
	}
	return Health{Name: f.name, Status: status}
}

func (f *fakeComponent) record(call string) {
	if f.calls != nil {
		*f.calls = append(*f.calls, call)
	}
}

func newTestRegistry(t *testing.T, components ...Component) *Registry {
	t.Helper()
	r := NewRegistryWithLogger(logger.NewNop())
	for _, c := range components {
		if err := r.Register(c); err != nil {
			t.Fatalf("Register(%s): %v", c.Name(), err)
		}
	}
	return r
}

func TestRegisterRejectsDuplicateNames(t *testing.T) {
	r := newTestRegistry(t, &fakeComponent{name: "database"})

	err := r.Register(&fakeComponent{name: "database"})
	if err == nil || !strings.Contains(err.Error(), "already registered") {
		t.Fatalf("expected duplicate error, got %v", err)
	}
	if got := len(r.All()); got != 1 {
		t.Errorf("All() has %d components, want 1", got)
	}
}

func TestGetAndAll(t *testing.T) {
	db := &fakeComponent{name: "database"}
	srv := &fakeComponent{name: "http-server"}
	r := newTestRegistry(t, db, srv)

	if r.Get("database") != db {
		t.Error("Get(database) did not return the registered component")
	}
	if r.Get("cache") != nil {
		t.Error("Get of an unknown name must return nil")
	}

	all := r.All()
	if len(all) != 2 || all[0] != db || all[1] != srv {
		t.Errorf("All() = %v, want registration order", all)
	}
}

func TestLifecycleOrder(t *testing.T) {
	tests := []struct {
		name      string
		failStart string
		want      string
		wantErr   bool
	}{
		{
			name: "all start",
			want: "start:observability,start:database,start:http-server,stop:http-server,stop:database,stop:observability",
		},
		{
			name:      "server fails to bind",
			failStart: "http-server",
			want:      "start:observability,start:database,start:http-server,stop:database,stop:observability",
			wantErr:   true,
		},
		{
			name:      "database unreachable",
			failStart: "database",
			want:      "start:observability,start:database,stop:observability",
			wantErr:   true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls []string
			var components []Component
			for _, name := range []string{"observability", "database", "http-server"} {
				c := &fakeComponent{name: name, calls: &calls}
				if name == tt.failStart {
					c.startErr = errors.New("unavailable")
				}
				components = append(components, c)
			}
			r := newTestRegistry(t, components...)

			err := r.StartAll(context.Background())
			if (err != nil) != tt.wantErr {
				t.Fatalf("StartAll() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !strings.Contains(err.Error(), tt.failStart) {
				t.Errorf("start error %q does not name %s", err, tt.failStart)
			}
			if err := r.StopAll(context.Background()); err != nil {
				t.Fatalf("StopAll() = %v", err)
			}
			if got := strings.Join(calls, ","); got != tt.want {
				t.Errorf("calls:\n got  %s\n want %s", got, tt.want)
			}
		})
	}
}

func TestStopAllIsIdempotent(t *testing.T) {
	var calls []string
	r := newTestRegistry(t, &fakeComponent{name: "database", calls: &calls})

	if err := r.StopAll(context.Background()); err != nil {
		t.Fatalf("StopAll before start: %v", err)
	}
	_ = r.StartAll(context.Background())
	_ = r.StopAll(context.Background())
	_ = r.StopAll(context.Background())

	if got := strings.Join(calls, ","); got != "start:database,stop:database" {
		t.Errorf("calls = %s, want one start and one stop", got)
	}
}

func TestStopAllJoinsErrors(t *testing.T) {
	errDB := errors.New("close pool")
	errHTTP := errors.New("shutdown deadline")
	r := newTestRegistry(t,
		&fakeComponent{name: "database", stopErr: errDB},
		&fakeComponent{name: "http-server", stopErr: errHTTP},
	)
	_ = r.StartAll(context.Background())

	err := r.StopAll(context.Background())
	if !errors.Is(err, errDB) || !errors.Is(err, errHTTP) {
		t.Errorf("expected both stop errors, got %v", err)
	}
}

func TestStopAllBoundsEachStop(t *testing.T) {
	var deadline time.Time
	var hasDeadline bool
	r := newTestRegistry(t, &fakeComponent{
		name: "database",
		sawStop: func(ctx context.Context) {
			deadline, hasDeadline = ctx.Deadline()
		},
	})
	r.stopTimeout = 50 * time.Millisecond
	_ = r.StartAll(context.Background())

	before := time.Now()
	_ = r.StopAll(context.Background())

	if !hasDeadline {
		t.Fatal("Stop received a context without deadline")
	}
	if d := deadline.Sub(before); d > time.Second {
		t.Errorf("stop deadline %v away, want about 50ms", d)
	}
}

func TestHealthAll(t *testing.T) {
	r := newTestRegistry(t,
		&fakeComponent{name: "database", status: StatusUnhealthy},
		&fakeComponent{name: "http-server"},
	)

	got := r.HealthAll(context.Background())
	want := []Health{
		{Name: "database", Status: StatusUnhealthy},
		{Name: "http-server", Status: StatusHealthy},
	}
	if len(got) != len(want) {
		t.Fatalf("HealthAll() returned %d results, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("HealthAll()[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}
