package bootstrap

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/kbukum/sessionkit/component"
)

// Summary prints what the service started with: components (via
// component.Describable), routes (via component.RouteProvider) and live
// health.
type Summary struct {
	serviceName     string
	version         string
	startupDuration time.Duration
	out             io.Writer
}

// NewSummary creates a summary writing to stdout.
func NewSummary(serviceName, version string) *Summary {
	return &Summary{serviceName: serviceName, version: version, out: os.Stdout}
}

// SetOutput redirects the summary.
func (s *Summary) SetOutput(w io.Writer) {
	s.out = w
}

// SetStartupDuration records the total startup time.
func (s *Summary) SetStartupDuration(d time.Duration) {
	s.startupDuration = d
}

// Display writes the summary for the components in registry.
func (s *Summary) Display(ctx context.Context, registry *component.Registry) {
	w := s.out
	version := s.version
	if version == "" {
		version = "dev"
	}
	fmt.Fprintf(w, "\n%s %s started in %.2fs\n", s.serviceName, version, s.startupDuration.Seconds())

	if registry == nil {
		fmt.Fprintf(w, "   └── No components registered\n\n")
		return
	}

	components := registry.All()
	var routes []component.Route
	var described []component.Description
	for _, c := range components {
		if d, ok := c.(component.Describable); ok {
			desc := d.Describe()
			if desc.Name == "" {
				desc.Name = c.Name()
			}
			described = append(described, desc)
		}
		if rp, ok := c.(component.RouteProvider); ok {
			routes = append(routes, rp.Routes()...)
		}
	}

	if len(described) > 0 {
		fmt.Fprintf(w, "\nInfrastructure\n")
		for i, d := range described {
			fmt.Fprintf(w, "   %s %s [%s]: %s\n", treePrefix(i, len(described)), d.Name, d.Type, d.Details)
		}
	}

	if len(routes) > 0 {
		fmt.Fprintf(w, "\nRoutes (%d)\n", len(routes))
		for i, r := range routes {
			fmt.Fprintf(w, "   %s %-7s %s -> %s\n", treePrefix(i, len(routes)), r.Method, r.Path, r.Handler)
		}
	}

	health := registry.HealthAll(ctx)
	if len(health) > 0 {
		fmt.Fprintf(w, "\nHealth\n")
		for i, h := range health {
			msg := ""
			if h.Message != "" {
				msg = " (" + h.Message + ")"
			}
			fmt.Fprintf(w, "   %s %s %s: %s%s\n", treePrefix(i, len(health)), healthStatusIcon(h.Status), h.Name, h.Status, msg)
		}
	}
	fmt.Fprintln(w)
}

func treePrefix(i, n int) string {
	if i == n-1 {
		return "└──"
	}
	return "├──"
}

func healthStatusIcon(status component.HealthStatus) string {
	switch status {
	case component.StatusHealthy:
		return "✅"
	case component.StatusDegraded:
		return "⚠️"
	case component.StatusUnhealthy:
		return "❌"
	default:
		return "❓"
	}
}
