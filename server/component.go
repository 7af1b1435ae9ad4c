package server

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/kbukum/sessionkit/component"
)

const componentName = "http-server"

var (
	_ component.Component     = (*Component)(nil)
	_ component.Describable   = (*Component)(nil)
	_ component.RouteProvider = (*Component)(nil)
)

// systemPaths are listed after API routes in the startup summary.
var systemPaths = map[string]bool{
	"/health": true,
}

// Component wraps Server for the bootstrap registry.
type Component struct {
	server *Server
}

// NewComponent returns a component backed by s.
func NewComponent(s *Server) *Component {
	return &Component{server: s}
}

func (sc *Component) Name() string { return componentName }

func (sc *Component) Start(ctx context.Context) error { return sc.server.Start(ctx) }

func (sc *Component) Stop(ctx context.Context) error { return sc.server.Stop(ctx) }

// Health reports whether the listener is serving.
func (sc *Component) Health(_ context.Context) component.Health {
	if sc.server.Running() {
		return component.Health{Name: componentName, Status: component.StatusHealthy}
	}
	return component.Health{
		Name:    componentName,
		Status:  component.StatusUnhealthy,
		Message: "HTTP server not running",
	}
}

// Describe returns the startup summary line.
func (sc *Component) Describe() component.Description {
	cfg := sc.server.config
	return component.Description{
		Name:    "HTTP Server",
		Type:    "server",
		Details: fmt.Sprintf("%s:%d h2c", cfg.Host, cfg.Port),
		Port:    cfg.Port,
	}
}

// Routes returns the registered routes, API routes first.
func (sc *Component) Routes() []component.Route {
	ginRoutes := sc.server.engine.Routes()

	sort.Slice(ginRoutes, func(i, j int) bool {
		iSys := systemPaths[ginRoutes[i].Path]
		jSys := systemPaths[ginRoutes[j].Path]
		if iSys != jSys {
			return !iSys
		}
		if ginRoutes[i].Path != ginRoutes[j].Path {
			return ginRoutes[i].Path < ginRoutes[j].Path
		}
		return methodOrder(ginRoutes[i].Method) < methodOrder(ginRoutes[j].Method)
	})

	routes := make([]component.Route, 0, len(ginRoutes))
	for _, r := range ginRoutes {
		routes = append(routes, component.Route{
			Method:  r.Method,
			Path:    r.Path,
			Handler: formatHandlerName(r.Handler),
		})
	}
	return routes
}

// formatHandlerName shortens Gin's handler path, e.g.
// "github.com/kbukum/sessionkit/server/endpoint.(*AuthHandler).Login-fm"
// becomes "AuthHandler.Login".
func formatHandlerName(fullPath string) string {
	name := strings.TrimSuffix(fullPath, "-fm")
	if idx := strings.LastIndex(name, "/"); idx >= 0 {
		name = name[idx+1:]
	}
	name = strings.ReplaceAll(name, "(*", "")
	name = strings.ReplaceAll(name, ")", "")

	// Closures: "endpoint.Health.func1" -> "health"
	if strings.Contains(name, ".func") {
		parts := strings.Split(name, ".")
		for i := len(parts) - 1; i >= 0; i-- {
			if !strings.HasPrefix(parts[i], "func") {
				name = strings.ToLower(parts[i])
				break
			}
		}
	}

	// Drop a lowercase package prefix.
	if pkg, rest, ok := strings.Cut(name, "."); ok && rest != "" && strings.ToLower(pkg) == pkg {
		name = rest
	}
	return name
}

func methodOrder(method string) int {
	switch method {
	case "GET":
		return 0
	case "POST":
		return 1
	case "PUT":
		return 2
	case "PATCH":
		return 3
	case "DELETE":
		return 4
	default:
		return 5
	}
}
