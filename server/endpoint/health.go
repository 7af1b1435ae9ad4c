package endpoint

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/sessionkit/component"
)

// HealthChecker returns health status for registered components.
type HealthChecker func(ctx context.Context) []component.Health

// HealthResponse is the /health body.
type HealthResponse struct {
	Status     component.HealthStatus `json:"status"`
	Service    string                 `json:"service"`
	Timestamp  string                 `json:"timestamp"`
	Components []component.Health     `json:"components"`
}

// Health reports the aggregate status of the components: unhealthy if
// any is unhealthy (503), degraded if any is degraded, else healthy.
func Health(serviceName string, checker HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := component.StatusHealthy
		components := []component.Health{}

		if checker != nil {
			components = checker(c.Request.Context())
			for _, ch := range components {
				if ch.Status == component.StatusUnhealthy {
					status = component.StatusUnhealthy
					break
				}
				if ch.Status == component.StatusDegraded {
					status = component.StatusDegraded
				}
			}
		}

		httpStatus := http.StatusOK
		if status == component.StatusUnhealthy {
			httpStatus = http.StatusServiceUnavailable
		}

		c.JSON(httpStatus, HealthResponse{
			Status:     status,
			Service:    serviceName,
			Timestamp:  time.Now().UTC().Format(time.RFC3339),
			Components: components,
		})
	}
}
