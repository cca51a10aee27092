package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Liveness: the process is up. No dependency checks here so a Redis outage
// never gets the gateway restarted (it fails open instead).
func (s *Server) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"service":   "admission-gateway",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// Readiness: probes dependencies.
func (s *Server) readyCheck(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	deps := make(map[string]string)
	overall := "ready"
	for _, hc := range s.healthCheckers {
		if hc == nil {
			continue
		}
		if err := hc.Check(ctx); err != nil {
			deps[hc.Name()] = "unhealthy"
			overall = "degraded"
		} else {
			deps[hc.Name()] = "healthy"
		}
	}

	code := http.StatusOK
	if overall != "ready" {
		code = http.StatusServiceUnavailable
	}
	return c.JSON(code, map[string]interface{}{
		"status":       overall,
		"dependencies": deps,
		"timestamp":    time.Now().UTC().Format(time.RFC3339),
	})
}
