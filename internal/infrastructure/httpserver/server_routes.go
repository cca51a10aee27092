package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

func (s *Server) setupRoutes() {
	s.echo.GET("/health", s.healthCheck)
	s.echo.GET("/ready", s.readyCheck)
	s.echo.GET("/metrics", s.metricsEndpoint)

	// The ops plane stays outside the admission pipeline so a blocked IP can
	// still be unblocked.
	if s.config.AdminAPIKeyHash != "" {
		admin := s.echo.Group("/admin", s.requireAdminKey)
		admin.GET("/violations", s.listViolations)
		admin.GET("/blocklist/:ip", s.getBlock)
		admin.POST("/blocklist/:ip", s.createBlock)
		admin.DELETE("/blocklist/:ip", s.deleteBlock)
	}

	// Forward-auth target: every other path runs the admission pipeline; a
	// fronting proxy treats 200 as "admit".
	s.echo.Any("/*", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	}, s.middleware.Admission.Handler())
}
