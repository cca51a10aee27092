package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
)

// requireAdminKey guards the admin group with an API key checked against the
// configured bcrypt hash.
func (s *Server) requireAdminKey(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		key := c.Request().Header.Get("X-Admin-Key")
		if key == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "admin key required")
		}
		if err := bcrypt.CompareHashAndPassword([]byte(s.config.AdminAPIKeyHash), []byte(key)); err != nil {
			if s.logger != nil {
				s.logger.WithField("ip", c.RealIP()).Warn("admin key rejected")
			}
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid admin key")
		}
		return next(c)
	}
}

type blockRequest struct {
	Reason string `json:"reason"`
}

func (s *Server) listViolations(c echo.Context) error {
	violations, err := s.violations.Recent(c.Request().Context(), 100)
	if err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "violation log unavailable")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"violations": violations})
}

func (s *Server) getBlock(c echo.Context) error {
	rec, err := s.blocklist.GetBlock(c.Request().Context(), c.Param("ip"))
	if err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "blocklist unavailable")
	}
	if rec == nil {
		return echo.NewHTTPError(http.StatusNotFound, "no active block for ip")
	}
	return c.JSON(http.StatusOK, rec)
}

func (s *Server) createBlock(c echo.Context) error {
	var req blockRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	rec, err := s.blocklist.Block(c.Request().Context(), c.Param("ip"), req.Reason)
	if err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "blocklist unavailable")
	}
	if s.logger != nil {
		s.logger.WithField("ip", rec.IP).Info("manual block created")
	}
	return c.JSON(http.StatusCreated, rec)
}

func (s *Server) deleteBlock(c echo.Context) error {
	ip := c.Param("ip")
	if err := s.blocklist.Unblock(c.Request().Context(), ip); err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "blocklist unavailable")
	}
	if s.logger != nil {
		s.logger.WithField("ip", ip).Info("block removed")
	}
	return c.NoContent(http.StatusNoContent)
}
