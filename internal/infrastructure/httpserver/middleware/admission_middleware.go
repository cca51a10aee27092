package middleware

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/launchboard/admission-gateway/internal/core/domain/admission"
	"github.com/launchboard/admission-gateway/internal/core/ports"
)

// AdmissionMiddleware turns admission decisions into HTTP responses. Denials
// are rendered as JSON with the decision's status and headers; allowed
// requests proceed with the rate limit headers attached.
type AdmissionMiddleware struct {
	admitter         ports.AdmissionService
	logger           *logrus.Logger
	decisionsTotal   *prometheus.CounterVec
	decisionDuration *prometheus.HistogramVec
}

func NewAdmissionMiddleware(admitter ports.AdmissionService, logger *logrus.Logger, decisionsTotal *prometheus.CounterVec, decisionDuration *prometheus.HistogramVec) *AdmissionMiddleware {
	return &AdmissionMiddleware{
		admitter:         admitter,
		logger:           logger,
		decisionsTotal:   decisionsTotal,
		decisionDuration: decisionDuration,
	}
}

func (m *AdmissionMiddleware) Handler() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := admission.NewRequest(c.Request())
			decision := m.admitter.Admit(c.Request().Context(), req)
			m.observe(decision, time.Since(start))

			for k, v := range decision.Headers {
				c.Response().Header().Set(k, v)
			}

			if !decision.Allowed {
				return c.JSON(decision.Status, decision.Body)
			}
			return next(c)
		}
	}
}

func (m *AdmissionMiddleware) observe(d admission.Decision, elapsed time.Duration) {
	outcome := "allow"
	switch {
	case d.Allowed:
	case d.Status == http.StatusForbidden:
		outcome = "blocked"
	case d.Status == http.StatusTooManyRequests:
		outcome = "rate_limited"
	default:
		outcome = "rejected"
	}
	if m.decisionsTotal != nil {
		m.decisionsTotal.WithLabelValues(outcome).Inc()
	}
	if m.decisionDuration != nil {
		m.decisionDuration.WithLabelValues(outcome).Observe(elapsed.Seconds())
	}
}
