package middleware

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/launchboard/admission-gateway/internal/core/ports"
)

// MiddlewareCollection holds all middleware instances
type MiddlewareCollection struct {
	Admission *AdmissionMiddleware
	Logging   *LoggingMiddleware
	Metrics   *MetricsMiddleware
}

// NewMiddlewareCollection creates a new collection of all middleware
func NewMiddlewareCollection(
	admissionService ports.AdmissionService,
	logger *logrus.Logger,
	requestsTotal *prometheus.CounterVec,
	requestDuration *prometheus.HistogramVec,
	decisionsTotal *prometheus.CounterVec,
	decisionDuration *prometheus.HistogramVec,
) *MiddlewareCollection {
	return &MiddlewareCollection{
		Admission: NewAdmissionMiddleware(admissionService, logger, decisionsTotal, decisionDuration),
		Logging:   NewLoggingMiddleware(logger),
		Metrics:   NewMetricsMiddleware(requestsTotal, requestDuration),
	}
}
