package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "The total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "http_request_duration_seconds",
			Help: "The HTTP request latencies in seconds",
		},
		[]string{"method", "endpoint"},
	)

	decisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "admission_decisions_total",
			Help: "Admission decisions by outcome",
		},
		[]string{"outcome"},
	)

	decisionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "admission_decision_duration_seconds",
			Help: "Time spent evaluating the admission pipeline",
		},
		[]string{"outcome"},
	)
)

func init() {
	prometheus.MustRegister(requestsTotal)
	prometheus.MustRegister(requestDuration)
	prometheus.MustRegister(decisionsTotal)
	prometheus.MustRegister(decisionDuration)
}

// GetRequestsTotal returns the requests total metric for middleware use
func GetRequestsTotal() *prometheus.CounterVec {
	return requestsTotal
}

// GetRequestDuration returns the request duration metric for middleware use
func GetRequestDuration() *prometheus.HistogramVec {
	return requestDuration
}

// GetDecisionsTotal returns the admission decisions metric for middleware use
func GetDecisionsTotal() *prometheus.CounterVec {
	return decisionsTotal
}

// GetDecisionDuration returns the decision duration metric for middleware use
func GetDecisionDuration() *prometheus.HistogramVec {
	return decisionDuration
}

// metricsEndpoint serves the Prometheus scrape endpoint
func (s *Server) metricsEndpoint(c echo.Context) error {
	var handler http.Handler = promhttp.Handler()
	handler.ServeHTTP(c.Response(), c.Request())
	return nil
}
