package httpserver

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/launchboard/admission-gateway/internal/core/ports"
	customMiddleware "github.com/launchboard/admission-gateway/internal/infrastructure/httpserver/middleware"
)

type ServerConfig struct {
	Host         string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	TLSCertFile  string
	TLSKeyFile   string
	// AdminAPIKeyHash is the bcrypt hash guarding the admin endpoints.
	// Empty disables them.
	AdminAPIKeyHash string
}

type ServerDeps struct {
	AdmissionService ports.AdmissionService
	Blocklist        ports.BlocklistAdmin
	Violations       ports.ViolationService
	HealthCheckers   []ports.HealthChecker
}

type Server struct {
	echo           *echo.Echo
	config         *ServerConfig
	logger         *logrus.Logger
	blocklist      ports.BlocklistAdmin
	violations     ports.ViolationService
	middleware     *customMiddleware.MiddlewareCollection
	healthCheckers []ports.HealthChecker
}

func NewServer(serverConfig *ServerConfig, logger *logrus.Logger, deps ServerDeps) *Server {
	e := echo.New()
	e.HideBanner = true

	server := &Server{
		echo:           e,
		config:         serverConfig,
		logger:         logger,
		blocklist:      deps.Blocklist,
		violations:     deps.Violations,
		healthCheckers: deps.HealthCheckers,
		middleware: customMiddleware.NewMiddlewareCollection(
			deps.AdmissionService,
			logger,
			GetRequestsTotal(),
			GetRequestDuration(),
			GetDecisionsTotal(),
			GetDecisionDuration(),
		),
	}

	server.setupMiddleware()
	server.setupRoutes()

	return server
}
