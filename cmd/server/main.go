package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	config "github.com/launchboard/admission-gateway/configs"
	"github.com/launchboard/admission-gateway/internal/application/services"
	"github.com/launchboard/admission-gateway/internal/core/domain/admission"
	"github.com/launchboard/admission-gateway/internal/core/ports"
	"github.com/launchboard/admission-gateway/internal/infrastructure/email"
	"github.com/launchboard/admission-gateway/internal/infrastructure/health"
	"github.com/launchboard/admission-gateway/internal/infrastructure/httpserver"
	"github.com/launchboard/admission-gateway/internal/infrastructure/redis"
	"github.com/launchboard/admission-gateway/internal/infrastructure/repositories"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// Setup logger
	logger := logrus.New()
	if cfg.Log.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		logger.SetLevel(logrus.InfoLevel)
	} else {
		logger.SetLevel(level)
	}

	logger.Info("Starting admission gateway...")

	// Initialize Redis client
	redisClient, err := redis.NewRedisClient(&cfg.Redis)
	if err != nil {
		logger.Fatal("Failed to connect to Redis:", err)
	}
	defer redisClient.Close()

	logger.Info("Connected to Redis successfully")

	store := redis.NewCacheStore(redisClient, "admission", cfg.Redis.OpTimeout)
	violationRepo := repositories.NewViolationRedisRepository(redisClient, logger)

	// Admission pipeline configuration: defaults with scalar env overrides.
	admissionCfg := admission.DefaultConfig()
	admissionCfg.SuspiciousThreshold = cfg.Admission.SuspiciousThreshold
	admissionCfg.BlockDuration = cfg.Admission.BlockDuration
	admissionCfg.MaxPayloadBytes = cfg.Admission.MaxPayloadBytes
	admissionCfg.AlertThreshold = cfg.Admission.AlertThreshold

	var alertSender ports.AlertSender
	if cfg.Email.SendGridAPIKey != "" {
		alertSender = email.NewAlertSender(&email.AlertConfig{
			SendGridAPIKey: cfg.Email.SendGridAPIKey,
			FromEmail:      cfg.Email.FromEmail,
			FromName:       cfg.Email.FromName,
			OpsEmail:       cfg.Email.OpsEmail,
		}, logger)
	} else {
		logger.Warn("SENDGRID_API_KEY not set; abuse alerts disabled")
	}

	violationService := services.NewViolationService(violationRepo, alertSender, admissionCfg.AlertThreshold, logger)
	identityService := services.NewIdentityService(cfg.JWT.Secret, logger)
	threatDetector := services.NewThreatDetectorService(store, admissionCfg, logger)
	rateLimiter := services.NewRateLimiterService(store, admissionCfg, violationService, logger)
	validator := services.NewRequestValidatorService(admissionCfg, logger)
	admissionService := services.NewAdmissionService(identityService, threatDetector, rateLimiter, validator, admissionCfg, logger)

	serverConfig := &httpserver.ServerConfig{
		Host:            cfg.Server.Host,
		Port:            cfg.Server.Port,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		IdleTimeout:     cfg.Server.IdleTimeout,
		TLSCertFile:     cfg.Server.TLSCertFile,
		TLSKeyFile:      cfg.Server.TLSKeyFile,
		AdminAPIKeyHash: cfg.Admin.APIKeyHash,
	}

	deps := httpserver.ServerDeps{
		AdmissionService: admissionService,
		Blocklist:        threatDetector,
		Violations:       violationService,
		HealthCheckers:   []ports.HealthChecker{health.NewRedisHealthChecker(redisClient)},
	}

	server := httpserver.NewServer(serverConfig, logger, deps)

	// Start server in a goroutine
	go func() {
		if err := server.Start(); err != nil {
			logger.Fatal("Failed to start server:", err)
		}
	}()

	logger.Infof("Server started on %s:%s", cfg.Server.Host, cfg.Server.Port)

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown:", err)
	}

	logger.Info("Server exited")
}
