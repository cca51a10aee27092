package configs

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Redis     RedisConfig
	Log       LogConfig
	JWT       JWTConfig
	Email     EmailConfig
	Admission AdmissionConfig
	Admin     AdminConfig
}

type ServerConfig struct {
	Host         string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	TLSCertFile  string
	TLSKeyFile   string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	// Pool and timeout settings. OpTimeout bounds every admission-path store
	// call; keep it short so a Redis outage degrades to fail-open quickly.
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	PoolTimeout  time.Duration
	IdleTimeout  time.Duration
	OpTimeout    time.Duration
}

type LogConfig struct {
	Level  string
	Format string // json or text
}

type JWTConfig struct {
	Secret string
}

type EmailConfig struct {
	SendGridAPIKey string // empty disables abuse alerts
	FromEmail      string
	FromName       string
	OpsEmail       string
}

// AdmissionConfig carries the scalar knobs of the admission pipeline. The
// policy table, pattern lists and path sets live on admission.DefaultConfig.
type AdmissionConfig struct {
	SuspiciousThreshold int
	BlockDuration       time.Duration
	MaxPayloadBytes     int64
	AlertThreshold      int
}

type AdminConfig struct {
	// APIKeyHash is the bcrypt hash of the admin API key. Empty disables the
	// admin endpoints.
	APIKeyHash string
}

func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Host:         getEnv("SERVER_HOST", "0.0.0.0"),
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:  getDurationEnv("SERVER_IDLE_TIMEOUT", 120*time.Second),
			TLSCertFile:  getEnv("TLS_CERT_FILE", ""),
			TLSKeyFile:   getEnv("TLS_KEY_FILE", ""),
		},
		Redis: RedisConfig{
			Host:         getEnv("REDIS_HOST", "localhost"),
			Port:         getEnv("REDIS_PORT", "6379"),
			Password:     getEnv("REDIS_PASSWORD", ""),
			DB:           getIntEnv("REDIS_DB", 0),
			PoolSize:     getIntEnv("REDIS_POOL_SIZE", 10),
			MinIdleConns: getIntEnv("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  getDurationEnv("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getDurationEnv("REDIS_READ_TIMEOUT", 100*time.Millisecond),
			WriteTimeout: getDurationEnv("REDIS_WRITE_TIMEOUT", 100*time.Millisecond),
			PoolTimeout:  getDurationEnv("REDIS_POOL_TIMEOUT", 4*time.Second),
			IdleTimeout:  getDurationEnv("REDIS_IDLE_TIMEOUT", 5*time.Minute),
			OpTimeout:    getDurationEnv("REDIS_OP_TIMEOUT", 100*time.Millisecond),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		JWT: JWTConfig{
			Secret: getEnvRequired("JWT_SECRET"),
		},
		Email: EmailConfig{
			SendGridAPIKey: getEnv("SENDGRID_API_KEY", ""),
			FromEmail:      getEnv("FROM_EMAIL", "noreply@launchboard.dev"),
			FromName:       getEnv("FROM_NAME", "Launchboard Gateway"),
			OpsEmail:       getEnv("OPS_EMAIL", "ops@launchboard.dev"),
		},
		Admission: AdmissionConfig{
			SuspiciousThreshold: getIntEnv("ADMISSION_SUSPICIOUS_THRESHOLD", 50),
			BlockDuration:       getDurationEnv("ADMISSION_BLOCK_DURATION", time.Hour),
			MaxPayloadBytes:     getInt64Env("ADMISSION_MAX_PAYLOAD_BYTES", 10<<20),
			AlertThreshold:      getIntEnv("ADMISSION_ALERT_THRESHOLD", 25),
		},
		Admin: AdminConfig{
			APIKeyHash: getEnv("ADMIN_API_KEY_HASH", ""),
		},
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvRequired(key string) string {
	value := os.Getenv(key)
	if value == "" {
		panic(fmt.Sprintf("Required environment variable %s is not set", key))
	}
	return value
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getInt64Env(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
