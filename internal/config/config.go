package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const minProductionSecretLength = 32

type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Auth        AuthConfig
	Logging     LoggingConfig
	Tracing     TracingConfig
	Email       EmailConfig
	Environment string
}

type ServerConfig struct {
	Host    string
	Port    int
	BaseURL string
}

type DatabaseConfig struct {
	URL            string
	MaxConnections int
	AutoMigrate    bool
}

type AuthConfig struct {
	JWTSecret string
	JWTExpiry time.Duration
	JWTIssuer string
}

type LoggingConfig struct {
	Level  string
	Format string
}

type TracingConfig struct {
	Enabled      bool
	Exporter     string
	ServiceName  string
	OTLPEndpoint string
	SampleRate   float64
}

type EmailConfig struct {
	Enabled      bool
	From         string
	ResendAPIKey string
}

// Load builds the configuration from environment variables only.
func Load() (Config, error) {
	return load(nil)
}

// LoadFile overlays a YAML file underneath the environment: a variable that is
// set in the environment always wins over the same key in the file.
func LoadFile(path string) (Config, error) {
	if strings.TrimSpace(path) == "" {
		return Load()
	}
	values, err := readFileValues(path)
	if err != nil {
		return Config{}, err
	}
	return load(values)
}

func load(fileValues map[string]string) (Config, error) {
	env := lookup{file: fileValues}

	cfg := Config{
		Server: ServerConfig{
			Host:    env.str("SERVER_HOST", "0.0.0.0"),
			Port:    env.int("SERVER_PORT", 8080),
			BaseURL: env.str("SERVER_BASE_URL", "http://localhost:8080"),
		},
		Database: DatabaseConfig{
			URL:            env.str("DATABASE_URL", ""),
			MaxConnections: env.int("DATABASE_MAX_CONNECTIONS", 25),
			AutoMigrate:    env.bool("AUTO_MIGRATE", false),
		},
		Auth: AuthConfig{
			JWTSecret: env.str("JWT_SECRET", ""),
			JWTExpiry: env.duration("JWT_EXPIRY", 15*time.Minute),
			JWTIssuer: env.str("JWT_ISSUER", "eventlink"),
		},
		Logging: LoggingConfig{
			Level:  env.str("LOG_LEVEL", "info"),
			Format: env.str("LOG_FORMAT", "json"),
		},
		Tracing: TracingConfig{
			Enabled:      env.bool("TRACING_ENABLED", false),
			Exporter:     env.str("TRACING_EXPORTER", "stdout"),
			ServiceName:  env.str("TRACING_SERVICE_NAME", "eventlink-server"),
			OTLPEndpoint: env.str("OTLP_ENDPOINT", "localhost:4317"),
			SampleRate:   env.float("TRACING_SAMPLE_RATE", 1.0),
		},
		Email: EmailConfig{
			Enabled:      env.bool("EMAIL_ENABLED", false),
			From:         env.str("EMAIL_FROM", "EventLink <no-reply@eventlink.local>"),
			ResendAPIKey: env.str("RESEND_API_KEY", ""),
		},
		Environment: env.str("ENVIRONMENT", "development"),
	}

	if cfg.Database.URL == "" {
		return Config{}, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.Auth.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.IsProduction() && len(cfg.Auth.JWTSecret) < minProductionSecretLength {
		return Config{}, fmt.Errorf("JWT_SECRET must be at least %d bytes in production", minProductionSecretLength)
	}
	if cfg.Auth.JWTExpiry <= 0 {
		return Config{}, fmt.Errorf("JWT_EXPIRY must be positive")
	}
	if cfg.Email.Enabled && cfg.Email.ResendAPIKey == "" {
		return Config{}, fmt.Errorf("RESEND_API_KEY is required when EMAIL_ENABLED is true")
	}
	return cfg, nil
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

type lookup struct {
	file map[string]string
}

func (l lookup) raw(key string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return l.file[key]
}

func (l lookup) str(key, fallback string) string {
	if value := l.raw(key); value != "" {
		return value
	}
	return fallback
}

func (l lookup) int(key string, fallback int) int {
	value := l.raw(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func (l lookup) bool(key string, fallback bool) bool {
	value := l.raw(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func (l lookup) float(key string, fallback float64) float64 {
	value := l.raw(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

// duration accepts Go duration strings ("30m") and bare integers as minutes.
func (l lookup) duration(key string, fallback time.Duration) time.Duration {
	value := l.raw(key)
	if value == "" {
		return fallback
	}
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}
