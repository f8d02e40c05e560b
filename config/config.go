// Package config loads application configuration from the environment.
// Values are read once at startup and handed to constructors explicitly.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

const (
	DBTypePostgres = "postgres"
	DBTypeMemory   = "memory"

	MediaDriverS3    = "s3"
	MediaDriverLocal = "local"
)

type Config struct {
	AppEnv string `env:"APP_ENV" envDefault:"development"`
	Port   int    `env:"PORT" envDefault:"8080"`

	// Database
	DBType              string   `env:"DB_TYPE" envDefault:"postgres"`
	DatabaseURL         string   `env:"DATABASE_URL"`
	DatabaseReplicaURLs []string `env:"DATABASE_REPLICA_URLS" envSeparator:","`
	RunMigrations       bool     `env:"RUN_MIGRATIONS" envDefault:"true"`

	// Token epoch cache (Redis). Empty disables caching.
	RedisURL      string        `env:"REDIS_URL"`
	EpochCacheTTL time.Duration `env:"EPOCH_CACHE_TTL" envDefault:"5m"`

	// Tokens
	JWTSecret             string        `env:"JWT_SECRET"`
	JWTSecretSSMParameter string        `env:"JWT_SECRET_SSM_PARAMETER"`
	TokenTTL              time.Duration `env:"TOKEN_TTL" envDefault:"1h"`

	// Media
	MediaDriver     string `env:"MEDIA_DRIVER" envDefault:"s3"`
	MediaFolder     string `env:"MEDIA_FOLDER" envDefault:"blog-images"`
	S3Bucket        string `env:"S3_BUCKET"`
	AWSRegion       string `env:"AWS_REGION" envDefault:"us-east-1"`
	S3Endpoint      string `env:"S3_ENDPOINT"`
	S3AccessKey     string `env:"S3_ACCESS_KEY"`
	S3SecretKey     string `env:"S3_SECRET_KEY"`
	S3PublicBaseURL string `env:"S3_PUBLIC_BASE_URL"`
	UploadDir       string `env:"UPLOAD_DIR" envDefault:"uploads"`
	PublicBaseURL   string `env:"PUBLIC_BASE_URL" envDefault:"http://localhost:8080"`
	MaxUploadBytes  int64  `env:"MAX_UPLOAD_BYTES" envDefault:"10485760"`

	// HTTP
	AcceptedOrigins []string      `env:"ACCEPTED_ORIGINS" envSeparator:","`
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"180s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"180s"`
	IdleTimeout     time.Duration `env:"IDLE_TIMEOUT" envDefault:"180s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT"`
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// Address is the listen address for the HTTP server.
func (c *Config) Address() string {
	return fmt.Sprintf("0.0.0.0:%d", c.Port)
}

// Origins returns the trimmed, non-empty CORS origins.
func (c *Config) Origins() []string {
	origins := make([]string, 0, len(c.AcceptedOrigins))
	for _, origin := range c.AcceptedOrigins {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}

// Load parses environment variables and returns a Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// Validate checks cross-field requirements. It must run after ResolveSecrets.
func (c *Config) Validate() error {
	var problems []error

	if c.JWTSecret == "" {
		problems = append(problems, errors.New("JWT_SECRET (or JWT_SECRET_SSM_PARAMETER) is required"))
	}
	if c.TokenTTL <= 0 {
		problems = append(problems, errors.New("TOKEN_TTL must be positive"))
	}

	switch c.DBType {
	case DBTypePostgres:
		if c.DatabaseURL == "" {
			problems = append(problems, errors.New("DATABASE_URL is required when DB_TYPE=postgres"))
		}
	case DBTypeMemory:
	default:
		problems = append(problems, fmt.Errorf("unsupported DB_TYPE %q", c.DBType))
	}

	switch c.MediaDriver {
	case MediaDriverS3:
		if c.S3Bucket == "" {
			problems = append(problems, errors.New("S3_BUCKET is required when MEDIA_DRIVER=s3"))
		}
	case MediaDriverLocal:
		if c.UploadDir == "" {
			problems = append(problems, errors.New("UPLOAD_DIR is required when MEDIA_DRIVER=local"))
		}
	default:
		problems = append(problems, fmt.Errorf("unsupported MEDIA_DRIVER %q", c.MediaDriver))
	}

	if c.MaxUploadBytes <= 0 {
		problems = append(problems, errors.New("MAX_UPLOAD_BYTES must be positive"))
	}

	return errors.Join(problems...)
}
