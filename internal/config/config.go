// Package config loads runtime settings from the environment (optionally seeded
// from a .env file).
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	LogLevel string         `envconfig:"LOG_LEVEL" default:"info"`
	HTTP     HTTPConfig     `envconfig:"HTTP"`
	Database DatabaseConfig `envconfig:"DB"`
	Auth     AuthConfig     `envconfig:"AUTH"`
	Media    MediaConfig    `envconfig:"MEDIA"`
	Events   EventsConfig   `envconfig:"EVENTS"`
	Tracing  TracingConfig  `envconfig:"TRACING"`
}

type HTTPConfig struct {
	Addr         string        `envconfig:"ADDR" default:":8080"`
	ReadTimeout  time.Duration `envconfig:"READ_TIMEOUT" default:"10s"`
	WriteTimeout time.Duration `envconfig:"WRITE_TIMEOUT" default:"10s"`
	// WebDir holds the built presentation layer served at /.
	WebDir string `envconfig:"WEB_DIR" default:"web"`
}

type DatabaseConfig struct {
	Driver  string        `envconfig:"DRIVER" default:"mongo"` // mongo | memory
	URI     string        `envconfig:"URI" default:"mongodb://localhost:27017"`
	Name    string        `envconfig:"NAME" default:"brightlux"`
	Timeout time.Duration `envconfig:"TIMEOUT" default:"5s"`
}

type AuthConfig struct {
	JWTSecret  string        `envconfig:"JWT_SECRET"`
	SessionTTL time.Duration `envconfig:"SESSION_TTL" default:"24h"`
	CookieName string        `envconfig:"COOKIE_NAME" default:"session"`
	// AdminEmail is registered with the admin role instead of the default user role.
	AdminEmail string `envconfig:"ADMIN_EMAIL"`
}

type MediaConfig struct {
	Backend     string `envconfig:"BACKEND" default:"disk"` // s3 | disk
	S3Bucket    string `envconfig:"S3_BUCKET"`
	S3Region    string `envconfig:"S3_REGION" default:"us-east-1"`
	S3Endpoint  string `envconfig:"S3_ENDPOINT"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY"`
	S3SecretKey string `envconfig:"S3_SECRET_KEY"`
	PublicURL   string `envconfig:"PUBLIC_URL" default:"http://localhost:8080/uploads"`
	DiskDir     string `envconfig:"DISK_DIR" default:"uploads"`
	MaxUploadMB int64  `envconfig:"MAX_UPLOAD_MB" default:"10"`
}

type EventsConfig struct {
	AMQPURL  string `envconfig:"AMQP_URL"`
	Exchange string `envconfig:"EXCHANGE" default:"storefront.events"`
}

type TracingConfig struct {
	Endpoint    string `envconfig:"OTLP_ENDPOINT"`
	ServiceName string `envconfig:"SERVICE_NAME" default:"storefront-backend"`
	Environment string `envconfig:"ENVIRONMENT" default:"dev"`
}

// Load reads envFile (if present) into the process environment and then
// builds the Config from it. A missing env file is not an error.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		// Existing variables win over the file.
		_ = godotenv.Load(envFile)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks settings that have no safe default.
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return errors.New("AUTH_JWT_SECRET is not set")
	}
	switch c.Database.Driver {
	case "mongo", "memory":
	default:
		return fmt.Errorf("unknown DB_DRIVER %q", c.Database.Driver)
	}
	switch c.Media.Backend {
	case "disk":
	case "s3":
		if c.Media.S3Bucket == "" {
			return errors.New("MEDIA_S3_BUCKET is required for the s3 media backend")
		}
	default:
		return fmt.Errorf("unknown MEDIA_BACKEND %q", c.Media.Backend)
	}
	if c.Media.MaxUploadMB <= 0 {
		return errors.New("MEDIA_MAX_UPLOAD_MB must be positive")
	}
	return nil
}

// MaxUploadBytes is the multipart body limit.
func (m MediaConfig) MaxUploadBytes() int64 {
	return m.MaxUploadMB << 20
}

// String returns a representation with secrets masked.
func (c *Config) String() string {
	return fmt.Sprintf("Config{HTTP: %s, DB: %s/%s, Media: %s, Events: %t, Tracing: %t, Auth: *** (masked) ***}",
		c.HTTP.Addr, c.Database.Driver, c.Database.Name, c.Media.Backend,
		c.Events.AMQPURL != "", c.Tracing.Endpoint != "")
}
