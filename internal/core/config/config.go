package config

import (
	"time"

	redisclient "github.com/tonpay/events/internal/infra/redis"
	"github.com/tonpay/events/internal/infra/storage/postgres"
)

// AppConfig represents the top-level configuration.
type AppConfig struct {
	Server   ServerConfig       `yaml:"server"`
	Database postgres.Config    `yaml:"database"`
	Redis    redisclient.Config `yaml:"redis"`
	Logging  LoggingConfig      `yaml:"logging"`
	Notifier NotifierConfig     `yaml:"notifier"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// NotifierConfig holds callback notifier settings.
type NotifierConfig struct {
	Interval time.Duration   `yaml:"interval"`
	LeaseTTL time.Duration   `yaml:"lease_ttl"`
	Services []ServiceConfig `yaml:"services"`
}

// ServiceConfig holds one tenant's callback endpoint.
type ServiceConfig struct {
	ID          string `yaml:"id"`
	CallbackURL string `yaml:"callback_url"`
}
