// internal/common/config/config.go
package config

import (
	"fmt"
	"time"
)

// Config is the main application configuration struct.
type Config struct {
	App           AppConfig           `mapstructure:"app"`
	Server        ServerConfig        `mapstructure:"server"`
	Registry      RegistryConfig      `mapstructure:"registry"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Events        EventsConfig        `mapstructure:"events"`
	Notifications NotificationConfig  `mapstructure:"notifications"`
	Integrations  IntegrationConfig   `mapstructure:"integrations"`
	Logging       LoggingConfig       `mapstructure:"logging"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Address         string `mapstructure:"address"`
	ReadTimeout     int    `mapstructure:"read_timeout"`     // milliseconds
	WriteTimeout    int    `mapstructure:"write_timeout"`    // milliseconds
	IdleTimeout     int    `mapstructure:"idle_timeout"`     // milliseconds
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"` // milliseconds
	StaticDir       string `mapstructure:"static_dir"`
}

// RegistryConfig points at the seed document. Empty SeedPath uses the built-in seed.
type RegistryConfig struct {
	SeedPath string `mapstructure:"seed_path"`
}

type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// EventsConfig controls the participation event dispatcher and its sinks.
type EventsConfig struct {
	Workers      int `mapstructure:"workers"`
	QueueSize    int `mapstructure:"queue_size"` // per worker
	MaxRetries   int `mapstructure:"max_retries"`
	RetryBackoff int `mapstructure:"retry_backoff"` // milliseconds
	Timeout      int `mapstructure:"timeout"`       // milliseconds, per delivery attempt

	Redis struct {
		Enabled bool   `mapstructure:"enabled"`
		Channel string `mapstructure:"channel"`
	} `mapstructure:"redis"`

	SNS struct {
		Enabled  bool   `mapstructure:"enabled"`
		TopicARN string `mapstructure:"topic_arn"`
	} `mapstructure:"sns"`

	Audit struct {
		Enabled bool   `mapstructure:"enabled"`
		Table   string `mapstructure:"table"`
	} `mapstructure:"audit"`
}

// NotificationConfig holds the signup confirmation email settings.
type NotificationConfig struct {
	SES struct {
		Enabled   bool   `mapstructure:"enabled"`
		FromEmail string `mapstructure:"from_email"`
	} `mapstructure:"ses"`
	TemplatePath string `mapstructure:"template_path"`
}

// IntegrationConfig holds settings for external services.
type IntegrationConfig struct {
	AWS struct {
		Region   string `mapstructure:"region"`
		Endpoint string `mapstructure:"endpoint"` // optional override, e.g. localstack
	} `mapstructure:"aws"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

type ObservabilityConfig struct {
	ServiceName  string  `mapstructure:"service_name"`
	SampleRatio  float64 `mapstructure:"sample_ratio"`
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
}

// Duration helpers

func (s ServerConfig) ReadTimeoutDuration() time.Duration     { return GetDuration(s.ReadTimeout) }
func (s ServerConfig) WriteTimeoutDuration() time.Duration    { return GetDuration(s.WriteTimeout) }
func (s ServerConfig) IdleTimeoutDuration() time.Duration     { return GetDuration(s.IdleTimeout) }
func (s ServerConfig) ShutdownTimeoutDuration() time.Duration { return GetDuration(s.ShutdownTimeout) }

// NeedsAWS reports whether any enabled component talks to AWS.
func (c *Config) NeedsAWS() bool {
	return c.Events.SNS.Enabled || c.Notifications.SES.Enabled
}
