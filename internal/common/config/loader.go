// internal/common/config/loader.go
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads configs/config.yaml, merges configs/config.<APP_ENVIRONMENT>.yaml on top,
// then applies environment overrides (SERVER_ADDRESS, EVENTS_REDIS_ENABLED, ...).
func Load() (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	// 1. base config (optional, defaults cover a local run)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	// 2. environment overlay
	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig()

	return finish(v)
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return finish(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

func finish(v *viper.Viper) (*Config, error) {
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults registers every key so AutomaticEnv can override it during Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "activity-signup")
	v.SetDefault("app.version", "dev")
	v.SetDefault("app.environment", "development")

	v.SetDefault("server.address", ":8000")
	v.SetDefault("server.read_timeout", 5000)
	v.SetDefault("server.write_timeout", 10000)
	v.SetDefault("server.idle_timeout", 60000)
	v.SetDefault("server.shutdown_timeout", 30000)
	v.SetDefault("server.static_dir", "")

	v.SetDefault("registry.seed_path", "")

	v.SetDefault("database.postgres.host", "")
	v.SetDefault("database.postgres.port", 5432)
	v.SetDefault("database.postgres.database", "")
	v.SetDefault("database.postgres.user", "")
	v.SetDefault("database.postgres.password", "")
	v.SetDefault("database.postgres.sslmode", "disable")
	v.SetDefault("database.redis.address", "")
	v.SetDefault("database.redis.password", "")
	v.SetDefault("database.redis.db", 0)

	v.SetDefault("events.workers", 2)
	v.SetDefault("events.queue_size", 256)
	v.SetDefault("events.max_retries", 3)
	v.SetDefault("events.retry_backoff", 200)
	v.SetDefault("events.timeout", 3000)
	v.SetDefault("events.redis.enabled", false)
	v.SetDefault("events.redis.channel", "activities.participants")
	v.SetDefault("events.sns.enabled", false)
	v.SetDefault("events.sns.topic_arn", "")
	v.SetDefault("events.audit.enabled", false)
	v.SetDefault("events.audit.table", "audit_log")

	v.SetDefault("notifications.ses.enabled", false)
	v.SetDefault("notifications.ses.from_email", "")
	v.SetDefault("notifications.template_path", "")

	v.SetDefault("integrations.aws.region", "")
	v.SetDefault("integrations.aws.endpoint", "")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")

	v.SetDefault("observability.service_name", "activity-signup")
	v.SetDefault("observability.sample_ratio", 1.0)
	v.SetDefault("observability.otlp_endpoint", "")
}

// loadEnvFile loads the first .env found from the working directory upward.
func loadEnvFile() string {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
		"../../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return path
			}
		}
	}
	return ""
}

// Find project root by looking for go.mod
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

// expandEnvVars replaces ${VAR} placeholders in string values. Unset variables
// expand to "" so overrideEmptyConfig and validation still apply.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			expanded := os.ExpandEnv(strVal)
			if expanded != strVal {
				v.Set(key, expanded)
			}
		}
	}
}

// Direct override if secrets are still empty after expansion
func overrideEmptyConfig(cfg *Config) {
	if cfg.Database.Postgres.User == "" {
		if val := os.Getenv("DB_USER"); val != "" {
			cfg.Database.Postgres.User = val
		}
	}
	if cfg.Database.Postgres.Password == "" {
		if val := os.Getenv("DB_PASSWORD"); val != "" {
			cfg.Database.Postgres.Password = val
		}
	}
	if cfg.Database.Redis.Password == "" {
		if val := os.Getenv("REDIS_PASSWORD"); val != "" {
			cfg.Database.Redis.Password = val
		}
	}
	if cfg.Integrations.AWS.Region == "" {
		if val := os.Getenv("AWS_REGION"); val != "" {
			cfg.Integrations.AWS.Region = val
		}
	}
}

// applyDefaults fills zero values that slipped through an explicit 0 in a config file.
func applyDefaults(cfg *Config) {
	if cfg.Server.Address == "" {
		cfg.Server.Address = ":8000"
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 30000
	}

	if cfg.Database.Postgres.MaxConnections == 0 {
		cfg.Database.Postgres.MaxConnections = 10
	}
	if cfg.Database.Postgres.MaxIdle == 0 {
		cfg.Database.Postgres.MaxIdle = 2
	}
	if cfg.Database.Postgres.SSLMode == "" {
		cfg.Database.Postgres.SSLMode = "disable"
	}

	if cfg.Events.Workers == 0 {
		cfg.Events.Workers = 2
	}
	if cfg.Events.QueueSize == 0 {
		cfg.Events.QueueSize = 256
	}
	if cfg.Events.Timeout == 0 {
		cfg.Events.Timeout = 3000
	}
	if cfg.Events.Redis.Channel == "" {
		cfg.Events.Redis.Channel = "activities.participants"
	}
	if cfg.Events.Audit.Table == "" {
		cfg.Events.Audit.Table = "audit_log"
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}

	if cfg.Observability.ServiceName == "" {
		cfg.Observability.ServiceName = cfg.App.Name
	}
}

// validateConfig validates critical configuration fields
func validateConfig(cfg *Config) error {
	if cfg.Events.Workers < 0 || cfg.Events.QueueSize < 0 || cfg.Events.MaxRetries < 0 {
		return fmt.Errorf("events.workers, events.queue_size and events.max_retries must not be negative")
	}

	if cfg.Events.Redis.Enabled && cfg.Database.Redis.Address == "" {
		return fmt.Errorf("database.redis.address is required when events.redis.enabled")
	}

	if cfg.Events.Audit.Enabled {
		if cfg.Database.Postgres.Host == "" {
			return fmt.Errorf("database.postgres.host is required when events.audit.enabled")
		}
		if cfg.Database.Postgres.Database == "" {
			return fmt.Errorf("database.postgres.database is required when events.audit.enabled")
		}
		if cfg.Database.Postgres.User == "" {
			return fmt.Errorf("database.postgres.user is required when events.audit.enabled")
		}
	}

	if cfg.Events.SNS.Enabled && cfg.Events.SNS.TopicARN == "" {
		return fmt.Errorf("events.sns.topic_arn is required when events.sns.enabled")
	}

	if cfg.Notifications.SES.Enabled && cfg.Notifications.SES.FromEmail == "" {
		return fmt.Errorf("notifications.ses.from_email is required when notifications.ses.enabled")
	}

	if cfg.NeedsAWS() && cfg.Integrations.AWS.Region == "" {
		return fmt.Errorf("integrations.aws.region is required when an AWS integration is enabled")
	}

	if cfg.Observability.SampleRatio < 0 || cfg.Observability.SampleRatio > 1 {
		return fmt.Errorf("observability.sample_ratio must be within [0, 1]")
	}

	return nil
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}
