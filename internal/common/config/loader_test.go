// internal/common/config/loader_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadFromFile_Defaults(t *testing.T) {
	path := writeConfig(t, "app:\n  name: activity-signup\n")

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, ":8000", cfg.Server.Address)
	assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeoutDuration())
	assert.Equal(t, 2, cfg.Events.Workers)
	assert.Equal(t, 256, cfg.Events.QueueSize)
	assert.Equal(t, 3, cfg.Events.MaxRetries)
	assert.Equal(t, "activities.participants", cfg.Events.Redis.Channel)
	assert.Equal(t, "audit_log", cfg.Events.Audit.Table)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "activity-signup", cfg.Observability.ServiceName)
	assert.Equal(t, 1.0, cfg.Observability.SampleRatio)
	assert.False(t, cfg.NeedsAWS())
}

func TestLoadFromFile_FileValues(t *testing.T) {
	path := writeConfig(t, `
server:
  address: ":9090"
  static_dir: ./static
registry:
  seed_path: ./configs/activities.json
events:
  workers: 4
  redis:
    enabled: true
    channel: signups
database:
  redis:
    address: localhost:6379
logging:
  level: debug
  format: console
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Address)
	assert.Equal(t, "./static", cfg.Server.StaticDir)
	assert.Equal(t, "./configs/activities.json", cfg.Registry.SeedPath)
	assert.Equal(t, 4, cfg.Events.Workers)
	assert.True(t, cfg.Events.Redis.Enabled)
	assert.Equal(t, "signups", cfg.Events.Redis.Channel)
	assert.Equal(t, "localhost:6379", cfg.Database.Redis.Address)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
}

func TestLoadFromFile_EnvOverride(t *testing.T) {
	t.Setenv("SERVER_ADDRESS", ":7070")
	t.Setenv("LOGGING_LEVEL", "warn")
	path := writeConfig(t, "server:\n  address: \":9090\"\n")

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, ":7070", cfg.Server.Address)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoadFromFile_ExpandsPlaceholders(t *testing.T) {
	t.Setenv("TEST_SES_SENDER", "noreply@mergington.edu")
	path := writeConfig(t, `
notifications:
  ses:
    enabled: true
    from_email: ${TEST_SES_SENDER}
integrations:
  aws:
    region: us-east-1
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "noreply@mergington.edu", cfg.Notifications.SES.FromEmail)
	assert.True(t, cfg.NeedsAWS())
}

func TestLoadFromFile_UnsetPlaceholderFallsBackToEnv(t *testing.T) {
	t.Setenv("DB_USER", "registrar")
	path := writeConfig(t, `
database:
  postgres:
    user: ${ACTIVITY_SIGNUP_UNSET_USER}
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "registrar", cfg.Database.Postgres.User)
}

func TestLoadFromFile_MissingFile(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{
			name:    "redis sink without address",
			body:    "events:\n  redis:\n    enabled: true\n",
			wantErr: "database.redis.address",
		},
		{
			name:    "audit sink without postgres",
			body:    "events:\n  audit:\n    enabled: true\n",
			wantErr: "database.postgres.host",
		},
		{
			name:    "sns sink without topic",
			body:    "events:\n  sns:\n    enabled: true\nintegrations:\n  aws:\n    region: us-east-1\n",
			wantErr: "events.sns.topic_arn",
		},
		{
			name:    "ses without sender",
			body:    "notifications:\n  ses:\n    enabled: true\nintegrations:\n  aws:\n    region: us-east-1\n",
			wantErr: "notifications.ses.from_email",
		},
		{
			name:    "aws without region",
			body:    "events:\n  sns:\n    enabled: true\n    topic_arn: arn:aws:sns:us-east-1:000000000000:signups\n",
			wantErr: "integrations.aws.region",
		},
		{
			name:    "sample ratio out of range",
			body:    "observability:\n  sample_ratio: 1.5\n",
			wantErr: "sample_ratio",
		},
	}

	t.Setenv("AWS_REGION", "")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromFile(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestPostgresConfig_GetDSN(t *testing.T) {
	p := PostgresConfig{Host: "db", Port: 5432, User: "app", Password: "secret", Database: "signup", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=app password=secret dbname=signup sslmode=disable", p.GetDSN())
}

func TestGetDuration(t *testing.T) {
	assert.Equal(t, 1500*time.Millisecond, GetDuration(1500))
}
