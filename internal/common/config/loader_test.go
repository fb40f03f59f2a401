package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFromFileAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
app:
  name: "eda-copilot"
  environment: "test"
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, 0.3, cfg.Engine.ConfidenceThreshold)
	assert.Equal(t, 1800000, cfg.Engine.ContextTTL)
	assert.Equal(t, 300000, cfg.Executor.Timeout)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Empty(t, cfg.Registry.Path, "default registry is the embedded one")
	assert.False(t, cfg.Database.Postgres.Enabled())
	assert.False(t, cfg.Database.Redis.Enabled())
}

func TestLoadFromFileExplicitValues(t *testing.T) {
	path := writeConfig(t, `
server:
  address: ":9090"
engine:
  confidence_threshold: 0.5
  context_ttl: 60000
database:
  postgres:
    host: "db.internal"
    port: 5432
    database: "edacopilot"
    user: "copilot"
  redis:
    address: "cache.internal:6379"
executor:
  dry_run_only: true
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Address)
	assert.Equal(t, 0.5, cfg.Engine.ConfidenceThreshold)
	assert.True(t, cfg.Database.Postgres.Enabled())
	assert.True(t, cfg.Database.Redis.Enabled())
	assert.True(t, cfg.Executor.DryRunOnly)
	assert.Contains(t, cfg.Database.Postgres.GetDSN(), "host=db.internal")
	assert.Contains(t, cfg.Database.Postgres.GetDSN(), "sslmode=disable")
}

func TestLoadFromFileValidation(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{
			name: "threshold above one",
			yaml: `
engine:
  confidence_threshold: 1.5
`,
		},
		{
			name: "negative context ttl",
			yaml: `
engine:
  context_ttl: -1
`,
		},
		{
			name: "postgres host without user",
			yaml: `
database:
  postgres:
    host: "db.internal"
    database: "edacopilot"
`,
		},
		{
			name: "postgres host without database",
			yaml: `
database:
  postgres:
    host: "db.internal"
    user: "copilot"
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("DB_USER", "")
			t.Setenv("DB_PASSWORD", "")
			_, err := LoadFromFile(writeConfig(t, tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	_, err := LoadFromFile("/nonexistent/config.yaml")
	assert.Error(t, err)
}

func TestEnvPlaceholderExpansion(t *testing.T) {
	t.Setenv("TEST_REDIS_PASSWORD", "hunter2")

	path := writeConfig(t, `
database:
  redis:
    address: "cache.internal:6379"
    password: "${TEST_REDIS_PASSWORD}"
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hunter2", cfg.Database.Redis.Password)
}

func TestGetDuration(t *testing.T) {
	assert.Equal(t, 1500*time.Millisecond, GetDuration(1500))
	assert.Equal(t, time.Duration(0), GetDuration(0))
}
