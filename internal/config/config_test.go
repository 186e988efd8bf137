package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxviazov/cricket-stats-service/internal/config"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func clearSecrets(t *testing.T) {
	t.Helper()
	for _, k := range []string{"APP_POSTGRES_USER", "APP_POSTGRES_PASSWORD", "APP_POSTGRES_DB", "APP_POSTGRES_DBNAME", "APP_POSTGRES_HOST"} {
		t.Setenv(k, "")
	}
}

func TestLoad_FromYAMLAndEnv(t *testing.T) {
	path := writeTempConfig(t, `
app:
  name: cricket-stats-service
  env: test
  port: 18080

logger:
  level: info
  format: json

postgres:
  host: 127.0.0.1
  port: 5432
  sslmode: disable
  max_conns: 5

ingest:
  data_dir: /srv/ipl_json

aggregation:
  compute_highest_score: true
`)
	clearSecrets(t)
	t.Setenv("APP_POSTGRES_USER", "testuser")
	t.Setenv("APP_POSTGRES_PASSWORD", "testpass")
	t.Setenv("APP_POSTGRES_DB", "testdb")
	t.Setenv("APP_POSTGRES_HOST", "127.0.0.1")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, 18080, cfg.App.Port)
	assert.Equal(t, "testuser", cfg.Postgres.User)
	assert.Equal(t, "testpass", cfg.Postgres.Password)
	assert.Equal(t, "testdb", cfg.Postgres.DBName)
	assert.Equal(t, "127.0.0.1", cfg.Postgres.Host)
	assert.EqualValues(t, 5, cfg.Postgres.MaxConns)
	assert.Equal(t, "/srv/ipl_json", cfg.Ingest.DataDir)
	assert.Equal(t, ".json", cfg.Ingest.Extension)

	// unset flags keep their defaults, set ones override
	assert.True(t, cfg.Aggregation.CreditAllWicketsToBowler)
	assert.True(t, cfg.Aggregation.LostIncludesNoDecision)
	assert.True(t, cfg.Aggregation.ComputeHighestScore)

	assert.True(t, cfg.HTTP.RateLimitEnabled)
	assert.Equal(t, 60, cfg.HTTP.RateLimitRequests)
}

func TestLoad_MissingSecretsFails(t *testing.T) {
	path := writeTempConfig(t, `
app:
  port: 18080
postgres:
  host: localhost
`)
	clearSecrets(t)

	_, err := config.Load(path)
	assert.Error(t, err)
}

func TestLoad_BadSSLMode(t *testing.T) {
	path := writeTempConfig(t, `
postgres:
  sslmode: sometimes
`)
	clearSecrets(t)
	t.Setenv("APP_POSTGRES_USER", "u")
	t.Setenv("APP_POSTGRES_PASSWORD", "p")
	t.Setenv("APP_POSTGRES_DB", "d")
	t.Setenv("APP_POSTGRES_HOST", "localhost")

	_, err := config.Load(path)
	assert.ErrorContains(t, err, "validation")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
