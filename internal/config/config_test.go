package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	_, cfg, err := New("")
	require.NoError(t, err)
	assert.Equal(t, Default().Database.Host, cfg.Database.Host)
	assert.Equal(t, "pdf_datasets", cfg.Database.Name)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.API.AllowedOrigins)
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("CENSUS_DATABASE_HOST", "db.internal")
	t.Setenv("CENSUS_DATABASE_PORT", "6543")
	t.Setenv("CENSUS_LOG_LEVEL", "debug")
	t.Setenv("DB_PASSWORD", "fallback")

	_, cfg, err := New("")
	require.NoError(t, err)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 6543, cfg.Database.Port)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "fallback", cfg.Database.Password)

	t.Setenv("CENSUS_DATABASE_PASSWORD", "primary")
	_, cfg, err = New("")
	require.NoError(t, err)
	assert.Equal(t, "primary", cfg.Database.Password)
}

func TestFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "census.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
database:
  driver: sqlite
  path: /var/lib/census.db
api:
  rate_limit: 0
ingest:
  stop_at_first: true
`), 0o644))

	_, cfg, err := New(path)
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "/var/lib/census.db", cfg.Database.Path)
	assert.Zero(t, cfg.API.RateLimit)
	assert.True(t, cfg.Ingest.StopAtFirst)
	assert.Equal(t, ":8000", cfg.API.Addr)

	_, _, err = New(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	v.Set("database.driver", "oracle")
	v.Set("api.burst", 0)
	_, err := Load(v)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database.driver")
	assert.Contains(t, err.Error(), "api.burst")
}
