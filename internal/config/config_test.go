package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "./opsdash.db", cfg.Database.Path)
	assert.Equal(t, "US", cfg.Dashboard.Marketplace)
	assert.Equal(t, 7, cfg.Dashboard.WindowDays)
	assert.Equal(t, 10, cfg.Dashboard.TopN)
	assert.Equal(t, "mock", cfg.Source.Mode)
	assert.Equal(t, int64(2024), cfg.Source.Seed)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
database:
  path: /tmp/dash.db
dashboard:
  window_days: 30
  top_n: 5
source:
  seed: 99
  asins: [B0AAA, B0BBB]
server:
  port: 9090
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/dash.db", cfg.Database.Path)
	assert.Equal(t, 30, cfg.Dashboard.WindowDays)
	assert.Equal(t, 5, cfg.Dashboard.TopN)
	assert.Equal(t, int64(99), cfg.Source.Seed)
	assert.Equal(t, []string{"B0AAA", "B0BBB"}, cfg.Source.ASINs)
	assert.Equal(t, 9090, cfg.Server.Port)
	// Untouched keys keep their defaults.
	assert.Equal(t, "US", cfg.Dashboard.Marketplace)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoadBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("database: ["), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("OPSDASH_DB_PATH", "/var/lib/opsdash/dash.db")
	t.Setenv("DASHBOARD_WINDOW_DAYS", "14")
	t.Setenv("DASHBOARD_TOP_N", "3")
	t.Setenv("AMAZON_ACCESS_KEY", "AKIA")
	t.Setenv("AMAZON_SECRET_KEY", "shh")
	t.Setenv("AMAZON_MARKETPLACE", "JP")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/opsdash/dash.db", cfg.Database.Path)
	assert.Equal(t, 14, cfg.Dashboard.WindowDays)
	assert.Equal(t, 3, cfg.Dashboard.TopN)
	assert.Equal(t, "AKIA", cfg.Source.Amazon.AccessKey)
	assert.Equal(t, "shh", cfg.Source.Amazon.SecretKey)
	assert.Equal(t, "JP", cfg.Source.Amazon.Marketplace)
}

func TestEnvOverrideIgnoresBadNumber(t *testing.T) {
	t.Setenv("DASHBOARD_WINDOW_DAYS", "soon")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Dashboard.WindowDays)
}
