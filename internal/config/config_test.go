package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "0.0.0.0", cfg.Server.Host)
	require.Equal(t, 8080, cfg.Server.Port)
	require.Equal(t, "sqlite", cfg.Store.Backend)
	require.Equal(t, "scribe.db", cfg.Store.SQLite.Path)
	require.Equal(t, "http", cfg.MCP.Mode)
	require.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_FileAndEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9090
store:
  backend: sqlite
  sqlite:
    path: /var/lib/scribe/transcripts.db
log:
  level: debug
`), 0o644))

	t.Setenv("SCRIBE_CONFIG_PATH", path)
	t.Setenv("SCRIBE_SERVER_PORT", "7070")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 7070, cfg.Server.Port, "environment wins over file")
	require.Equal(t, "/var/lib/scribe/transcripts.db", cfg.Store.SQLite.Path)
	require.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_InsightsBackendRequiresKey(t *testing.T) {
	t.Setenv("SCRIBE_STORE_BACKEND", "insights")

	_, err := Load()
	require.Error(t, err)

	t.Setenv("SCRIBE_INSIGHTS_INSTRUMENTATION_KEY", "ikey-123")
	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "insights", cfg.Store.Backend)
	require.Equal(t, "ikey-123", cfg.Store.Insights.InstrumentationKey)
}

func TestLoad_RejectsUnknownBackend(t *testing.T) {
	t.Setenv("SCRIBE_STORE_BACKEND", "cassandra")

	_, err := Load()
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown store backend")
}
