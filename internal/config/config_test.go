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
	path := filepath.Join(t.TempDir(), DefaultFile)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFullConfig(t *testing.T) {
	path := writeConfig(t, `
source: ./src
output: ./public
ignore:
  - "*.bak"
  - "secrets"
attrs:
  assume_content_negotiation: true
state_db: ./builds.db
serve:
  addr: ":9999"
  sync_every: 2s
  rebuild_every: 1m
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "./src", cfg.Source)
	assert.Equal(t, "./public", cfg.Output)
	assert.Equal(t, []string{"*.bak", "secrets"}, cfg.Ignore)
	assert.Equal(t, true, cfg.Attrs["assume_content_negotiation"])
	assert.Equal(t, "./builds.db", cfg.StateDB)
	assert.Equal(t, ":9999", cfg.Serve.Addr)
	assert.Equal(t, 2*time.Second, cfg.Serve.SyncPeriod())
	assert.Equal(t, time.Minute, cfg.Serve.RebuildPeriod())
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "source: ./src\n"))
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Serve.Addr)
	assert.Equal(t, time.Second, cfg.Serve.SyncPeriod())
	assert.Zero(t, cfg.Serve.RebuildPeriod())
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	_, err := Load(writeConfig(t, "source: ./src\nsurprise: true\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "surprise")
}

func TestLoadRejectsMalformedDuration(t *testing.T) {
	_, err := Load(writeConfig(t, "source: ./src\nserve:\n  sync_every: often\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sync_every")
}

func TestLoadRequiresSource(t *testing.T) {
	_, err := Load(writeConfig(t, "ignore: []\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "source is required")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
