package transit_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	transit "cybus.dev/transit"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := transit.LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "data", cfg.DataDir)
	assert.Equal(t, "sqlite", cfg.Storage.Driver)
	assert.Equal(t, 60, cfg.Fetch.TimeoutSeconds)
	assert.Equal(t, 10, cfg.Live.TimeoutSeconds)
}

func TestLoadConfigOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
data_dir: /var/lib/transit
storage:
  driver: postgres
  dsn: postgres://localhost/transit
fetch:
  workers: 5
  cities:
    limassol: https://example.com/limassol.zip
`), 0644))

	cfg, err := transit.LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/transit", cfg.DataDir)
	assert.Equal(t, "postgres", cfg.Storage.Driver)
	assert.Equal(t, 5, cfg.Fetch.Workers)
	assert.Len(t, cfg.Fetch.Cities, 1)

	// Untouched sections keep their defaults.
	assert.Equal(t, 60, cfg.Fetch.TimeoutSeconds)
}

func TestLoadConfigRejectsBadDriver(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("storage:\n  driver: oracle\n"), 0644))

	_, err := transit.LoadConfig(path)
	assert.Error(t, err)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := transit.LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
