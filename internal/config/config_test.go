package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.Server.GetServerAddr())
	assert.Equal(t, "data/fields", cfg.Local.Path)
	assert.Empty(t, cfg.Remote.URI)
	assert.Equal(t, 10*time.Second, cfg.Sync.Timeout)
}

func TestLoadConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"server": {"host": "127.0.0.1", "port": 9090},
		"remote": {"uri": "mongodb://localhost:27017", "database": "fields_test"}
	}`), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9090", cfg.Server.GetServerAddr())
	assert.Equal(t, "mongodb://localhost:27017", cfg.Remote.URI)
	assert.Equal(t, "fields_test", cfg.Remote.Database)
	// Untouched sections keep their defaults
	assert.Equal(t, "data/fields", cfg.Local.Path)
}

func TestLoadConfigInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "3000")
	t.Setenv("MONGODB_URI", "mongodb://remote:27017")
	t.Setenv("RESYNC_SCHEDULE", "0 3 * * *")

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, "mongodb://remote:27017", cfg.Remote.URI)
	assert.Equal(t, "0 3 * * *", cfg.Sync.ResyncSchedule)
}
