package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "default", cfg.DefaultCollection)
	assert.Equal(t, "interactive", cfg.DefaultStrategy)
	assert.Equal(t, 10, cfg.SnapshotKeep)
	assert.Equal(t, "500MB", cfg.Limits.MaxBundleSize)
	assert.False(t, cfg.Telemetry.Enabled)
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
collections_root: /srv/skillmeat/collections
snapshots_root: /srv/skillmeat/snapshots
default_strategy: skip
snapshot_keep: 3
limits:
  max_bundle_size: 1GB
  max_file_size: 50MB
  max_files: 500
  max_compression_ratio: 50
`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/srv/skillmeat/collections", cfg.CollectionsRoot)
	assert.Equal(t, "skip", cfg.DefaultStrategy)
	assert.Equal(t, 3, cfg.SnapshotKeep)
	assert.Equal(t, "1GB", cfg.Limits.MaxBundleSize)
	assert.Equal(t, 500, cfg.Limits.MaxFiles)
	assert.Equal(t, "default", cfg.DefaultCollection, "unset fields keep defaults")
}

func TestLoad_ExpandsEnvVars(t *testing.T) {
	t.Setenv("SKILLMEAT_ROOT", "/data/sm")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"collections_root: ${SKILLMEAT_ROOT}/collections\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/data/sm/collections", cfg.CollectionsRoot)
}

func TestLoad_InvalidStrategy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("default_strategy: overwrite\n"), 0644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid default strategy")
}

func TestLoad_InvalidSize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
limits:
  max_bundle_size: enormous
`), 0644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid size")
}

func TestLoad_TelemetryNeedsASink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("telemetry:\n  enabled: true\n"), 0644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "telemetry")
}

func TestParseSize(t *testing.T) {
	size, err := ParseSize("500MB")
	require.NoError(t, err)
	assert.Positive(t, int64(size))

	_, err = ParseSize("lots")
	assert.Error(t, err)
}
