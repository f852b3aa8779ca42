package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadViewConfigMissingFileYieldsDefaults(t *testing.T) {
	cfg, err := LoadViewConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	require.Equal(t, DefaultViewConfig(), cfg)

	cfg, err = LoadViewConfig("")
	require.NoError(t, err)
	require.Equal(t, DefaultViewConfig(), cfg)
}

func TestLoadViewConfigFillsPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "view.yaml")
	require.NoError(t, os.WriteFile(path, []byte("px_per_minute: 1.5\nsnap_minutes: 30\n"), 0o644))

	cfg, err := LoadViewConfig(path)
	require.NoError(t, err)

	require.InDelta(t, 1.5, cfg.PxPerMinute, 1e-9)
	require.Equal(t, 30, cfg.SnapMinutes)
	// Unspecified keys fall back to defaults.
	require.Equal(t, DefaultViewConfig().MinDurationMinutes, cfg.MinDurationMinutes)
	require.InDelta(t, DefaultViewConfig().DayColumnWidth, cfg.DayColumnWidth, 1e-9)
}

func TestLoadViewConfigRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "view.yaml")
	require.NoError(t, os.WriteFile(path, []byte("px_per_minute: [nope"), 0o644))

	_, err := LoadViewConfig(path)
	require.Error(t, err)
}
