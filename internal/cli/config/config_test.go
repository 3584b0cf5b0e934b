package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadCLIConfig(t *testing.T) {
	t.Run("missing file yields zero config", func(t *testing.T) {
		cfg, err := loadCLIConfig(
			filepath.Join(t.TempDir(), "does-not-exist"),
		)
		require.NoError(t, err)
		require.Equal(t, CLIConfig{}, cfg)
	})

	t.Run("round trip", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config")
		saved := CLIConfig{
			DefaultCluster: "trantor",
			DefaultRegion:  "us-west-2",
		}
		require.NoError(t, saveCLIConfig(saved, path))

		loaded, err := loadCLIConfig(path)
		require.NoError(t, err)
		require.Equal(t, saved, loaded)
	})

	t.Run("malformed file is an error", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config")
		require.NoError(t, os.WriteFile(path, []byte("{oops"), 0600))

		_, err := loadCLIConfig(path)
		require.ErrorContains(t, err, "error parsing configuration file")
	})
}

func TestDeleteCLIConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config")
	require.NoError(t, saveCLIConfig(CLIConfig{DefaultRegion: "us-east-1"}, path))
	require.NoError(t, deleteCLIConfig(path))
	_, err := os.Stat(path)
	require.True(t, os.IsNotExist(err))

	// Deleting a file that is already gone is fine.
	require.NoError(t, deleteCLIConfig(path))
}
