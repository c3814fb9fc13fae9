package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSaveLastLibrary_NewFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, SaveLastLibrary(path, "papers"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "last_library: papers\n", string(data))
}

func TestSaveLastLibrary_PreservesComments(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, WriteDefaultConfig(path))

	require.NoError(t, SaveLastLibrary(path, "classics"))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)
	require.Contains(t, content, "# folio configuration")
	require.Contains(t, content, "group_by: letter")
	require.Contains(t, content, "last_library: classics")
}

func TestSaveLastLibrary_ReplacesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("auto_refresh: false\nlast_library: old\n"), 0o600))

	require.NoError(t, SaveLastLibrary(path, "new"))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "auto_refresh: false\nlast_library: new\n", string(data))
}

func TestSaveLastLibrary_EmptyRemovesKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("auto_refresh: false\nlast_library: old\n"), 0o600))

	require.NoError(t, SaveLastLibrary(path, ""))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "auto_refresh: false\n", string(data))
}

func TestSaveLastLibrary_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("a: [unclosed\n"), 0o600))

	err := SaveLastLibrary(path, "x")
	require.Error(t, err)
	require.Contains(t, err.Error(), "parsing config")
}
