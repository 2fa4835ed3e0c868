package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "xappli", "config.toml")
	require.NoError(t, WriteDefault(path, false), "WriteDefault failed")

	content, err := os.ReadFile(path)
	require.NoError(t, err, "failed to read written file")

	for _, section := range []string{"[log]", "[catalog]", "[extract]", "[convert]", "[history]"} {
		assert.Contains(t, string(content), section)
	}
	assert.Contains(t, string(content), "${XAPPLI_CATALOG:-}")
}

func TestWriteDefault_CreatesDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deep", "config.toml")
	require.NoError(t, WriteDefault(path, false), "WriteDefault failed")
	assert.FileExists(t, path)
}

func TestWriteDefault_Existing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("# mine\n"), 0644))

	err := WriteDefault(path, false)
	assert.ErrorIs(t, err, ErrExists)
	got, _ := os.ReadFile(path)
	assert.Equal(t, "# mine\n", string(got), "existing file untouched")

	require.NoError(t, WriteDefault(path, true))
	got, _ = os.ReadFile(path)
	assert.Equal(t, defaultConfig, string(got))
}

func TestWriteDefault_ParsesToDefaults(t *testing.T) {
	t.Setenv("XAPPLI_CATALOG", "")
	t.Setenv("XAPPLI_OUTPUT", "")
	t.Setenv("XDG_DATA_HOME", "")

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, WriteDefault(path, false))

	got, err := LoadWithoutValidation(path)
	require.NoError(t, err)
	assert.Equal(t, Default(), got, "the shipped template matches the built-in defaults")
}
