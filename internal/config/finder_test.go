package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindLocalConfig_InSameDirectory(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".leanc.yml")
	require.NoError(t, os.WriteFile(path, []byte("timeout: 30\n"), 0o644))

	assert.Equal(t, path, FindLocalConfig(dir))
}

func TestFindLocalConfig_WalksUp(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, ".leanc.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o644))

	nested := filepath.Join(root, "a", "b", "c")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	assert.Equal(t, path, FindLocalConfig(nested))
}

func TestFindLocalConfig_PrefersYml(t *testing.T) {
	dir := t.TempDir()
	yml := filepath.Join(dir, ".leanc.yml")
	toml := filepath.Join(dir, ".leanc.toml")
	require.NoError(t, os.WriteFile(yml, []byte(""), 0o644))
	require.NoError(t, os.WriteFile(toml, []byte(""), 0o644))

	assert.Equal(t, yml, FindLocalConfig(dir))
}

func TestFindLocalConfig_NotFound(t *testing.T) {
	assert.Empty(t, FindLocalConfig(t.TempDir()))
}
