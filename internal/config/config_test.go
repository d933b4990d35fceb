package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ENVIRONMENT", "")
	t.Setenv("TABLE_PREFIX", "")
	t.Setenv("TREE_MAX_DEPTH", "")
	t.Setenv("DEBUG", "")

	cfg := Load()

	assert.Equal(t, "dev", cfg.Environment)
	assert.Equal(t, "dev_", cfg.TablePrefix)
	assert.Equal(t, DefaultTreeMaxDepth, cfg.TreeMaxDepth)
	assert.True(t, cfg.Debug)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_Production(t *testing.T) {
	t.Setenv("ENVIRONMENT", "prod")
	t.Setenv("TABLE_PREFIX", "")
	t.Setenv("DEBUG", "")

	cfg := Load()

	assert.Equal(t, "prod_", cfg.TablePrefix)
	assert.False(t, cfg.Debug)
	assert.True(t, cfg.IsProduction())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("TABLE_PREFIX", "custom_")
	t.Setenv("TREE_MAX_DEPTH", "3")
	t.Setenv("LOG_MAX_FILES", "not-a-number")

	cfg := Load()

	assert.Equal(t, "custom_", cfg.TablePrefix)
	assert.Equal(t, 3, cfg.TreeMaxDepth)
	assert.Equal(t, 10, cfg.LogMaxFiles)
}

func TestSetupLogFile_RemovesOldest(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"sitetree-2001.log", "sitetree-2002.log", "sitetree-2003.log"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0644))
	}

	f, err := SetupLogFile(dir, 2)
	require.NoError(t, err)
	defer f.Close()

	files, err := filepath.Glob(filepath.Join(dir, "sitetree-*.log"))
	require.NoError(t, err)
	assert.Len(t, files, 2)
	assert.NotContains(t, files, filepath.Join(dir, "sitetree-2001.log"))
	assert.NotContains(t, files, filepath.Join(dir, "sitetree-2002.log"))
}
