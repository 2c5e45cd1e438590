package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadKDL_MissingFileReturnsDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := LoadKDL(dir)
	require.NoError(t, err)
	assert.Equal(t, 500, cfg.Watch.DebounceMs)
	assert.True(t, cfg.Index.RespectGitignore)
}

func TestLoadKDL_ParsesOverrides(t *testing.T) {
	dir := t.TempDir()
	content := `
project {
    name "widgets"
}
watch {
    enabled true
    debounce_ms 750
}
index {
    exclude_dir "generated"
}
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".lci.kdl"), []byte(content), 0o644))

	cfg, err := LoadKDL(dir)
	require.NoError(t, err)
	assert.Equal(t, "widgets", cfg.Project.Name)
	assert.True(t, cfg.Watch.Enabled)
	assert.Equal(t, 750, cfg.Watch.DebounceMs)
	assert.Contains(t, cfg.Index.ExcludeDirs, "generated")
}

func TestDetectBuildArtifactDirs_Rust(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Cargo.toml"), []byte("[package]\nname=\"x\"\n"), 0o644))

	dirs := DetectBuildArtifactDirs(dir)
	assert.Contains(t, dirs, "target")
}
