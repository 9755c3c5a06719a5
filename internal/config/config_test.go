package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 1, cfg.Version)
	assert.Equal(t, DefaultMaxPerFile, cfg.Diagnostics.MaxPerFile)
	assert.True(t, cfg.Resolution.PromptEnabled)
	assert.Contains(t, cfg.Resolution.Exclude, "**/node_modules/**")
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), ".sarifnav.kdl"))
	require.NoError(t, err)
	assert.Equal(t, DefaultMaxPerFile, cfg.Diagnostics.MaxPerFile)
}

func TestParseKDL_FullConfig(t *testing.T) {
	content := `
diagnostics {
    max_per_file 100
}
resolution {
    prompt false
    include "**/*.c" "**/*.h"
    exclude "**/build/**"
}
`
	cfg, err := parseKDL(content)
	require.NoError(t, err)

	assert.Equal(t, 100, cfg.Diagnostics.MaxPerFile)
	assert.False(t, cfg.Resolution.PromptEnabled)
	assert.Equal(t, []string{"**/*.c", "**/*.h"}, cfg.Resolution.Include)
	assert.Equal(t, []string{"**/build/**"}, cfg.Resolution.Exclude)
}

func TestParseKDL_PartialConfigKeepsDefaults(t *testing.T) {
	cfg, err := parseKDL(`diagnostics { max_per_file 50 }`)
	require.NoError(t, err)

	assert.Equal(t, 50, cfg.Diagnostics.MaxPerFile)
	assert.True(t, cfg.Resolution.PromptEnabled)
}

func TestParseKDL_InvalidMaxPerFileIgnored(t *testing.T) {
	cfg, err := parseKDL(`diagnostics { max_per_file -5 }`)
	require.NoError(t, err)
	assert.Equal(t, DefaultMaxPerFile, cfg.Diagnostics.MaxPerFile)
}

func TestParseKDL_SyntaxError(t *testing.T) {
	_, err := parseKDL(`diagnostics {`)
	assert.Error(t, err)
}

func TestLoadFromDir(t *testing.T) {
	dir := t.TempDir()
	content := []byte(`diagnostics { max_per_file 7 }`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".sarifnav.kdl"), content, 0o644))

	cfg, err := LoadFromDir(dir)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Diagnostics.MaxPerFile)
}
