package cratemap

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigMissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "cratemap.toml"))
	require.NoError(t, err)
	assert.Equal(t, defaultConfig(), cfg)
}

func TestLoadConfigParsesToml(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cratemap.toml")
	doc := "default_edition = \"2015\"\nmax_glob_depth = 10\nmax_macro_depth = 5\nverbose = true\n"
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "2015", cfg.DefaultEdition)
	assert.Equal(t, 10, cfg.MaxGlobDepth)
	assert.Equal(t, 5, cfg.MaxMacroDepth)
	assert.True(t, cfg.Verbose)
}

func TestResolveOptionsRoundTrips(t *testing.T) {
	cfg := Config{MaxGlobDepth: 7, MaxMacroDepth: 3}
	opts := cfg.resolveOptions()
	require.NotNil(t, opts)
	assert.Equal(t, 7, opts.MaxGlobDepth)
	assert.Equal(t, 3, opts.MaxMacroDepth)
}
