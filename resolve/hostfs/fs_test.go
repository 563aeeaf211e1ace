package hostfs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		full := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}
	return root
}

func TestResolveModuleFileNameRsForm(t *testing.T) {
	root := writeTree(t, map[string]string{
		"lib.rs": "",
		"a.rs":   "",
		"a/b.rs": "",
	})
	fs, err := Open(root, nil)
	require.NoError(t, err)

	aID, ok := fs.RootFile("a.rs")
	require.True(t, ok)

	bID, src, ok, probed := fs.ResolveModuleFile(aID, "b")
	require.True(t, ok, "expected to find a/b.rs, probed %s", probed)
	assert.NotZero(t, bID)
	raw, ok := src.(RawFile)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(root, "a", "b.rs"), raw.Path)
}

func TestResolveModuleFileModRsForm(t *testing.T) {
	root := writeTree(t, map[string]string{
		"lib.rs":   "",
		"a/mod.rs": "",
		"a/b.rs":   "",
	})
	fs, err := Open(root, nil)
	require.NoError(t, err)

	aID, ok := fs.RootFile(filepath.Join("a", "mod.rs"))
	require.True(t, ok)

	_, _, ok, probed := fs.ResolveModuleFile(aID, "b")
	require.True(t, ok, "expected to find a/b.rs via mod.rs's own directory, probed %s", probed)
}

func TestResolveModuleFileMissing(t *testing.T) {
	root := writeTree(t, map[string]string{"lib.rs": ""})
	fs, err := Open(root, nil)
	require.NoError(t, err)

	_, _, ok, probed := fs.ResolveModuleFile(fs.RootDirectory(), "nope")
	assert.False(t, ok)
	assert.Equal(t, filepath.Join(root, "nope.rs"), probed)
}

func TestResolveIncludeRelativeToIncludingFile(t *testing.T) {
	root := writeTree(t, map[string]string{
		"lib.rs":   "",
		"a.rs":     "",
		"a/gen.rs": "included content",
	})
	fs, err := Open(root, nil)
	require.NoError(t, err)

	aID, ok := fs.RootFile("a.rs")
	require.True(t, ok)

	// include! inside a.rs itself resolves relative to a.rs's own
	// directory (the crate root), not a's owned module directory.
	_, _, ok, probed := fs.ResolveInclude(aID, "gen.rs")
	assert.False(t, ok, "gen.rs lives under a/, not next to a.rs itself; probed %s", probed)

	_, _, ok, _ = fs.ResolveInclude(aID, "a/gen.rs")
	assert.True(t, ok)
}

func TestRootModuleChildrenResolveAtRoot(t *testing.T) {
	root := writeTree(t, map[string]string{
		"lib.rs": "",
		"a.rs":   "",
	})
	fs, err := Open(root, nil)
	require.NoError(t, err)

	_, _, ok, probed := fs.ResolveModuleFile(fs.RootDirectory(), "a")
	assert.True(t, ok, "probed %s", probed)
}
