package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseExtensionOverlay(t *testing.T) {
	t.Run("keys normalized and sorted", func(t *testing.T) {
		mappings, err := parseExtensionOverlay([]byte("zig: Zig\n.v: Vlang\nKT: Kotlin Override\n"))
		require.NoError(t, err)
		assert.Equal(t, []ExtensionMapping{
			{".kt", "Kotlin Override"},
			{".v", "Vlang"},
			{".zig", "Zig"},
		}, mappings)
	})

	t.Run("duplicate key rejected", func(t *testing.T) {
		_, err := parseExtensionOverlay([]byte("zig: A\nzig: B\n"))
		assert.Error(t, err)
	})

	t.Run("keys colliding after normalization rejected", func(t *testing.T) {
		_, err := parseExtensionOverlay([]byte("zig: Zig\n.zig: Ziglang\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), `duplicate extension ".zig"`)
	})

	t.Run("case variants collide", func(t *testing.T) {
		_, err := parseExtensionOverlay([]byte(".KT: A\n.kt: B\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), `duplicate extension ".kt"`)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		_, err := parseExtensionOverlay([]byte("not: [valid"))
		assert.Error(t, err)
	})

	t.Run("empty document", func(t *testing.T) {
		mappings, err := parseExtensionOverlay([]byte(""))
		require.NoError(t, err)
		assert.Empty(t, mappings)
	})
}

func TestMergeExtensions(t *testing.T) {
	base := []ExtensionMapping{
		{".py", "Python"},
		{".md", "Markdown"},
	}

	t.Run("override keeps position", func(t *testing.T) {
		merged := mergeExtensions(base, []ExtensionMapping{{".py", "Snake"}})
		assert.Equal(t, []ExtensionMapping{
			{".py", "Snake"},
			{".md", "Markdown"},
		}, merged)
	})

	t.Run("new extension appended", func(t *testing.T) {
		merged := mergeExtensions(base, []ExtensionMapping{{".zig", "Zig"}})
		assert.Equal(t, []ExtensionMapping{
			{".py", "Python"},
			{".md", "Markdown"},
			{".zig", "Zig"},
		}, merged)
	})

	t.Run("base is not mutated", func(t *testing.T) {
		mergeExtensions(base, []ExtensionMapping{{".py", "Snake"}})
		assert.Equal(t, "Python", base[0].Technology)
	})

	t.Run("empty overlay returns base", func(t *testing.T) {
		assert.Equal(t, base, mergeExtensions(base, nil))
	})
}

// chdir switches the working directory for the test and restores the
// previous one at cleanup. testing.T.Chdir needs Go 1.24.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { require.NoError(t, os.Chdir(old)) })
}

func TestLoadExtensionOverlay(t *testing.T) {
	t.Run("no overlay anywhere", func(t *testing.T) {
		t.Setenv("HOME", t.TempDir())
		chdir(t, t.TempDir())

		mappings, src, err := loadExtensionOverlay()
		require.NoError(t, err)
		assert.Nil(t, mappings)
		assert.Empty(t, src)
	})

	t.Run("home config dir", func(t *testing.T) {
		home := t.TempDir()
		cfgDir := filepath.Join(home, ".config", "ctxfit")
		require.NoError(t, os.MkdirAll(cfgDir, 0755))
		overlayPath := filepath.Join(cfgDir, "extensions.yml")
		require.NoError(t, os.WriteFile(overlayPath, []byte("zig: Zig\n"), 0644))
		t.Setenv("HOME", home)
		chdir(t, t.TempDir())

		mappings, src, err := loadExtensionOverlay()
		require.NoError(t, err)
		assert.Equal(t, overlayPath, src)
		assert.Equal(t, []ExtensionMapping{{".zig", "Zig"}}, mappings)
	})

	t.Run("working directory fallback", func(t *testing.T) {
		t.Setenv("HOME", t.TempDir())
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "extensions.yml"), []byte("v: Vlang\n"), 0644))
		chdir(t, dir)

		mappings, src, err := loadExtensionOverlay()
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(".", "extensions.yml"), src)
		assert.Equal(t, []ExtensionMapping{{".v", "Vlang"}}, mappings)
	})

	t.Run("home config wins over working directory", func(t *testing.T) {
		home := t.TempDir()
		cfgDir := filepath.Join(home, ".config", "ctxfit")
		require.NoError(t, os.MkdirAll(cfgDir, 0755))
		require.NoError(t, os.WriteFile(filepath.Join(cfgDir, "extensions.yml"), []byte("zig: Zig\n"), 0644))
		t.Setenv("HOME", home)

		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "extensions.yml"), []byte("v: Vlang\n"), 0644))
		chdir(t, dir)

		mappings, src, err := loadExtensionOverlay()
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(cfgDir, "extensions.yml"), src)
		assert.Equal(t, []ExtensionMapping{{".zig", "Zig"}}, mappings)
	})

	t.Run("parse failure reported with path", func(t *testing.T) {
		t.Setenv("HOME", t.TempDir())
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "extensions.yml"), []byte("not: [valid"), 0644))
		chdir(t, dir)

		_, _, err := loadExtensionOverlay()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "extensions.yml")
	})
}

func TestDefaultExtensionsTable(t *testing.T) {
	// The built-in table has to satisfy the classifier's own validation.
	c, err := NewClassifier(defaultExtensions)
	require.NoError(t, err)

	assert.Equal(t, "YAML", c.Technology(".yml"))
	assert.Equal(t, "YAML", c.Technology(".yaml"))
	assert.Equal(t, "Rust", c.Technology(".rs"))
	assert.Equal(t, "Protocol Buffers", c.Technology(".proto"))
}
