package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseExcludeGlobs(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		globs, err := parseExcludeGlobs("")
		require.NoError(t, err)
		assert.Nil(t, globs)
	})

	t.Run("trimmed and split", func(t *testing.T) {
		globs, err := parseExcludeGlobs("node_modules, *.min.js")
		require.NoError(t, err)
		assert.Equal(t, []string{"node_modules", "*.min.js"}, globs)
	})

	t.Run("empty segments dropped", func(t *testing.T) {
		globs, err := parseExcludeGlobs("a,,b ,")
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, globs)
	})

	t.Run("invalid pattern", func(t *testing.T) {
		_, err := parseExcludeGlobs("[")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid glob pattern")
	})
}

func TestResolveTarget(t *testing.T) {
	t.Run("existing directory", func(t *testing.T) {
		dir := t.TempDir()
		root, cleanup, err := resolveTarget(dir, true)
		require.NoError(t, err)
		defer cleanup()
		assert.Equal(t, dir, root)
	})

	t.Run("existing file", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "x.txt")
		require.NoError(t, os.WriteFile(path, []byte("x"), 0644))

		_, _, err := resolveTarget(path, true)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "is a file, not a directory")
	})

	t.Run("unresolvable target", func(t *testing.T) {
		_, _, err := resolveTarget("no/such/thing-xyz", true)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot access")
	})
}

func TestLoadIgnoreMatcher(t *testing.T) {
	t.Run("no gitignore", func(t *testing.T) {
		assert.Nil(t, loadIgnoreMatcher(t.TempDir(), true))
	})

	t.Run("with gitignore", func(t *testing.T) {
		root := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(root, ".gitignore"), []byte("dist/\n"), 0644))

		matcher := loadIgnoreMatcher(root, true)
		require.NotNil(t, matcher)
		assert.True(t, matcher.Match(filepath.Join(root, "dist"), true))
		assert.False(t, matcher.Match(filepath.Join(root, "src"), true))
	})
}
