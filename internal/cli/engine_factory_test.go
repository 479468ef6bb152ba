package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetermineEntryPoints(t *testing.T) {
	// Helper to create a temp dir with specific files
	createDir := func(t *testing.T, files []string) string {
		dir := t.TempDir()
		for _, f := range files {
			err := os.WriteFile(filepath.Join(dir, f), []byte("<div />"), 0644)
			require.NoError(t, err)
		}
		return dir
	}

	t.Run("Configured entries win", func(t *testing.T) {
		dir := createDir(t, []string{"main.pc"})
		assert.Equal(t, []string{"a.pc", "b.pc"}, determineEntryPoints(dir, []string{"a.pc", "b.pc"}))
	})

	t.Run("Default to main if exists", func(t *testing.T) {
		dir := createDir(t, []string{"main.pc", "index.pc"})
		assert.Equal(t, []string{"main.pc"}, determineEntryPoints(dir, nil))
	})

	t.Run("Fallback to index", func(t *testing.T) {
		dir := createDir(t, []string{"index.pc", "other.pc"})
		assert.Equal(t, []string{"index.pc"}, determineEntryPoints(dir, nil))
	})

	t.Run("Fallback to DirectoryName", func(t *testing.T) {
		tmpRoot := t.TempDir()
		moduleDir := filepath.Join(tmpRoot, "checkout")
		require.NoError(t, os.Mkdir(moduleDir, 0755))
		require.NoError(t, os.WriteFile(filepath.Join(moduleDir, "checkout.pc"), []byte("<div />"), 0644))

		assert.Equal(t, []string{"checkout.pc"}, determineEntryPoints(moduleDir, nil))
	})

	t.Run("Nothing matches", func(t *testing.T) {
		dir := createDir(t, []string{"other.pc"})
		assert.Empty(t, determineEntryPoints(dir, nil))
	})
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "ui/card.pc", displayName("/site", "file:///site/ui/card.pc"))
	assert.Equal(t, "/other/x.pc", displayName("/site", "file:///other/x.pc"))
	assert.Equal(t, "/x.pc", displayName("", "file:///x.pc"))
}
