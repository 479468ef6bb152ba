package vfs

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/tandem/pkg/ports"
	"github.com/aretw0/tandem/pkg/ports/tests"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ ports.VirtualFileSystem = (*FileSystem)(nil)
var _ ports.Watchable = (*FileSystem)(nil)

func TestFileSystem_Contract(t *testing.T) {
	setup := map[string]string{
		"file:///app/main.pc":       "<div>main</div>",
		"file:///app/lib/button.pc": "<button/>",
	}
	fs, err := NewMemory(setup)
	require.NoError(t, err)
	tests.VirtualFileSystemContractTest(t, fs, setup)
}

func TestResolve(t *testing.T) {
	fs, err := NewMemory(nil)
	require.NoError(t, err)

	cases := []struct {
		name string
		base string
		rel  string
		want string
	}{
		{"sibling", "file:///app/main.pc", "./button.pc", "file:///app/button.pc"},
		{"parent", "file:///app/pages/home.pc", "../theme.css", "file:///app/theme.css"},
		{"nested", "file:///app/main.pc", "lib/card.pc", "file:///app/lib/card.pc"},
		{"absolute path", "file:///app/main.pc", "/shared/x.pc", "file:///shared/x.pc"},
		{"file uri", "file:///app/main.pc", "file:///other/y.pc", "file:///other/y.pc"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := fs.Resolve(tc.base, tc.rel)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	_, err = fs.Resolve("file:///app/main.pc", "https://cdn.example.com/x.css")
	assert.Error(t, err)
}

func TestUpdate_DoesNotTouchBase(t *testing.T) {
	ctx := context.Background()
	base := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(base, "/app/main.pc", []byte("on disk"), 0o644))

	fs := New(base)
	require.NoError(t, fs.Update(ctx, "file:///app/main.pc", "in editor"))

	got, err := fs.Read(ctx, "file:///app/main.pc")
	require.NoError(t, err)
	assert.Equal(t, "in editor", got)

	onDisk, err := fs.ReadBase(ctx, "file:///app/main.pc")
	require.NoError(t, err)
	assert.Equal(t, "on disk", onDisk)
}

func TestDocuments(t *testing.T) {
	fs, err := NewMemory(map[string]string{
		"file:///app/b.pc":          "",
		"file:///app/a.pc":          "",
		"file:///app/theme.css":     "",
		"file:///app/notes.txt":     "",
		"file:///app/.cache/tmp.pc": "",
	})
	require.NoError(t, err)

	uris, err := fs.Documents("/app", ".pc")
	require.NoError(t, err)
	assert.Equal(t, []string{"file:///app/a.pc", "file:///app/b.pc"}, uris)
}

func TestWatch(t *testing.T) {
	dir := t.TempDir()
	fs, err := NewOS(dir)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes, err := fs.Watch(ctx)
	require.NoError(t, err)

	target := filepath.Join(fs.root, "main.pc")
	require.NoError(t, os.WriteFile(target, []byte("<div/>"), 0o644))

	select {
	case uri := <-changes:
		assert.Equal(t, FileURI(target), uri)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for change")
	}
}

func TestWatch_NoRoot(t *testing.T) {
	fs, err := NewMemory(nil)
	require.NoError(t, err)
	_, err = fs.Watch(context.Background())
	assert.ErrorIs(t, err, ErrNotWatchable)
}
