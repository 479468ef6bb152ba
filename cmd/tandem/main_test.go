package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/tandem"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "tandem version "+tandem.Version+"\n", out)
}

func TestRenderCommand(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.pc"), []byte(`<p>{greeting}</p>`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tandem.yaml"), []byte("data:\n  greeting: hi\n"), 0o644))

	out, err := run(t, "render", "--dir", dir, "--format", "html")
	require.NoError(t, err)
	assert.Contains(t, out, "hi</p>")
}

func TestCheckCommand_Fails(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.pc"), []byte(`<p>`), 0o644))

	out, err := run(t, "check", "--dir", dir, "--plain")
	require.Error(t, err)
	assert.Contains(t, out, "1 documents, 1 failed.")
}
