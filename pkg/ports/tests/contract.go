package tests

import (
	"context"
	"testing"

	"github.com/aretw0/tandem/pkg/ports"
)

// VirtualFileSystemContractTest is a reusable test suite that verifies if an
// adapter complies with ports.VirtualFileSystem. setupData maps uris that
// already exist in the adapter to their content.
func VirtualFileSystemContractTest(t *testing.T, vfs ports.VirtualFileSystem, setupData map[string]string) {
	t.Helper()
	ctx := context.Background()

	// 1. Read (Success)
	t.Run("Read_Success", func(t *testing.T) {
		for uri, expected := range setupData {
			content, err := vfs.Read(ctx, uri)
			if err != nil {
				t.Fatalf("unexpected error reading %s: %v", uri, err)
			}
			if content != expected {
				t.Errorf("content mismatch for %s. got %q, want %q", uri, content, expected)
			}
		}
	})

	// 2. Read (NotFound)
	t.Run("Read_NotFound", func(t *testing.T) {
		if _, err := vfs.Read(ctx, "file:///non-existent.pc"); err == nil {
			t.Error("expected error for non-existent file, got nil")
		}
		exists, err := vfs.Exists(ctx, "file:///non-existent.pc")
		if err != nil {
			t.Fatalf("unexpected error from Exists: %v", err)
		}
		if exists {
			t.Error("expected non-existent file to report false")
		}
	})

	// 3. Update overlays the content
	t.Run("Update", func(t *testing.T) {
		for uri := range setupData {
			if err := vfs.Update(ctx, uri, "<b>updated</b>"); err != nil {
				t.Fatalf("unexpected error updating %s: %v", uri, err)
			}
			content, err := vfs.Read(ctx, uri)
			if err != nil {
				t.Fatalf("unexpected error reading %s: %v", uri, err)
			}
			if content != "<b>updated</b>" {
				t.Errorf("expected updated content for %s, got %q", uri, content)
			}
			break
		}
	})

	// 4. Update creates unknown files
	t.Run("Update_Creates", func(t *testing.T) {
		uri := "file:///created-by-contract.pc"
		if err := vfs.Update(ctx, uri, "x"); err != nil {
			t.Fatalf("unexpected error creating %s: %v", uri, err)
		}
		exists, err := vfs.Exists(ctx, uri)
		if err != nil || !exists {
			t.Errorf("expected %s to exist after Update, got %v, %v", uri, exists, err)
		}
	})
}
