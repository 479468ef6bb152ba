package ports

import (
	"context"

	"github.com/aretw0/tandem/pkg/vdom"
)

// SnapshotStore keeps the last known good virtual tree of each document, so a
// host can keep serving something while a file is broken mid-edit.
type SnapshotStore interface {
	// Save persists the tree for a uri, replacing any previous one.
	Save(ctx context.Context, uri string, node vdom.Node) error

	// Load retrieves the tree for a uri.
	// Returns domain.ErrSnapshotNotFound if none was saved.
	Load(ctx context.Context, uri string) (vdom.Node, error)

	// Delete removes the tree for a uri.
	Delete(ctx context.Context, uri string) error

	// List returns the uris with a saved tree.
	List(ctx context.Context) ([]string, error)
}
