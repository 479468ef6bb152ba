package ports

import "context"

// VirtualFileSystem is the engine's only view of document sources. Updates
// are overlays: they shadow the backing file without touching it.
type VirtualFileSystem interface {
	// Resolve turns rel, as written in the document at base, into a uri.
	Resolve(base, rel string) (string, error)

	// Read returns the current content of uri.
	Read(ctx context.Context, uri string) (string, error)

	// Exists reports whether uri can be read.
	Exists(ctx context.Context, uri string) (bool, error)

	// Update replaces the content of uri.
	Update(ctx context.Context, uri, content string) error
}

// Watchable defines an interface for file systems that can notify about
// backend changes. It is used by the watch loop for hot-reload.
type Watchable interface {
	// Watch returns a channel that receives the uri of every changed file.
	Watch(ctx context.Context) (<-chan string, error)
}
