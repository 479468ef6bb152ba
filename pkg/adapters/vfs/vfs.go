// Package vfs implements ports.VirtualFileSystem on top of afero.
//
// Sources are read from a base filesystem that is never written to. Updates
// land in an in-memory layer stacked on top of it, so an editor buffer can
// shadow a file on disk until it is saved.
package vfs

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"github.com/aretw0/tandem/internal/logging"
	"github.com/spf13/afero"
)

// Scheme is the uri scheme handled by the file system.
const Scheme = "file"

// FileSystem is a copy-on-write virtual file system.
type FileSystem struct {
	base   afero.Fs
	fs     *afero.Afero
	root   string
	logger *slog.Logger
}

// Option configures a FileSystem.
type Option func(*FileSystem)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(f *FileSystem) {
		f.logger = logger
	}
}

// WithRoot records the directory the base filesystem is rooted at. It is
// only used by Watch.
func WithRoot(dir string) Option {
	return func(f *FileSystem) {
		f.root = dir
	}
}

// New wraps base. base is only ever read.
func New(base afero.Fs, opts ...Option) *FileSystem {
	f := &FileSystem{
		base:   base,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	layer := afero.NewMemMapFs()
	f.fs = &afero.Afero{Fs: afero.NewCopyOnWriteFs(afero.NewReadOnlyFs(base), layer)}
	return f
}

// NewOS serves the operating system's files under root.
func NewOS(root string, opts ...Option) (*FileSystem, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root %s: %w", root, err)
	}
	return New(afero.NewOsFs(), append([]Option{WithRoot(abs)}, opts...)...), nil
}

// NewMemory returns a FileSystem over an empty in-memory base. files maps
// uris to their content.
func NewMemory(files map[string]string, opts ...Option) (*FileSystem, error) {
	base := afero.NewMemMapFs()
	for uri, content := range files {
		p, err := PathOf(uri)
		if err != nil {
			return nil, err
		}
		if err := afero.WriteFile(base, p, []byte(content), 0o644); err != nil {
			return nil, fmt.Errorf("failed to seed %s: %w", uri, err)
		}
	}
	return New(base, opts...), nil
}

// FileURI converts an absolute path into a file uri.
func FileURI(p string) string {
	return (&url.URL{Scheme: Scheme, Path: filepath.ToSlash(p)}).String()
}

// PathOf converts a file uri into a path. Bare absolute paths are accepted.
func PathOf(uri string) (string, error) {
	if strings.HasPrefix(uri, "/") {
		return path.Clean(uri), nil
	}
	u, err := url.Parse(uri)
	if err != nil {
		return "", fmt.Errorf("invalid uri %q: %w", uri, err)
	}
	if u.Scheme != Scheme {
		return "", fmt.Errorf("unsupported uri scheme %q in %q", u.Scheme, uri)
	}
	return filepath.FromSlash(path.Clean(u.Path)), nil
}

// Resolve joins rel against the directory of base. Absolute paths and file
// uris are taken as is.
func (f *FileSystem) Resolve(base, rel string) (string, error) {
	if strings.HasPrefix(rel, Scheme+"://") {
		p, err := PathOf(rel)
		if err != nil {
			return "", err
		}
		return FileURI(p), nil
	}
	if strings.Contains(rel, "://") {
		return "", fmt.Errorf("cannot resolve external uri %q", rel)
	}
	if path.IsAbs(rel) {
		return FileURI(path.Clean(rel)), nil
	}
	basePath, err := PathOf(base)
	if err != nil {
		return "", err
	}
	return FileURI(path.Join(path.Dir(filepath.ToSlash(basePath)), rel)), nil
}

// Read returns the overlay content of uri if it was updated, otherwise the
// base content.
func (f *FileSystem) Read(ctx context.Context, uri string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	p, err := PathOf(uri)
	if err != nil {
		return "", err
	}
	data, err := f.fs.ReadFile(p)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", uri, err)
	}
	return string(data), nil
}

// ReadBase reads uri from the base filesystem, ignoring updates.
func (f *FileSystem) ReadBase(ctx context.Context, uri string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	p, err := PathOf(uri)
	if err != nil {
		return "", err
	}
	data, err := afero.ReadFile(f.base, p)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", uri, err)
	}
	return string(data), nil
}

// Exists reports whether uri is a readable file.
func (f *FileSystem) Exists(ctx context.Context, uri string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	p, err := PathOf(uri)
	if err != nil {
		return false, err
	}
	info, err := f.fs.Stat(p)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to stat %s: %w", uri, err)
	}
	return !info.IsDir(), nil
}

// Update writes content to the overlay layer.
func (f *FileSystem) Update(ctx context.Context, uri, content string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p, err := PathOf(uri)
	if err != nil {
		return err
	}
	if err := f.fs.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("failed to prepare %s: %w", uri, err)
	}
	if err := f.fs.WriteFile(p, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to update %s: %w", uri, err)
	}
	f.logger.Debug("virtual file updated", "uri", uri, "bytes", len(content))
	return nil
}

// Documents lists the uris of every file under dir with one of the given
// extensions, in lexical order.
func (f *FileSystem) Documents(dir string, exts ...string) ([]string, error) {
	var uris []string
	err := f.fs.Walk(dir, func(p string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if strings.HasPrefix(info.Name(), ".") && p != dir {
				return filepath.SkipDir
			}
			return nil
		}
		ext := filepath.Ext(p)
		for _, want := range exts {
			if ext == want {
				uris = append(uris, FileURI(p))
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", dir, err)
	}
	return uris, nil
}
