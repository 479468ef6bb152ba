package vfs

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// ErrNotWatchable is returned by Watch when the FileSystem has no root on disk.
var ErrNotWatchable = errors.New("file system has no root directory to watch")

// Watch reports the uri of every file written or created under the root.
// Directories created later are added to the watch list as they appear. The
// channel is closed when ctx is done.
func (f *FileSystem) Watch(ctx context.Context) (<-chan string, error) {
	if f.root == "" {
		return nil, ErrNotWatchable
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watchDirRecursive(watcher, f.root); err != nil {
		watcher.Close()
		return nil, err
	}

	out := make(chan string)
	go func() {
		defer close(out)
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				if event.Has(fsnotify.Create) {
					if info, err := f.base.Stat(event.Name); err == nil && info.IsDir() {
						if err := watchDirRecursive(watcher, event.Name); err != nil {
							f.logger.Warn("failed to watch new directory", "dir", event.Name, "error", err)
						}
						continue
					}
				}
				select {
				case out <- FileURI(event.Name):
				case <-ctx.Done():
					return
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				f.logger.Warn("watcher error", "error", err)
			}
		}
	}()
	return out, nil
}

// watchDirRecursive adds a directory and its subdirectories to the watch list.
func watchDirRecursive(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && p != root {
				return filepath.SkipDir
			}
			return watcher.Add(p)
		}
		return nil
	})
}
