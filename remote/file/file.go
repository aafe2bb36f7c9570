// Package file serves a local configuration file as a remote source.
//
// The file is parsed with format.LoadFile on every fetch, so any supported
// format can be used. Watch uses fsnotify so a running poller picks up edits
// immediately instead of waiting for the next interval.
package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/yacchi/kasane/format"
	"github.com/yacchi/kasane/remote"
)

var userHomeDir = os.UserHomeDir

// Fetcher reads one file.
type Fetcher struct {
	path string
}

// Ensure Fetcher implements remote.Fetcher and remote.Notifier.
var (
	_ remote.Fetcher  = (*Fetcher)(nil)
	_ remote.Notifier = (*Fetcher)(nil)
)

// New creates a fetcher for path. A leading "~/" is expanded to the home directory.
//
// Example:
//
//	f, err := file.New("~/.config/myapp/remote.yaml")
func New(path string) (*Fetcher, error) {
	if _, ok := format.FormatFromPath(path); !ok {
		return nil, fmt.Errorf("cannot infer format of %q", path)
	}
	resolved, err := expandTilde(path)
	if err != nil {
		return nil, err
	}
	return &Fetcher{path: resolved}, nil
}

// Path returns the resolved file path.
func (f *Fetcher) Path() string {
	return f.path
}

// Fetch implements remote.Fetcher. A missing file yields an empty bag, so
// deleting the file clears the source.
func (f *Fetcher) Fetch(ctx context.Context) (format.Bag, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	bag, err := format.LoadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return format.Bag{}, nil
	}
	return bag, err
}

// Watch implements remote.Notifier. It blocks until ctx is done.
func (f *Fetcher) Watch(ctx context.Context, notify func()) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	defer w.Close()

	// Watch the directory containing the file rather than the file itself.
	// This handles atomic writes (temp file + rename) and file recreation.
	dir := filepath.Dir(f.path)
	if err := w.Add(dir); err != nil {
		return fmt.Errorf("failed to watch directory %q: %w", dir, err)
	}
	filename := filepath.Base(f.path)

	for {
		select {
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != filename {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) != 0 {
				notify()
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watching %q: %w", f.path, err)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func expandTilde(path string) (string, error) {
	if len(path) == 0 || path[0] != '~' {
		return path, nil
	}

	homeDir, err := userHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to expand home directory: %w", err)
	}

	if len(path) == 1 {
		return homeDir, nil
	}
	if path[1] == '/' || path[1] == filepath.Separator {
		return filepath.Join(homeDir, path[2:]), nil
	}
	// "~something" is left as is
	return path, nil
}
