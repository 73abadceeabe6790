package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/puzpuzpuz/xsync/v3"
	"golang.org/x/sync/singleflight"
)

// dirCache remembers which directories have been created, so each one is
// created at most once per storage even under concurrent first writes.
type dirCache struct {
	created *xsync.MapOf[string, struct{}]
	group   singleflight.Group
	mkdir   func(path string, perm os.FileMode) error
}

func newDirCache() *dirCache {
	return &dirCache{
		created: xsync.NewMapOf[string, struct{}](),
		mkdir:   os.MkdirAll,
	}
}

func (c *dirCache) ensure(dir string) error {
	if _, ok := c.created.Load(dir); ok {
		return nil
	}

	_, err, _ := c.group.Do(dir, func() (any, error) {
		if _, ok := c.created.Load(dir); ok {
			return nil, nil
		}
		if err := c.mkdir(dir, 0o755); err != nil {
			return nil, err
		}
		c.created.Store(dir, struct{}{})
		dirsCreated.Inc()
		return nil, nil
	})
	return err
}

// PurgeDir removes leftover cache files from a previous run. Subdirectories
// are left alone. A missing directory is not an error.
func PurgeDir(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("purge cache dir: %w", err)
	}

	removed := 0
	var errs []error
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if err := os.Remove(filepath.Join(dir, entry.Name())); err != nil {
			errs = append(errs, err)
			continue
		}
		removed++
	}
	return removed, errors.Join(errs...)
}
