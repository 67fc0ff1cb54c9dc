// Package file implements storage.Store on the local filesystem: one JSON
// document per key inside a data directory. This is the device-local
// backend the CLI uses by default.
package file

import (
	"context"
	"net/url"
	"os"
	"path/filepath"

	"github.com/go-faster/errors"
	"github.com/moby/sys/atomicwriter"

	"github.com/xenking/swift-grocers/internal/storage"
)

var _ storage.Store = (*Store)(nil)

// Store keeps each key in <dir>/<escaped key>.json. Keys are path-escaped so
// distinct keys never share a file and never leave dir. Writes go through a temporary
// file and a rename, so a reader never observes a torn document.
type Store struct {
	dir string
}

// New creates the directory when missing and returns a Store rooted at it.
func New(dir string) (*Store, error) {
	if dir == "" {
		return nil, errors.New("data directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, storage.Unavailable(err, "create data dir")
	}
	return &Store{dir: dir}, nil
}

func (s *Store) Read(_ context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(s.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, storage.Unavailable(err, "read "+key)
	}
	return data, nil
}

func (s *Store) Write(_ context.Context, key string, value []byte) error {
	if err := atomicwriter.WriteFile(s.path(key), value, 0o644); err != nil {
		return storage.Unavailable(err, "write "+key)
	}
	return nil
}

func (s *Store) path(key string) string {
	return filepath.Join(s.dir, url.PathEscape(key)+".json")
}
