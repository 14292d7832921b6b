package ledgerstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// File implements ports.Persistence as one file per key under Dir, written
// atomically via a temp-file-then-rename so a reader never observes a
// partial write. Used for the discovery cache; the ledger snapshot goes to
// Postgres or to the Console adapter.
type File struct {
	dir    string
	logger *zap.Logger
}

// NewFile creates a File persistence adapter rooted at dir, creating it if
// necessary.
func NewFile(dir string, logger *zap.Logger) (*File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create persistence dir %q: %w", dir, err)
	}
	return &File{dir: dir, logger: logger}, nil
}

func (f *File) path(key string) string {
	return filepath.Join(f.dir, key+".json")
}

// SaveSnapshot writes blob to a temp file in the same directory and renames
// it over the destination, so a concurrent reader sees either the old or
// the new contents, never a partial write.
func (f *File) SaveSnapshot(_ context.Context, key string, blob []byte) error {
	dest := f.path(key)
	tmp := dest + ".tmp"

	if err := os.WriteFile(tmp, blob, 0o644); err != nil {
		return fmt.Errorf("write temp file %q: %w", tmp, err)
	}
	if err := os.Rename(tmp, dest); err != nil {
		return fmt.Errorf("rename %q to %q: %w", tmp, dest, err)
	}

	f.logger.Debug("snapshot-saved-file", zap.String("key", key), zap.Int("bytes", len(blob)))
	return nil
}

// LoadSnapshot returns the blob previously saved under key, or nil with no
// error if the file doesn't exist yet.
func (f *File) LoadSnapshot(_ context.Context, key string) ([]byte, error) {
	blob, err := os.ReadFile(f.path(key))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read file %q: %w", f.path(key), err)
	}
	return blob, nil
}

// Close is a no-op: File holds no live resources beyond the directory path.
func (f *File) Close() error {
	return nil
}
