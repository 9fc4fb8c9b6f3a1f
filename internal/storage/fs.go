package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// FSBackend stores objects as plain files under a fixed root directory.
// Every key is resolved against the root and checked for containment, so
// traversal sequences in a key can never address anything above it.
type FSBackend struct {
	root string
}

// NewFSBackend creates the root directory if needed and returns a backend
// rooted there.
func NewFSBackend(root string) (*FSBackend, error) {
	if root == "" {
		return nil, fmt.Errorf("storage root directory is required")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve storage root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage root: %w", err)
	}
	return &FSBackend{root: abs}, nil
}

// Root returns the absolute root directory
func (b *FSBackend) Root() string {
	return b.root
}

// resolve normalizes key against the root. Keys that escape the root after
// normalization resolve to nothing.
func (b *FSBackend) resolve(key string) (string, error) {
	p := filepath.Join(b.root, filepath.FromSlash(key))
	if p != b.root && !strings.HasPrefix(p, b.root+string(os.PathSeparator)) {
		return "", ErrNotFound
	}
	return p, nil
}

// Save writes the object, creating intermediate directories. An existing
// file under the same key is overwritten.
func (b *FSBackend) Save(ctx context.Context, key string, r io.Reader) error {
	p, err := b.resolve(key)
	if err != nil {
		return fmt.Errorf("invalid object key %q", key)
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	f, err := os.Create(p)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()
	if _, err := io.Copy(f, r); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

// Open returns a reader over the object, or ErrNotFound when the key does
// not resolve to a readable file inside the root.
func (b *FSBackend) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	p, err := b.resolve(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(p)
	if err != nil {
		if os.IsNotExist(err) || os.IsPermission(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	info, err := f.Stat()
	if err != nil || info.IsDir() {
		f.Close()
		return nil, ErrNotFound
	}
	return f, nil
}

// Remove deletes the object. A missing file reports ErrNotFound so callers
// can treat absence as success.
func (b *FSBackend) Remove(ctx context.Context, key string) error {
	p, err := b.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}
