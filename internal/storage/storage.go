// Package storage implements the attachment store: it validates uploads,
// persists their bytes under collision-free names, loads them back for
// download and deletes them best-effort. Bytes live behind a Backend so the
// filesystem and S3 implementations stay interchangeable.
package storage

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound is returned by Backend.Open and Backend.Remove when the target
// object does not exist or resolves outside the backend's root.
var ErrNotFound = errors.New("object not found")

// Backend persists raw bytes under slash-separated relative keys
type Backend interface {
	Save(ctx context.Context, key string, r io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Remove(ctx context.Context, key string) error
}

// Upload is one incoming file as handed over by the transport layer
type Upload struct {
	Filename    string
	Size        int64
	ContentType string
	Content     io.Reader
}

// IsEmpty reports whether the upload carries no file or no bytes
func (u *Upload) IsEmpty() bool {
	return u == nil || u.Content == nil || u.Size == 0
}

// StoredFile is the stable reference returned by Store
type StoredFile struct {
	StoredName string // <uuid><.ext>, extension case preserved
	Path       string // <category>/<yyyy-MM-dd>/ relative, slash separated
	Size       int64
	Extension  string // lower-cased, without the dot
}
