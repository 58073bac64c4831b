package storage

import (
	"context"
	"io"
)

// BlobStore persists uploaded media files and returns retrievable references.
type BlobStore interface {
	// Store writes the content under the given key and returns a URL or path
	// the file can later be fetched from.
	Store(ctx context.Context, key, contentType string, r io.Reader) (string, error)
	// Delete removes a stored object. Missing objects are not an error.
	Delete(ctx context.Context, key string) error
}
