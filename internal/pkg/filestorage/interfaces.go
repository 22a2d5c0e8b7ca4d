package filestorage

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrNotFound is returned when no object is stored at a path
var ErrNotFound = errors.New("stored file not found")

// Object is an opened stored file
type Object struct {
	Body        io.ReadCloser
	Size        int64
	ContentType string
}

// Storage defines the operations the service needs from an object store.
// Paths are slash separated and relative to the store root.
type Storage interface {
	// Save writes size bytes from r at path
	Save(ctx context.Context, path string, r io.Reader, size int64, contentType string) error

	// Open returns the object stored at path
	Open(ctx context.Context, path string) (*Object, error)

	// Delete removes path; deleting a missing object is not an error
	Delete(ctx context.Context, path string) error

	// SignedURL returns a URL granting read access to path for ttl
	SignedURL(ctx context.Context, path string, ttl time.Duration) (string, error)
}
