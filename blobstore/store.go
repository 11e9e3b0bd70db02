package blobstore

import (
	"context"
	"io"
	"os"
)

// ErrNotFound is returned when a blob does not exist.
//
// Implementations should return an error that satisfies
// `errors.Is(err, ErrNotFound)`. The default maps to `os.ErrNotExist`.
var ErrNotFound = os.ErrNotExist

// BlobStore is an abstraction for reading immutable embedding blobs.
type BlobStore interface {
	// Open opens the named blob for sequential reading.
	Open(ctx context.Context, name string) (io.ReadCloser, error)

	// List returns the names of all blobs under the given prefix,
	// sorted lexicographically.
	List(ctx context.Context, prefix string) ([]string, error)
}

// ReadAll opens the named blob and reads it fully into memory.
func ReadAll(ctx context.Context, s BlobStore, name string) ([]byte, error) {
	rc, err := s.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	return io.ReadAll(rc)
}
