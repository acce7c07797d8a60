package backup

import (
	"context"
	"errors"
	"io"
)

var ErrNotFound = errors.New("snapshot not found")

// Store holds snapshot documents by key
type Store interface {
	// Open returns the document stored under key, or ErrNotFound
	Open(ctx context.Context, key string) (io.ReadCloser, error)

	// Save writes the document and returns where it ended up
	Save(ctx context.Context, key string, body io.ReadSeeker, size int64) (string, error)

	// Exists checks if a document is stored under key
	Exists(ctx context.Context, key string) (bool, error)
}
