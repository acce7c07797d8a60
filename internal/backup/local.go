package backup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// LocalStore keeps snapshots on the local filesystem. Absolute keys are
// used as-is, relative keys are resolved against basePath.
type LocalStore struct {
	basePath string
}

// NewLocalStore creates a local store; an empty basePath means the working directory
func NewLocalStore(basePath string) *LocalStore {
	return &LocalStore{basePath: basePath}
}

func (l *LocalStore) path(key string) string {
	if filepath.IsAbs(key) || l.basePath == "" {
		return filepath.Clean(key)
	}
	return filepath.Join(l.basePath, key)
}

// Open opens a snapshot file for reading
func (l *LocalStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	fullPath := l.path(key)

	file, err := os.Open(fullPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, fullPath)
		}
		return nil, fmt.Errorf("failed to open %s: %w", fullPath, err)
	}
	return file, nil
}

// Save writes a snapshot file, creating parent directories as needed
func (l *LocalStore) Save(ctx context.Context, key string, body io.ReadSeeker, size int64) (string, error) {
	fullPath := l.path(key)

	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to create file %s: %w", fullPath, err)
	}
	defer file.Close()

	written, err := io.Copy(file, body)
	if err != nil {
		return "", fmt.Errorf("failed to write file %s: %w", fullPath, err)
	}
	if size >= 0 && written != size {
		return "", fmt.Errorf("size mismatch: expected %d bytes, wrote %d bytes", size, written)
	}

	return fullPath, nil
}

// Exists checks if a snapshot file exists
func (l *LocalStore) Exists(ctx context.Context, key string) (bool, error) {
	_, err := os.Stat(l.path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check if file exists: %w", err)
	}
	return true, nil
}
