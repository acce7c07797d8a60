package backup

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"
)

// StoreWithFallback wraps a primary store with a fallback
type StoreWithFallback struct {
	primary  Store
	fallback Store
	logger   *zap.Logger
}

// NewStoreWithFallback creates a store with fallback capability
func NewStoreWithFallback(primary, fallback Store, logger *zap.Logger) *StoreWithFallback {
	return &StoreWithFallback{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

// Open reads from the primary store, then from the fallback
func (s *StoreWithFallback) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	rc, err := s.primary.Open(ctx, key)
	if err == nil {
		return rc, nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	s.logger.Warn("primary store failed, reading fallback", zap.String("key", key), zap.Error(err))

	rc, fallbackErr := s.fallback.Open(ctx, key)
	if fallbackErr != nil {
		if errors.Is(err, ErrNotFound) && errors.Is(fallbackErr, ErrNotFound) {
			return nil, fallbackErr
		}
		return nil, fmt.Errorf("both stores failed - primary: %v, fallback: %w", err, fallbackErr)
	}
	return rc, nil
}

// Save tries the primary store first and falls back on error
func (s *StoreWithFallback) Save(ctx context.Context, key string, body io.ReadSeeker, size int64) (string, error) {
	location, err := s.primary.Save(ctx, key, body, size)
	if err == nil {
		return location, nil
	}
	if ctx.Err() != nil {
		return "", ctx.Err()
	}

	s.logger.Warn("primary store failed, using fallback", zap.String("key", key), zap.Error(err))

	if _, seekErr := body.Seek(0, io.SeekStart); seekErr != nil {
		return "", fmt.Errorf("primary store failed and cannot reset body for fallback: %w", err)
	}
	return s.fallback.Save(ctx, key, body, size)
}

// Exists checks both stores
func (s *StoreWithFallback) Exists(ctx context.Context, key string) (bool, error) {
	exists, err := s.primary.Exists(ctx, key)
	if err == nil && exists {
		return true, nil
	}
	return s.fallback.Exists(ctx, key)
}
