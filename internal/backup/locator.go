package backup

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"venue-seating-ops/internal/config"
)

// R2Scheme marks a snapshot location held in the R2 bucket
const R2Scheme = "r2://"

// Locator resolves snapshot locations to stores. "r2://<key>" goes to the
// remote store, anything else is a local path.
type Locator struct {
	local  Store
	remote Store
}

// NewLocator builds a locator from explicit stores
func NewLocator(local, remote Store) *Locator {
	return &Locator{local: local, remote: remote}
}

// NewStore creates the snapshot stores from configuration. R2 is used when
// configured and reachable, with local files under BackupDir as fallback.
func NewStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) *Locator {
	local := NewLocalStore("")
	mirror := NewLocalStore(cfg.Defaults.BackupDir)

	if !cfg.R2Enabled() {
		logger.Debug("R2 not configured, r2:// locations map to the backup directory",
			zap.String("dir", cfg.Defaults.BackupDir))
		return NewLocator(local, mirror)
	}

	r2Store, err := NewR2Store(ctx, cfg.R2)
	if err != nil {
		logger.Warn("R2 store unavailable, using fallback storage only", zap.Error(err))
		return NewLocator(local, mirror)
	}

	checkCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := r2Store.HealthCheck(checkCtx); err != nil {
		logger.Warn("R2 health check failed, using fallback storage only", zap.Error(err))
		return NewLocator(local, mirror)
	}

	logger.Debug("R2 snapshot store initialized", zap.String("bucket", cfg.R2.BucketName))
	return NewLocator(local, NewStoreWithFallback(r2Store, mirror, logger))
}

// Resolve picks the store for a location and returns the key within it
func (l *Locator) Resolve(location string) (Store, string, error) {
	if location == "" {
		return nil, "", fmt.Errorf("empty snapshot location")
	}
	if key, ok := strings.CutPrefix(location, R2Scheme); ok {
		if key == "" {
			return nil, "", fmt.Errorf("snapshot location %q has no key", location)
		}
		if l.remote == nil {
			return nil, "", fmt.Errorf("no remote store for %s", location)
		}
		return l.remote, key, nil
	}
	return l.local, location, nil
}

// Load reads and parses the snapshot at location
func (l *Locator) Load(ctx context.Context, location string) (*Snapshot, error) {
	store, key, err := l.Resolve(location)
	if err != nil {
		return nil, err
	}

	rc, err := store.Open(ctx, key)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	snap, err := Parse(rc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", location, err)
	}
	return snap, nil
}

// Save encodes the snapshot and writes it to location
func (l *Locator) Save(ctx context.Context, location string, snap *Snapshot) (string, error) {
	store, key, err := l.Resolve(location)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := snap.Encode(&buf); err != nil {
		return "", err
	}
	return store.Save(ctx, key, bytes.NewReader(buf.Bytes()), int64(buf.Len()))
}
