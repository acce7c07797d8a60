package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"venue-seating-ops/internal/config"
)

const scanBatch = 200

// LayoutCache drops the API's cached venue layouts after seat data changes.
type LayoutCache struct {
	client    *redis.Client
	keyPrefix string
	logger    *zap.Logger
}

func NewLayoutCache(client *redis.Client, keyPrefix string, logger *zap.Logger) *LayoutCache {
	return &LayoutCache{client: client, keyPrefix: keyPrefix, logger: logger}
}

// Connect builds a LayoutCache from configuration. It returns nil, nil when
// REDIS_ADDR is empty; callers treat a nil cache as disabled.
func Connect(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) (*LayoutCache, error) {
	if cfg.Addr == "" {
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
	}

	return NewLayoutCache(client, cfg.KeyPrefix, logger), nil
}

func (c *LayoutCache) Close() error {
	return c.client.Close()
}

// patterns are the key families the API caches a venue's layout under:
// the bare key and anything below it, so venue-1 never matches venue-10.
func (c *LayoutCache) patterns(venueID string) []string {
	id := escapeGlob(venueID)
	var patterns []string
	for _, family := range []string{"venue:", "venue-layout:"} {
		base := c.keyPrefix + family + id
		patterns = append(patterns, base, base+":*")
	}
	return patterns
}

// InvalidateVenue deletes every cached key of the venue and returns how
// many keys were removed.
func (c *LayoutCache) InvalidateVenue(ctx context.Context, venueID string) (int, error) {
	if venueID == "" {
		return 0, fmt.Errorf("venue id is required")
	}

	deleted := 0
	for _, pattern := range c.patterns(venueID) {
		iter := c.client.Scan(ctx, 0, pattern, scanBatch).Iterator()

		batch := make([]string, 0, scanBatch)
		for iter.Next(ctx) {
			batch = append(batch, iter.Val())
			if len(batch) == scanBatch {
				n, err := c.client.Del(ctx, batch...).Result()
				if err != nil {
					return deleted, fmt.Errorf("failed to delete cache keys: %w", err)
				}
				deleted += int(n)
				batch = batch[:0]
			}
		}
		if err := iter.Err(); err != nil {
			return deleted, fmt.Errorf("failed to scan %s: %w", pattern, err)
		}
		if len(batch) > 0 {
			n, err := c.client.Del(ctx, batch...).Result()
			if err != nil {
				return deleted, fmt.Errorf("failed to delete cache keys: %w", err)
			}
			deleted += int(n)
		}
	}

	c.logger.Info("venue layout cache invalidated",
		zap.String("venue_id", venueID),
		zap.Int("keys", deleted),
	)
	return deleted, nil
}

var globReplacer = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`)

func escapeGlob(s string) string {
	return globReplacer.Replace(s)
}
