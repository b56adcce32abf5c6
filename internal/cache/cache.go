// Package cache holds rendered threads between writes. Values are stored
// JSON-encoded so both backends hand callers an independent copy.
package cache

import (
	"context"
	"fmt"

	"chanboard/internal/config"

	"github.com/pkg/errors"
)

type Cache interface {
	// Get decodes the value under key into dest and reports whether it was found.
	Get(ctx context.Context, key string, dest interface{}) bool
	Set(ctx context.Context, key string, value interface{})
	Delete(ctx context.Context, keys ...string)
}

// New builds the backend named by cfg.Backend.
func New(cfg config.CacheConfig) (Cache, error) {
	switch cfg.Backend {
	case "", "lru":
		return NewLRU(cfg.Size, cfg.TTL)
	case "redis":
		return NewRedis(cfg.RedisURL, cfg.TTL)
	default:
		return nil, errors.Errorf("unknown cache backend %q", cfg.Backend)
	}
}

// ThreadKey is the cache key of a post's reply forest.
func ThreadKey(postID uint) string {
	return fmt.Sprintf("thread:post:%d", postID)
}
